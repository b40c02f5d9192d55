package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"github.com/stooobe/go-league/bot"
	"github.com/stooobe/go-league/config"
	"github.com/stooobe/go-league/db"
	"github.com/stooobe/go-league/league"
	"github.com/stooobe/go-league/repositories"
	"github.com/stooobe/go-league/services"
)

func main() {
	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.String("season", cfg.Season))

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	// Инициализация репозиториев
	txRunner := repositories.NewTxRunner(dbConn)
	playerRepo := repositories.NewPostgresPlayerRepository(dbConn)
	profileRepo := repositories.NewPostgresProfileRepository(dbConn)
	teamRepo := repositories.NewPostgresTeamRepository(dbConn)
	signupRepo := repositories.NewPostgresSignupRepository(dbConn)
	sessionRepo := repositories.NewPostgresSessionRepository(dbConn)
	hostRepo := repositories.NewPostgresHostRepository(dbConn)
	lobbyRepo := repositories.NewPostgresLobbyRepository(dbConn)
	ratingRepo := repositories.NewPostgresRatingRepository(dbConn)
	logger.Info("repositories initialized")

	// Инициализация сервисов
	ratingService := services.NewRatingService(ratingRepo, profileRepo, cfg.Season, logger)
	signupService := services.NewSignupService(
		txRunner, playerRepo, teamRepo, signupRepo, sessionRepo, ratingService, cfg, logger)
	sessionService := services.NewSessionService(
		txRunner, sessionRepo, hostRepo, playerRepo, signupRepo, logger)
	lobbyService := services.NewLobbyService(
		txRunner, sessionRepo, signupRepo, hostRepo, lobbyRepo,
		league.NewSnakeDraftSorter(), cfg, logger)
	playerService := services.NewPlayerService(
		txRunner, playerRepo, profileRepo, teamRepo, signupRepo, sessionRepo, ratingService, logger)
	logger.Info("services initialized")

	// Запуск Discord-бота
	discordBot, err := bot.New(cfg, playerService, signupService, lobbyService, sessionService, logger)
	if err != nil {
		logger.Error("failed to create discord bot", slog.Any("error", err))
		os.Exit(1)
	}
	if err := discordBot.Start(); err != nil {
		logger.Error("failed to start discord bot", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("discord bot started")

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logger.Info("shutdown signal received", slog.String("signal", sig.String()))

	if err := discordBot.Stop(); err != nil {
		logger.Error("failed to close discord session", slog.Any("error", err))
	}
	logger.Info("application exited")
}
