package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	// MaxTeamSize is the largest roster the signup command accepts.
	MaxTeamSize = 4

	defaultLobbyCapacity     = 24
	defaultMaxSignupsPerTeam = 4
)

// Config holds all application configuration. It is built once at startup
// and treated as immutable afterwards.
type Config struct {
	DatabaseURL    string
	DiscordToken   string
	DiscordGuildID string
	OwnerID        int64

	// Season is the label official ratings are keyed by, e.g. "season7".
	Season string

	// RatingCaps[n] is the aggregate rating ceiling for a team of n players.
	// A nil entry means that team size is uncapped. Index 0 is unused.
	RatingCaps [MaxTeamSize + 1]*float64

	// LobbyCapacity is the player cap per lobby.
	LobbyCapacity int

	// MaxSignupsPerTeam is the number of sessions a single team may be
	// signed up for at once.
	MaxSignupsPerTeam int
}

// Load загружает конфигурацию из переменных окружения.
// Опционально подгружает .env файл (полезно для локальной разработки).
func Load() (*Config, error) {
	// Загружаем .env файл, если он есть. Ошибку не считаем фатальной.
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	token := os.Getenv("DISCORD_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("DISCORD_TOKEN environment variable is not set")
	}

	guildID := os.Getenv("DISCORD_GUILD_ID")
	if guildID == "" {
		return nil, fmt.Errorf("DISCORD_GUILD_ID environment variable is not set")
	}

	ownerID, err := strconv.ParseInt(os.Getenv("OWNER_ID"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid OWNER_ID environment variable: %w", err)
	}

	season := os.Getenv("GO_SEASON")
	if season == "" {
		return nil, fmt.Errorf("GO_SEASON environment variable is not set")
	}

	cfg := &Config{
		DatabaseURL:       dbURL,
		DiscordToken:      token,
		DiscordGuildID:    guildID,
		OwnerID:           ownerID,
		Season:            season,
		LobbyCapacity:     defaultLobbyCapacity,
		MaxSignupsPerTeam: defaultMaxSignupsPerTeam,
	}

	if v := os.Getenv("LOBBY_CAPACITY"); v != "" {
		capacity, err := strconv.Atoi(v)
		if err != nil || capacity <= 0 {
			return nil, fmt.Errorf("LOBBY_CAPACITY must be a positive integer, got %q", v)
		}
		cfg.LobbyCapacity = capacity
	}

	if v := os.Getenv("MAX_SIGNUPS_PER_TEAM"); v != "" {
		maxSignups, err := strconv.Atoi(v)
		if err != nil || maxSignups <= 0 {
			return nil, fmt.Errorf("MAX_SIGNUPS_PER_TEAM must be a positive integer, got %q", v)
		}
		cfg.MaxSignupsPerTeam = maxSignups
	}

	// GO_RATING_CAP_1..4; an unset or empty variable leaves that size uncapped.
	for size := 1; size <= MaxTeamSize; size++ {
		v := os.Getenv(fmt.Sprintf("GO_RATING_CAP_%d", size))
		if v == "" {
			continue
		}
		limit, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid GO_RATING_CAP_%d environment variable: %w", size, err)
		}
		cfg.RatingCaps[size] = &limit
	}

	return cfg, nil
}

// RatingCap returns the aggregate rating ceiling for the given team size,
// or nil if that size is uncapped.
func (c *Config) RatingCap(teamSize int) *float64 {
	if teamSize < 1 || teamSize > MaxTeamSize {
		return nil
	}
	return c.RatingCaps[teamSize]
}
