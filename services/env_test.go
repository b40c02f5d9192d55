package services

import (
	"io"
	"log/slog"
	"time"

	"github.com/stooobe/go-league/config"
	"github.com/stooobe/go-league/league"
	"github.com/stooobe/go-league/models"
)

const testSeason = "season7"

// testEnv wires every service over the in-memory fakes.
type testEnv struct {
	tx         *fakeTxRunner
	players    *fakePlayerRepo
	teams      *fakeTeamRepo
	signupRepo *fakeSignupRepo
	sessions   *fakeSessionRepo
	hosts      *fakeHostRepo
	lobbies    *fakeLobbyRepo
	ratingRepo *fakeRatingRepo
	profiles   *fakeProfileRepo

	cfg        *config.Config
	ratingSvc  *RatingService
	signupSvc  *SignupService
	lobbySvc   *LobbyService
	sessionSvc *SessionService
	playerSvc  *PlayerService
}

func newTestEnv() *testEnv {
	env := &testEnv{
		tx:         &fakeTxRunner{},
		players:    newFakePlayerRepo(),
		teams:      newFakeTeamRepo(),
		sessions:   newFakeSessionRepo(),
		hosts:      newFakeHostRepo(),
		lobbies:    newFakeLobbyRepo(),
		ratingRepo: newFakeRatingRepo(),
		profiles:   newFakeProfileRepo(),
	}
	env.signupRepo = newFakeSignupRepo(env.teams, env.players)
	env.cfg = &config.Config{
		Season:            testSeason,
		LobbyCapacity:     24,
		MaxSignupsPerTeam: 4,
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	env.ratingSvc = NewRatingService(env.ratingRepo, env.profiles, testSeason, logger)
	env.signupSvc = NewSignupService(env.tx, env.players, env.teams, env.signupRepo,
		env.sessions, env.ratingSvc, env.cfg, logger)
	env.lobbySvc = NewLobbyService(env.tx, env.sessions, env.signupRepo, env.hosts,
		env.lobbies, league.NewSnakeDraftSorter(), env.cfg, logger)
	env.sessionSvc = NewSessionService(env.tx, env.sessions, env.hosts, env.players,
		env.signupRepo, logger)
	env.playerSvc = NewPlayerService(env.tx, env.players, env.profiles, env.teams,
		env.signupRepo, env.sessions, env.ratingSvc, logger)
	return env
}

// addPlayer registers a player with a linked profile and an official rating.
func (env *testEnv) addPlayer(discordID int64, name string, rating float64) *Member {
	profileID := discordID * 1000
	env.profiles.profiles[profileID] = &models.Profile{ID: profileID, IGN: name + "_ign"}
	env.players.players[discordID] = &models.Player{
		DiscordID:   discordID,
		DiscordName: name,
		ProfileID:   &profileID,
	}
	env.ratingRepo.ratings[ratingKey{profileID, testSeason}] = rating
	return &Member{ID: discordID, Name: name}
}

func (env *testEnv) openSession(sessionID int64, at time.Time) {
	env.sessions.sessions[sessionID] = &models.Session{
		ID:          sessionID,
		SessionTime: at,
		SignupState: models.SignupsOpen,
	}
}
