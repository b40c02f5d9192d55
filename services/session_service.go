package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/stooobe/go-league/models"
	"github.com/stooobe/go-league/repositories"
)

// requireSession fetches the session or fails with the message users see
// when a channel has no session configured.
func requireSession(ctx context.Context, exec repositories.SQLExecutor, sessions repositories.SessionRepository, sessionID int64) (*models.Session, error) {
	session, err := sessions.Get(ctx, exec, sessionID)
	if errors.Is(err, repositories.ErrSessionNotFound) {
		return nil, Userf("No session is set up on this channel.")
	}
	if err != nil {
		return nil, err
	}
	return session, nil
}

// SessionService управляет расписанием сессий, их состоянием записи и
// списком хостов.
type SessionService struct {
	tx       repositories.TxRunner
	sessions repositories.SessionRepository
	hosts    repositories.HostRepository
	players  repositories.PlayerRepository
	signups  repositories.SignupRepository
	logger   *slog.Logger
}

func NewSessionService(
	tx repositories.TxRunner,
	sessions repositories.SessionRepository,
	hosts repositories.HostRepository,
	players repositories.PlayerRepository,
	signups repositories.SignupRepository,
	logger *slog.Logger,
) *SessionService {
	return &SessionService{
		tx:       tx,
		sessions: sessions,
		hosts:    hosts,
		players:  players,
		signups:  signups,
		logger:   logger,
	}
}

// SetSessionTime creates the session for the channel if needed and sets its
// time. Setting the same time again is a no-op.
func (s *SessionService) SetSessionTime(ctx context.Context, sessionID int64, sessionTime time.Time) error {
	return s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		return s.sessions.UpsertTime(ctx, exec, sessionID, sessionTime)
	})
}

// GetSession returns the channel's session.
func (s *SessionService) GetSession(ctx context.Context, sessionID int64) (*models.Session, error) {
	return requireSession(ctx, nil, s.sessions, sessionID)
}

// SetState moves the session's signup state. Any transition between the
// states is allowed.
func (s *SessionService) SetState(ctx context.Context, sessionID int64, state models.SignupState) error {
	switch state {
	case models.SignupsOpen, models.SignupsClosed, models.SignupsChangeOnly:
	default:
		return Userf("Unknown signup state %q.", state)
	}
	return s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		err := s.sessions.SetState(ctx, exec, sessionID, state)
		if errors.Is(err, repositories.ErrSessionNotFound) {
			return Userf("No session is set up on this channel.")
		}
		return err
	})
}

// SetHost marks a player as a confirmed host for the session. The player
// must be registered.
func (s *SessionService) SetHost(ctx context.Context, sessionID int64, member Member) error {
	return s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		if _, err := requireSession(ctx, exec, s.sessions, sessionID); err != nil {
			return err
		}
		_, err := s.players.FindByID(ctx, exec, member.ID)
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return Userf("%s needs to run `/go set_ign`.", member.Name)
		}
		if err != nil {
			return err
		}
		return s.hosts.Upsert(ctx, exec, &models.Host{
			DiscordID: member.ID,
			SessionID: sessionID,
			Status:    models.HostStatusConfirmed,
		})
	})
}

// RemoveHost drops a player's host record for the session. Removing a
// player who was not a host is a no-op.
func (s *SessionService) RemoveHost(ctx context.Context, sessionID int64, member Member) error {
	return s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		if _, err := requireSession(ctx, exec, s.sessions, sessionID); err != nil {
			return err
		}
		return s.hosts.Delete(ctx, exec, member.ID, sessionID)
	})
}

// ScheduleEntry is one session's line in the schedule listing.
type ScheduleEntry struct {
	Session     *models.Session
	TeamCount   int
	PlayerCount int
}

// ListSchedule returns every session in time order with its signup totals.
func (s *SessionService) ListSchedule(ctx context.Context) ([]*ScheduleEntry, error) {
	sessions, err := s.sessions.List(ctx, nil)
	if err != nil {
		return nil, err
	}
	entries := make([]*ScheduleEntry, 0, len(sessions))
	for _, session := range sessions {
		teams, players, err := s.signups.CountBySession(ctx, nil, session.ID)
		if err != nil {
			return nil, err
		}
		entries = append(entries, &ScheduleEntry{
			Session:     session,
			TeamCount:   teams,
			PlayerCount: players,
		})
	}
	return entries, nil
}

// SessionTeams is the session's signup listing: teams in signup order with
// rosters, plus the confirmed host IDs.
type SessionTeams struct {
	Teams   []*models.Team
	HostIDs []int64
}

// ListTeams returns the session's signed-up teams and confirmed hosts.
func (s *SessionService) ListTeams(ctx context.Context, sessionID int64) (*SessionTeams, error) {
	if _, err := requireSession(ctx, nil, s.sessions, sessionID); err != nil {
		return nil, err
	}
	teams, err := s.signups.TeamsBySession(ctx, nil, sessionID)
	if err != nil {
		return nil, err
	}
	hosts, err := s.hosts.ListConfirmed(ctx, nil, sessionID)
	if err != nil {
		return nil, err
	}
	hostIDs := make([]int64, 0, len(hosts))
	for _, h := range hosts {
		hostIDs = append(hostIDs, h.DiscordID)
	}
	return &SessionTeams{Teams: teams, HostIDs: hostIDs}, nil
}
