package services

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	"github.com/stooobe/go-league/config"
	"github.com/stooobe/go-league/league"
	"github.com/stooobe/go-league/models"
	"github.com/stooobe/go-league/repositories"
)

// LobbyService runs the lobby sort for a session and persists the result.
// Sorting is re-runnable: every run clears the previous assignments and
// reconciles the stored lobby rows before placing teams again.
type LobbyService struct {
	tx       repositories.TxRunner
	sessions repositories.SessionRepository
	signups  repositories.SignupRepository
	hosts    repositories.HostRepository
	lobbies  repositories.LobbyRepository
	sorter   league.LobbySorter
	cfg      *config.Config
	logger   *slog.Logger
}

func NewLobbyService(
	tx repositories.TxRunner,
	sessions repositories.SessionRepository,
	signups repositories.SignupRepository,
	hosts repositories.HostRepository,
	lobbies repositories.LobbyRepository,
	sorter league.LobbySorter,
	cfg *config.Config,
	logger *slog.Logger,
) *LobbyService {
	return &LobbyService{
		tx:       tx,
		sessions: sessions,
		signups:  signups,
		hosts:    hosts,
		lobbies:  lobbies,
		sorter:   sorter,
		cfg:      cfg,
		logger:   logger,
	}
}

// SortedLobby is one persisted lobby with its placed teams.
type SortedLobby struct {
	LobbyID     int
	HostID      int64
	Teams       []*models.Team
	PlayerCount int
}

type SortSessionResult struct {
	Lobbies  []*SortedLobby
	Waitlist []*models.Team
}

// SortSession sorts the session's signed-up teams into hosted lobbies and
// stores the assignments. It refuses to run once any lobby code has been
// published.
func (s *LobbyService) SortSession(ctx context.Context, sessionID int64) (*SortSessionResult, error) {
	var result *SortSessionResult
	err := s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		if _, err := requireSession(ctx, exec, s.sessions, sessionID); err != nil {
			return err
		}

		existing, err := s.lobbies.ListBySession(ctx, exec, sessionID)
		if err != nil {
			return err
		}
		for _, lobby := range existing {
			if lobby.Code != nil {
				return Userf("Cannot sort lobbies after a lobby code has been set.")
			}
		}

		hosts, err := s.hosts.ListConfirmed(ctx, exec, sessionID)
		if err != nil {
			return err
		}
		hostIDs := make([]int64, 0, len(hosts))
		for _, h := range hosts {
			hostIDs = append(hostIDs, h.DiscordID)
		}

		teams, err := s.signups.TeamsBySession(ctx, exec, sessionID)
		if err != nil {
			return err
		}

		sorted, err := s.sorter.SortLobbies(league.SortLobbiesParams{
			HostIDs:  hostIDs,
			Teams:    teams,
			Capacity: s.cfg.LobbyCapacity,
		})
		if errors.Is(err, league.ErrNoPlayers) {
			return Userf("No players signed up for this session.")
		}
		if err != nil {
			return err
		}

		if err := s.signups.ClearLobbyAssignments(ctx, exec, sessionID); err != nil {
			return err
		}

		// reconcile stored lobby rows to the number we need
		need := len(sorted.Lobbies)
		for i := len(existing); i < need; i++ {
			lobby := &models.Lobby{SessionID: sessionID}
			if err := s.lobbies.Create(ctx, exec, lobby); err != nil {
				return err
			}
			existing = append(existing, lobby)
		}
		for _, lobby := range existing[need:] {
			if err := s.lobbies.Delete(ctx, exec, lobby.ID); err != nil {
				return err
			}
		}
		existing = existing[:need]

		assignments := make([]league.LobbyAssignment, len(sorted.Lobbies))
		copy(assignments, sorted.Lobbies)
		sort.Slice(assignments, func(a, b int) bool {
			return assignments[a].HostID < assignments[b].HostID
		})

		result = &SortSessionResult{Waitlist: sorted.Waitlist}
		for i, assignment := range assignments {
			lobby := existing[i]
			if err := s.lobbies.SetHost(ctx, exec, lobby.ID, assignment.HostID); err != nil {
				return err
			}
			placed := &SortedLobby{
				LobbyID: lobby.ID,
				HostID:  assignment.HostID,
				Teams:   assignment.Teams,
			}
			for _, team := range assignment.Teams {
				if err := s.signups.AssignLobby(ctx, exec, team.ID, sessionID, lobby.ID); err != nil {
					return err
				}
				placed.PlayerCount += team.Size
			}
			result.Lobbies = append(result.Lobbies, placed)
		}

		s.logger.Info("sorted lobbies",
			slog.Int64("session_id", sessionID),
			slog.String("sorter", s.sorter.GetName()),
			slog.Int("lobbies", len(result.Lobbies)),
			slog.Int("waitlisted", len(result.Waitlist)))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
