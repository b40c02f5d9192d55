package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"github.com/stooobe/go-league/config"
	"github.com/stooobe/go-league/league"
	"github.com/stooobe/go-league/models"
	"github.com/stooobe/go-league/repositories"
)

// SignupService инкапсулирует бизнес-логику записи команд на сессии:
// разрешение состава, создание команд, запись, отмену и замену состава.
type SignupService struct {
	tx       repositories.TxRunner
	players  repositories.PlayerRepository
	teams    repositories.TeamRepository
	signups  repositories.SignupRepository
	sessions repositories.SessionRepository
	ratings  *RatingService
	cfg      *config.Config
	logger   *slog.Logger
}

func NewSignupService(
	tx repositories.TxRunner,
	players repositories.PlayerRepository,
	teams repositories.TeamRepository,
	signups repositories.SignupRepository,
	sessions repositories.SessionRepository,
	ratings *RatingService,
	cfg *config.Config,
	logger *slog.Logger,
) *SignupService {
	return &SignupService{
		tx:       tx,
		players:  players,
		teams:    teams,
		signups:  signups,
		sessions: sessions,
		ratings:  ratings,
		cfg:      cfg,
		logger:   logger,
	}
}

// SignupRequest signs a roster up for one session. Players is positional:
// a nil entry marks an empty slot, and only trailing slots may be empty.
type SignupRequest struct {
	SessionID int64
	TeamName  string
	Players   []*Member

	// SignupTime overrides the queue timestamp; the zero value means now.
	// Change-signup uses it to keep the original spot in line.
	SignupTime time.Time
}

type SignupResult struct {
	Team        *models.Team
	Signup      *models.Signup
	SessionTime time.Time
	// SignupCount is the team's signup count across all sessions,
	// including this one.
	SignupCount int
	Notices     []Notice
}

type CancelResult struct {
	TeamID      int
	TeamName    string
	SessionTime time.Time
	// SignupsRemaining counts the team's signups left after the cancel.
	// Zero means the team itself was deleted as well.
	SignupsRemaining int
	// SignupTime is the cancelled signup's original queue timestamp.
	SignupTime time.Time
	Roster     []int64
	Notices    []Notice
}

type ChangeSignupRequest struct {
	SessionID int64
	// Actor must be on the team being cancelled; they may or may not be
	// on the new roster.
	Actor       Member
	Players     []*Member
	NewTeamName string
}

type ChangeSignupResult struct {
	OldTeamName string
	Signup      *SignupResult
	Notices     []Notice
}

// Signup registers a team for the session, creating the player's team on
// first use. The session must exist and have signups open.
func (s *SignupService) Signup(ctx context.Context, req SignupRequest) (*SignupResult, error) {
	var result *SignupResult
	err := s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		session, err := requireSession(ctx, exec, s.sessions, req.SessionID)
		if err != nil {
			return err
		}
		if session.SignupState != models.SignupsOpen {
			return Userf("Signups are not open for this session.")
		}
		result, err = s.addSignup(ctx, exec, session, req)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Cancel removes the actor's signup for the session. When it was the
// team's last signup the team and its roster rows are deleted too.
// adminOverride skips the closed-session guard.
func (s *SignupService) Cancel(ctx context.Context, sessionID int64, actor Member, adminOverride bool) (*CancelResult, error) {
	var result *CancelResult
	err := s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		session, err := requireSession(ctx, exec, s.sessions, sessionID)
		if err != nil {
			return err
		}
		if session.SignupState == models.SignupsClosed && !adminOverride {
			return Userf("Signups are closed for this session.")
		}
		result, err = s.cancelSignup(ctx, exec, session, actor)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ChangeSignup swaps the actor's signup for a new roster in one
// transaction, reusing the cancelled signup's timestamp so the new team
// keeps its place in the queue.
func (s *SignupService) ChangeSignup(ctx context.Context, req ChangeSignupRequest) (*ChangeSignupResult, error) {
	var result *ChangeSignupResult
	err := s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		session, err := requireSession(ctx, exec, s.sessions, req.SessionID)
		if err != nil {
			return err
		}
		if session.SignupState == models.SignupsClosed {
			return Userf("Signups are closed for this session.")
		}

		cancelled, err := s.cancelSignup(ctx, exec, session, req.Actor)
		if err != nil {
			return err
		}

		teamName := strings.TrimSpace(req.NewTeamName)
		if teamName == "" {
			teamName = cancelled.TeamName
		}

		signup, err := s.addSignup(ctx, exec, session, SignupRequest{
			SessionID:  req.SessionID,
			TeamName:   teamName,
			Players:    req.Players,
			SignupTime: cancelled.SignupTime,
		})
		if err != nil {
			return err
		}

		result = &ChangeSignupResult{
			OldTeamName: cancelled.TeamName,
			Signup:      signup,
			Notices:     append(cancelled.Notices, signup.Notices...),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// RenameTeam renames the team the actor is signed up with in this session.
func (s *SignupService) RenameTeam(ctx context.Context, sessionID int64, actor Member, newName string) (*models.Team, error) {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return nil, Userf("Must specify a new team name.")
	}

	var team *models.Team
	err := s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		if _, err := requireSession(ctx, exec, s.sessions, sessionID); err != nil {
			return err
		}

		row, _, err := s.findActorSignup(ctx, exec, sessionID, actor)
		if err != nil {
			return err
		}

		err = s.teams.Rename(ctx, exec, row.Team.ID, newName)
		if errors.Is(err, repositories.ErrTeamNameConflict) {
			return Userf("Team name %q is already taken.", newName)
		}
		if err != nil {
			return err
		}

		team = row.Team
		team.Name = newName
		return nil
	})
	if err != nil {
		return nil, err
	}
	return team, nil
}

// findActorSignup locates the actor's signup row for the session and
// collects the full roster of that team from the session's signup rows.
func (s *SignupService) findActorSignup(ctx context.Context, exec repositories.SQLExecutor, sessionID int64, actor Member) (*models.TeamPlayerSignup, []int64, error) {
	rows, err := s.signups.ListPlayerSignups(ctx, exec, sessionID)
	if err != nil {
		return nil, nil, err
	}

	var found *models.TeamPlayerSignup
	for _, row := range rows {
		if row.Player.DiscordID == actor.ID {
			found = row
			break
		}
	}
	if found == nil {
		return nil, nil, Userf("Player %s is not signed up for this session.", actor.Name)
	}

	var roster []int64
	for _, row := range rows {
		if row.Team.ID == found.Team.ID {
			roster = append(roster, row.Player.DiscordID)
		}
	}
	return found, roster, nil
}

func (s *SignupService) cancelSignup(ctx context.Context, exec repositories.SQLExecutor, session *models.Session, actor Member) (*CancelResult, error) {
	row, roster, err := s.findActorSignup(ctx, exec, session.ID, actor)
	if err != nil {
		return nil, err
	}
	team := row.Team

	teamSignups, err := s.signups.ListByTeam(ctx, exec, team.ID)
	if err != nil {
		return nil, err
	}
	countBefore := len(teamSignups)

	var signupTime time.Time
	for _, su := range teamSignups {
		if su.SessionID == session.ID {
			signupTime = su.SignupTime
		}
	}

	if err := s.signups.Delete(ctx, exec, team.ID, session.ID); err != nil {
		return nil, err
	}

	// последняя запись команды — удаляем и саму команду вместе с составом
	if countBefore == 1 {
		if err := s.teams.Delete(ctx, exec, team.ID); err != nil {
			return nil, err
		}
	}

	s.logger.Info("cancelled signup",
		slog.Int("team_id", team.ID),
		slog.String("team_name", team.Name),
		slog.Int64("session_id", session.ID))

	result := &CancelResult{
		TeamID:           team.ID,
		TeamName:         team.Name,
		SessionTime:      session.SessionTime,
		SignupsRemaining: countBefore - 1,
		SignupTime:       signupTime,
		Roster:           roster,
	}

	msg := fmt.Sprintf("❌ Your signup for team %q on **%s** has been **cancelled**.",
		team.Name, FormatSessionTime(session.SessionTime))
	msg += fmt.Sprintf("\n- %d signups still active for the team.", result.SignupsRemaining)
	for _, discordID := range roster {
		result.Notices = append(result.Notices, Notice{DiscordID: discordID, Message: msg})
	}
	return result, nil
}

// addSignup runs the full validation chain and persists the signup. The
// team is created here when the roster is new, inside the caller's
// transaction, so a failed later check never leaves an orphaned team.
func (s *SignupService) addSignup(ctx context.Context, exec repositories.SQLExecutor, session *models.Session, req SignupRequest) (*SignupResult, error) {
	// positional gaps before the last real player are user errors;
	// trailing empty slots just mean a smaller team
	noneSeenAt := -1
	var members []*Member
	for i, p := range req.Players {
		if p != nil && noneSeenAt >= 0 {
			return nil, Userf("Player%d specified but Player%d was not.", i+1, noneSeenAt+1)
		}
		if p == nil {
			if noneSeenAt < 0 {
				noneSeenAt = i
			}
			continue
		}
		members = append(members, p)
	}
	if len(members) == 0 {
		return nil, Userf("Must specify players for the team.")
	}

	players := make([]*models.Player, 0, len(members))
	var missingIGN []*Member
	for _, m := range members {
		player, err := s.players.FindByID(ctx, exec, m.ID)
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			missingIGN = append(missingIGN, m)
			continue
		}
		if err != nil {
			return nil, err
		}
		if player.ProfileID == nil {
			missingIGN = append(missingIGN, m)
			continue
		}
		players = append(players, player)
	}
	if len(missingIGN) > 0 {
		var b strings.Builder
		for _, m := range missingIGN {
			fmt.Fprintf(&b, "- Player %s needs to run `/go set_ign`.\n", m.Name)
		}
		return nil, &UserError{Message: b.String()}
	}

	teamRating := 0.0
	for i, player := range players {
		rating, err := s.ratings.OfficialRating(ctx, exec, *player.ProfileID)
		if err != nil {
			return nil, err
		}
		if rating == nil {
			return nil, Userf("Player %s does not have a GO Rating. Contact an admin to help fix this.", members[i].Name)
		}
		teamRating += *rating
	}

	idSet := make(map[int64]bool, len(members))
	ids := make([]int64, 0, len(members))
	for _, m := range members {
		if !idSet[m.ID] {
			ids = append(ids, m.ID)
		}
		idSet[m.ID] = true
	}
	if len(ids) < len(members) {
		return nil, Userf("A player cannot be on the same team twice.")
	}

	teamName := strings.TrimSpace(req.TeamName)
	if teamName == "" {
		teamName = fmt.Sprintf("team %d", 1000+rand.Intn(9000))
	}

	team, err := s.teams.FindByRoster(ctx, exec, ids)
	if err != nil && !errors.Is(err, repositories.ErrTeamNotFound) {
		return nil, err
	}

	// roster already has a name: keep it, the requested one is ignored
	if team != nil && team.Name != teamName {
		s.logger.Info("roster already has a team name, keeping it",
			slog.String("existing", team.Name),
			slog.String("requested", teamName))
		teamName = team.Name
	}

	// walk name variants until one is free or it is clearly hopeless
	originalName := teamName
	for n := 0; ; n++ {
		byName, err := s.teams.FindByName(ctx, exec, teamName)
		if errors.Is(err, repositories.ErrTeamNotFound) {
			break
		}
		if err != nil {
			return nil, err
		}
		if team != nil && byName.ID == team.ID {
			break
		}
		teamName = league.IncrementTeamName(teamName)
		if n >= league.MaxNameAttempts {
			return nil, Userf("Team name %q is already taken.", originalName)
		}
	}

	var existingSignups []*models.Signup
	if team != nil {
		existingSignups, err = s.signups.ListByTeam(ctx, exec, team.ID)
		if err != nil {
			return nil, err
		}
		for _, su := range existingSignups {
			if su.SessionID == session.ID {
				return nil, Userf("Team %q is already signed up for this session.", teamName)
			}
		}
		if len(existingSignups) >= s.cfg.MaxSignupsPerTeam {
			return nil, Userf("Team %q is already signed up for %d dates (max is %d).",
				teamName, len(existingSignups), s.cfg.MaxSignupsPerTeam)
		}
	}

	// the cap is checked on every signup, not just team creation, so
	// lowering it mid-season blocks further signups by over-cap rosters
	if limit := s.cfg.RatingCap(len(ids)); limit != nil && teamRating > *limit {
		return nil, Userf("Team rating %.0f exceeds the cap of %.0f.", teamRating, *limit)
	}

	if team == nil {
		team = &models.Team{
			Name:   teamName,
			Size:   len(ids),
			Rating: &teamRating,
		}
		if err := s.teams.Create(ctx, exec, team, ids); err != nil {
			return nil, err
		}
		s.logger.Info("created team",
			slog.Int("team_id", team.ID),
			slog.String("team_name", team.Name),
			slog.Float64("rating", teamRating))
	}
	team.PlayerIDs = ids

	// nobody on this roster may already be signed up for the session
	// under another team
	rows, err := s.signups.ListPlayerSignups(ctx, exec, session.ID)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		if idSet[row.Player.DiscordID] {
			return nil, Userf("Player %s is already signed up in this session for team %q.",
				row.Player.DiscordName, row.Team.Name)
		}
	}

	signupTime := req.SignupTime
	if signupTime.IsZero() {
		signupTime = time.Now()
	}
	signup := &models.Signup{
		TeamID:     team.ID,
		SessionID:  session.ID,
		SignupTime: signupTime,
	}
	if err := s.signups.Create(ctx, exec, signup); err != nil {
		return nil, err
	}

	result := &SignupResult{
		Team:        team,
		Signup:      signup,
		SessionTime: session.SessionTime,
		SignupCount: len(existingSignups) + 1,
	}

	mentions := make([]string, len(ids))
	for i, id := range ids {
		mentions[i] = fmt.Sprintf("<@%d>", id)
	}
	msg := fmt.Sprintf("✅ You've been signed up for GO League on team %q.", team.Name)
	msg += fmt.Sprintf("\n- Session Time: **%s**", FormatSessionTime(session.SessionTime))
	msg += fmt.Sprintf("\n- Roster: %s", strings.Join(mentions, ", "))
	msg += fmt.Sprintf("\n- Team Signup #%d", result.SignupCount)
	msg += fmt.Sprintf("\n- Make changes to your signup here: <#%d>", session.ID)
	for _, id := range ids {
		result.Notices = append(result.Notices, Notice{DiscordID: id, Message: msg})
	}
	return result, nil
}
