package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/stooobe/go-league/models"
)

var (
	ErrSignupNotFound = errors.New("signup not found")
	ErrSignupConflict = errors.New("team is already signed up for this session")
)

type SignupRepository interface {
	Create(ctx context.Context, exec SQLExecutor, signup *models.Signup) error
	Delete(ctx context.Context, exec SQLExecutor, teamID int, sessionID int64) error
	// ListByTeam returns a team's signups across all sessions.
	ListByTeam(ctx context.Context, exec SQLExecutor, teamID int) ([]*models.Signup, error)
	// ListPlayerSignups returns one row per (team, rostered player) for a
	// session's signups, ordered by team name then player ID.
	ListPlayerSignups(ctx context.Context, exec SQLExecutor, sessionID int64) ([]*models.TeamPlayerSignup, error)
	// TeamsBySession returns the signed-up teams in signup-time order, with
	// rosters populated.
	TeamsBySession(ctx context.Context, exec SQLExecutor, sessionID int64) ([]*models.Team, error)
	ClearLobbyAssignments(ctx context.Context, exec SQLExecutor, sessionID int64) error
	AssignLobby(ctx context.Context, exec SQLExecutor, teamID int, sessionID int64, lobbyID int) error
	// ListByLobby returns the signups assigned to one lobby with teams
	// populated.
	ListByLobby(ctx context.Context, exec SQLExecutor, lobbyID int) ([]*models.Signup, error)
	// CountBySession returns the number of signed-up teams and the total
	// player count for a session.
	CountBySession(ctx context.Context, exec SQLExecutor, sessionID int64) (teams int, players int, err error)
}

type postgresSignupRepository struct {
	db *sql.DB
}

func NewPostgresSignupRepository(db *sql.DB) SignupRepository {
	return &postgresSignupRepository{db: db}
}

func (r *postgresSignupRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresSignupRepository) Create(ctx context.Context, exec SQLExecutor, signup *models.Signup) error {
	query := `
		INSERT INTO signups (team_id, session_id, lobby_id, signup_time)
		VALUES ($1, $2, $3, $4)`

	_, err := r.getExecutor(exec).ExecContext(ctx, query,
		signup.TeamID,
		signup.SessionID,
		signup.LobbyID,
		signup.SignupTime,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrSignupConflict
		}
		return fmt.Errorf("failed to create signup: %w", err)
	}
	return nil
}

func (r *postgresSignupRepository) Delete(ctx context.Context, exec SQLExecutor, teamID int, sessionID int64) error {
	query := `DELETE FROM signups WHERE team_id = $1 AND session_id = $2`
	result, err := r.getExecutor(exec).ExecContext(ctx, query, teamID, sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete signup: %w", err)
	}
	return checkAffectedRows(result, ErrSignupNotFound)
}

func (r *postgresSignupRepository) ListByTeam(ctx context.Context, exec SQLExecutor, teamID int) ([]*models.Signup, error) {
	query := `
		SELECT team_id, session_id, lobby_id, signup_time
		FROM signups
		WHERE team_id = $1
		ORDER BY signup_time`

	rows, err := r.getExecutor(exec).QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list signups by team: %w", err)
	}
	defer rows.Close()

	signups := make([]*models.Signup, 0)
	for rows.Next() {
		s := &models.Signup{}
		if err := rows.Scan(&s.TeamID, &s.SessionID, &s.LobbyID, &s.SignupTime); err != nil {
			return nil, fmt.Errorf("failed to scan signup row: %w", err)
		}
		signups = append(signups, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating signup rows: %w", err)
	}
	return signups, nil
}

func (r *postgresSignupRepository) ListPlayerSignups(ctx context.Context, exec SQLExecutor, sessionID int64) ([]*models.TeamPlayerSignup, error) {
	query := `
		SELECT
			t.id, t.name, t.size, t.rating, t.created_at,
			p.discord_id, p.discord_name, p.profile_id, p.created_at,
			s.team_id, s.session_id, s.lobby_id, s.signup_time
		FROM signups s
		JOIN rosters r ON r.team_id = s.team_id
		JOIN teams t ON t.id = s.team_id
		JOIN players p ON p.discord_id = r.discord_id
		WHERE s.session_id = $1
		ORDER BY t.name, p.discord_id`

	rows, err := r.getExecutor(exec).QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list player signups: %w", err)
	}
	defer rows.Close()

	entries := make([]*models.TeamPlayerSignup, 0)
	for rows.Next() {
		team := &models.Team{}
		player := &models.Player{}
		signup := &models.Signup{}
		err := rows.Scan(
			&team.ID, &team.Name, &team.Size, &team.Rating, &team.CreatedAt,
			&player.DiscordID, &player.DiscordName, &player.ProfileID, &player.CreatedAt,
			&signup.TeamID, &signup.SessionID, &signup.LobbyID, &signup.SignupTime,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan player signup row: %w", err)
		}
		signup.Team = team
		entries = append(entries, &models.TeamPlayerSignup{Team: team, Player: player, Signup: signup})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating player signup rows: %w", err)
	}
	return entries, nil
}

func (r *postgresSignupRepository) TeamsBySession(ctx context.Context, exec SQLExecutor, sessionID int64) ([]*models.Team, error) {
	executor := r.getExecutor(exec)

	query := `
		SELECT t.id, t.name, t.size, t.rating, t.created_at
		FROM signups s
		JOIN teams t ON t.id = s.team_id
		WHERE s.session_id = $1
		ORDER BY s.signup_time`

	rows, err := executor.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams by session: %w", err)
	}
	defer rows.Close()

	teams := make([]*models.Team, 0)
	for rows.Next() {
		team := &models.Team{}
		if err := rows.Scan(&team.ID, &team.Name, &team.Size, &team.Rating, &team.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan team row: %w", err)
		}
		teams = append(teams, team)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating team rows: %w", err)
	}

	rosterQuery := `SELECT discord_id FROM rosters WHERE team_id = $1 ORDER BY discord_id`
	for _, team := range teams {
		rosterRows, err := executor.QueryContext(ctx, rosterQuery, team.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load roster for team %d: %w", team.ID, err)
		}
		for rosterRows.Next() {
			var discordID int64
			if err := rosterRows.Scan(&discordID); err != nil {
				rosterRows.Close()
				return nil, fmt.Errorf("failed to scan roster row: %w", err)
			}
			team.PlayerIDs = append(team.PlayerIDs, discordID)
		}
		if err := rosterRows.Err(); err != nil {
			rosterRows.Close()
			return nil, fmt.Errorf("error iterating roster rows: %w", err)
		}
		rosterRows.Close()
	}
	return teams, nil
}

func (r *postgresSignupRepository) ClearLobbyAssignments(ctx context.Context, exec SQLExecutor, sessionID int64) error {
	query := `UPDATE signups SET lobby_id = NULL WHERE session_id = $1`
	if _, err := r.getExecutor(exec).ExecContext(ctx, query, sessionID); err != nil {
		return fmt.Errorf("failed to clear lobby assignments: %w", err)
	}
	return nil
}

func (r *postgresSignupRepository) AssignLobby(ctx context.Context, exec SQLExecutor, teamID int, sessionID int64, lobbyID int) error {
	query := `UPDATE signups SET lobby_id = $1 WHERE team_id = $2 AND session_id = $3`
	result, err := r.getExecutor(exec).ExecContext(ctx, query, lobbyID, teamID, sessionID)
	if err != nil {
		return fmt.Errorf("failed to assign lobby: %w", err)
	}
	return checkAffectedRows(result, ErrSignupNotFound)
}

func (r *postgresSignupRepository) ListByLobby(ctx context.Context, exec SQLExecutor, lobbyID int) ([]*models.Signup, error) {
	query := `
		SELECT s.team_id, s.session_id, s.lobby_id, s.signup_time,
		       t.id, t.name, t.size, t.rating, t.created_at
		FROM signups s
		JOIN teams t ON t.id = s.team_id
		WHERE s.lobby_id = $1
		ORDER BY t.rating DESC NULLS LAST`

	rows, err := r.getExecutor(exec).QueryContext(ctx, query, lobbyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list signups by lobby: %w", err)
	}
	defer rows.Close()

	signups := make([]*models.Signup, 0)
	for rows.Next() {
		s := &models.Signup{}
		team := &models.Team{}
		err := rows.Scan(
			&s.TeamID, &s.SessionID, &s.LobbyID, &s.SignupTime,
			&team.ID, &team.Name, &team.Size, &team.Rating, &team.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lobby signup row: %w", err)
		}
		s.Team = team
		signups = append(signups, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating lobby signup rows: %w", err)
	}
	return signups, nil
}

func (r *postgresSignupRepository) CountBySession(ctx context.Context, exec SQLExecutor, sessionID int64) (int, int, error) {
	query := `
		SELECT COUNT(*), COALESCE(SUM(t.size), 0)
		FROM signups s
		JOIN teams t ON t.id = s.team_id
		WHERE s.session_id = $1`

	var teams, players int
	err := r.getExecutor(exec).QueryRowContext(ctx, query, sessionID).Scan(&teams, &players)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count signups by session: %w", err)
	}
	return teams, players, nil
}
