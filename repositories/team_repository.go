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
	ErrTeamNotFound        = errors.New("team not found")
	ErrTeamNameConflict    = errors.New("team name is already in use")
	ErrTeamRosterAmbiguous = errors.New("more than one team found with that roster")
)

type TeamRepository interface {
	// Create inserts the team and its roster rows. The caller is expected
	// to run it inside the signup transaction so a failed signup never
	// leaves an orphaned team behind.
	Create(ctx context.Context, exec SQLExecutor, team *models.Team, playerIDs []int64) error
	FindByID(ctx context.Context, exec SQLExecutor, id int) (*models.Team, error)
	FindByName(ctx context.Context, exec SQLExecutor, name string) (*models.Team, error)
	// FindByRoster resolves a team whose roster is exactly the given player
	// set. Returns ErrTeamNotFound when no team matches and
	// ErrTeamRosterAmbiguous when the one-roster-one-team invariant is
	// broken in the store.
	FindByRoster(ctx context.Context, exec SQLExecutor, playerIDs []int64) (*models.Team, error)
	ListByPlayer(ctx context.Context, exec SQLExecutor, discordID int64) ([]*models.Team, error)
	Rename(ctx context.Context, exec SQLExecutor, id int, name string) error
	// Delete removes the roster rows and then the team row.
	Delete(ctx context.Context, exec SQLExecutor, id int) error
}

type postgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

func (r *postgresTeamRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresTeamRepository) Create(ctx context.Context, exec SQLExecutor, team *models.Team, playerIDs []int64) error {
	executor := r.getExecutor(exec)

	query := `
		INSERT INTO teams (name, size, rating)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query, team.Name, team.Size, team.Rating).Scan(&team.ID, &team.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" && pqErr.Constraint == "teams_name_key" {
			return ErrTeamNameConflict
		}
		return fmt.Errorf("failed to create team: %w", err)
	}

	rosterQuery := `INSERT INTO rosters (team_id, discord_id) VALUES ($1, $2)`
	for _, discordID := range playerIDs {
		if _, err := executor.ExecContext(ctx, rosterQuery, team.ID, discordID); err != nil {
			return fmt.Errorf("failed to create roster entry for team %d: %w", team.ID, err)
		}
	}
	team.PlayerIDs = append([]int64(nil), playerIDs...)
	return nil
}

func (r *postgresTeamRepository) scanTeam(row *sql.Row, team *models.Team) error {
	return row.Scan(&team.ID, &team.Name, &team.Size, &team.Rating, &team.CreatedAt)
}

func (r *postgresTeamRepository) findOne(ctx context.Context, exec SQLExecutor, query string, args ...interface{}) (*models.Team, error) {
	executor := r.getExecutor(exec)
	team := &models.Team{}
	err := r.scanTeam(executor.QueryRowContext(ctx, query, args...), team)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to find team: %w", err)
	}
	if err := r.loadRoster(ctx, executor, team); err != nil {
		return nil, err
	}
	return team, nil
}

func (r *postgresTeamRepository) loadRoster(ctx context.Context, exec SQLExecutor, team *models.Team) error {
	rows, err := exec.QueryContext(ctx,
		`SELECT discord_id FROM rosters WHERE team_id = $1 ORDER BY discord_id`, team.ID)
	if err != nil {
		return fmt.Errorf("failed to load roster for team %d: %w", team.ID, err)
	}
	defer rows.Close()

	team.PlayerIDs = team.PlayerIDs[:0]
	for rows.Next() {
		var discordID int64
		if err := rows.Scan(&discordID); err != nil {
			return fmt.Errorf("failed to scan roster row: %w", err)
		}
		team.PlayerIDs = append(team.PlayerIDs, discordID)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating roster rows: %w", err)
	}
	return nil
}

func (r *postgresTeamRepository) FindByID(ctx context.Context, exec SQLExecutor, id int) (*models.Team, error) {
	query := `SELECT id, name, size, rating, created_at FROM teams WHERE id = $1`
	return r.findOne(ctx, exec, query, id)
}

func (r *postgresTeamRepository) FindByName(ctx context.Context, exec SQLExecutor, name string) (*models.Team, error) {
	query := `SELECT id, name, size, rating, created_at FROM teams WHERE name = $1`
	return r.findOne(ctx, exec, query, name)
}

func (r *postgresTeamRepository) FindByRoster(ctx context.Context, exec SQLExecutor, playerIDs []int64) (*models.Team, error) {
	executor := r.getExecutor(exec)

	// Prefilter by size, then require every roster member to match: a team
	// of the right size whose roster contains all the given players is an
	// exact match.
	query := `
		SELECT t.id
		FROM teams t
		JOIN rosters r ON r.team_id = t.id
		WHERE t.size = $1 AND r.discord_id = ANY($2)
		GROUP BY t.id
		HAVING COUNT(*) = $1`

	rows, err := executor.QueryContext(ctx, query, len(playerIDs), pq.Array(playerIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to find team by roster: %w", err)
	}
	defer rows.Close()

	teamIDs := make([]int, 0, 1)
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan team id: %w", err)
		}
		teamIDs = append(teamIDs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating team rows: %w", err)
	}

	switch len(teamIDs) {
	case 0:
		return nil, ErrTeamNotFound
	case 1:
		return r.FindByID(ctx, exec, teamIDs[0])
	default:
		return nil, ErrTeamRosterAmbiguous
	}
}

func (r *postgresTeamRepository) ListByPlayer(ctx context.Context, exec SQLExecutor, discordID int64) ([]*models.Team, error) {
	executor := r.getExecutor(exec)

	query := `
		SELECT t.id, t.name, t.size, t.rating, t.created_at
		FROM teams t
		JOIN rosters r ON r.team_id = t.id
		WHERE r.discord_id = $1
		ORDER BY t.created_at`

	rows, err := executor.QueryContext(ctx, query, discordID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams by player: %w", err)
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

	for _, team := range teams {
		if err := r.loadRoster(ctx, executor, team); err != nil {
			return nil, err
		}
	}
	return teams, nil
}

func (r *postgresTeamRepository) Rename(ctx context.Context, exec SQLExecutor, id int, name string) error {
	result, err := r.getExecutor(exec).ExecContext(ctx, `UPDATE teams SET name = $1 WHERE id = $2`, name, id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrTeamNameConflict
		}
		return fmt.Errorf("failed to rename team: %w", err)
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	executor := r.getExecutor(exec)

	if _, err := executor.ExecContext(ctx, `DELETE FROM rosters WHERE team_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete rosters for team %d: %w", id, err)
	}

	result, err := executor.ExecContext(ctx, `DELETE FROM teams WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete team: %w", err)
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}
