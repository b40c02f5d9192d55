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
	ErrPlayerNotFound        = errors.New("player not found")
	ErrPlayerProfileConflict = errors.New("profile is already linked to another player")
	ErrPlayerHasRosters      = errors.New("player cannot be deleted while on a team roster")
)

type PlayerRepository interface {
	Create(ctx context.Context, exec SQLExecutor, player *models.Player) error
	FindByID(ctx context.Context, exec SQLExecutor, discordID int64) (*models.Player, error)
	FindByProfile(ctx context.Context, exec SQLExecutor, profileID int64) (*models.Player, error)
	LinkProfile(ctx context.Context, exec SQLExecutor, discordID, profileID int64) error
	Delete(ctx context.Context, exec SQLExecutor, discordID int64) error
}

type postgresPlayerRepository struct {
	db *sql.DB
}

func NewPostgresPlayerRepository(db *sql.DB) PlayerRepository {
	return &postgresPlayerRepository{db: db}
}

func (r *postgresPlayerRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresPlayerRepository) Create(ctx context.Context, exec SQLExecutor, player *models.Player) error {
	query := `
		INSERT INTO players (discord_id, discord_name, profile_id)
		VALUES ($1, $2, $3)
		RETURNING created_at`

	err := r.getExecutor(exec).QueryRowContext(ctx, query,
		player.DiscordID,
		player.DiscordName,
		player.ProfileID,
	).Scan(&player.CreatedAt)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" && pqErr.Constraint == "players_profile_id_key" {
			return ErrPlayerProfileConflict
		}
		return fmt.Errorf("failed to create player: %w", err)
	}
	return nil
}

func (r *postgresPlayerRepository) findOne(ctx context.Context, exec SQLExecutor, query string, args ...interface{}) (*models.Player, error) {
	p := &models.Player{}
	err := r.getExecutor(exec).QueryRowContext(ctx, query, args...).Scan(
		&p.DiscordID,
		&p.DiscordName,
		&p.ProfileID,
		&p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to find player: %w", err)
	}
	return p, nil
}

func (r *postgresPlayerRepository) FindByID(ctx context.Context, exec SQLExecutor, discordID int64) (*models.Player, error) {
	query := `SELECT discord_id, discord_name, profile_id, created_at FROM players WHERE discord_id = $1`
	return r.findOne(ctx, exec, query, discordID)
}

func (r *postgresPlayerRepository) FindByProfile(ctx context.Context, exec SQLExecutor, profileID int64) (*models.Player, error) {
	query := `SELECT discord_id, discord_name, profile_id, created_at FROM players WHERE profile_id = $1`
	return r.findOne(ctx, exec, query, profileID)
}

func (r *postgresPlayerRepository) LinkProfile(ctx context.Context, exec SQLExecutor, discordID, profileID int64) error {
	query := `UPDATE players SET profile_id = $1 WHERE discord_id = $2`
	result, err := r.getExecutor(exec).ExecContext(ctx, query, profileID, discordID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrPlayerProfileConflict
		}
		return fmt.Errorf("failed to link profile to player: %w", err)
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) Delete(ctx context.Context, exec SQLExecutor, discordID int64) error {
	executor := r.getExecutor(exec)

	var rosterCount int
	countQuery := `SELECT COUNT(*) FROM rosters WHERE discord_id = $1`
	if err := executor.QueryRowContext(ctx, countQuery, discordID).Scan(&rosterCount); err != nil {
		return fmt.Errorf("failed to count rosters for player deletion: %w", err)
	}
	if rosterCount > 0 {
		return ErrPlayerHasRosters
	}

	result, err := executor.ExecContext(ctx, `DELETE FROM players WHERE discord_id = $1`, discordID)
	if err != nil {
		return fmt.Errorf("failed to delete player: %w", err)
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}
