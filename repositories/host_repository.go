package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/stooobe/go-league/models"
)

type HostRepository interface {
	// Upsert sets the host status for (player, session), creating the
	// record if needed.
	Upsert(ctx context.Context, exec SQLExecutor, host *models.Host) error
	Delete(ctx context.Context, exec SQLExecutor, discordID, sessionID int64) error
	// ListConfirmed returns the session's confirmed hosts ordered by
	// player ID.
	ListConfirmed(ctx context.Context, exec SQLExecutor, sessionID int64) ([]*models.Host, error)
}

type postgresHostRepository struct {
	db *sql.DB
}

func NewPostgresHostRepository(db *sql.DB) HostRepository {
	return &postgresHostRepository{db: db}
}

func (r *postgresHostRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresHostRepository) Upsert(ctx context.Context, exec SQLExecutor, host *models.Host) error {
	query := `
		INSERT INTO hosts (discord_id, session_id, status)
		VALUES ($1, $2, $3)
		ON CONFLICT (discord_id, session_id) DO UPDATE SET status = EXCLUDED.status`

	if _, err := r.getExecutor(exec).ExecContext(ctx, query, host.DiscordID, host.SessionID, host.Status); err != nil {
		return fmt.Errorf("failed to upsert host: %w", err)
	}
	return nil
}

func (r *postgresHostRepository) Delete(ctx context.Context, exec SQLExecutor, discordID, sessionID int64) error {
	query := `DELETE FROM hosts WHERE discord_id = $1 AND session_id = $2`
	// Removing a host that was never registered is not an error.
	if _, err := r.getExecutor(exec).ExecContext(ctx, query, discordID, sessionID); err != nil {
		return fmt.Errorf("failed to delete host: %w", err)
	}
	return nil
}

func (r *postgresHostRepository) ListConfirmed(ctx context.Context, exec SQLExecutor, sessionID int64) ([]*models.Host, error) {
	query := `
		SELECT discord_id, session_id, status
		FROM hosts
		WHERE session_id = $1 AND status = $2
		ORDER BY discord_id`

	rows, err := r.getExecutor(exec).QueryContext(ctx, query, sessionID, models.HostStatusConfirmed)
	if err != nil {
		return nil, fmt.Errorf("failed to list confirmed hosts: %w", err)
	}
	defer rows.Close()

	hosts := make([]*models.Host, 0)
	for rows.Next() {
		h := &models.Host{}
		if err := rows.Scan(&h.DiscordID, &h.SessionID, &h.Status); err != nil {
			return nil, fmt.Errorf("failed to scan host row: %w", err)
		}
		hosts = append(hosts, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating host rows: %w", err)
	}
	return hosts, nil
}
