package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/stooobe/go-league/models"
)

var ErrLobbyNotFound = errors.New("lobby not found")

type LobbyRepository interface {
	Create(ctx context.Context, exec SQLExecutor, lobby *models.Lobby) error
	// ListBySession returns the session's lobbies ordered by ID.
	ListBySession(ctx context.Context, exec SQLExecutor, sessionID int64) ([]*models.Lobby, error)
	// SetHost assigns the host and clears any stale lobby code.
	SetHost(ctx context.Context, exec SQLExecutor, lobbyID int, hostID int64) error
	Delete(ctx context.Context, exec SQLExecutor, lobbyID int) error
}

type postgresLobbyRepository struct {
	db *sql.DB
}

func NewPostgresLobbyRepository(db *sql.DB) LobbyRepository {
	return &postgresLobbyRepository{db: db}
}

func (r *postgresLobbyRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresLobbyRepository) Create(ctx context.Context, exec SQLExecutor, lobby *models.Lobby) error {
	query := `
		INSERT INTO lobbies (session_id, host_id, code)
		VALUES ($1, $2, $3)
		RETURNING id`

	err := r.getExecutor(exec).QueryRowContext(ctx, query, lobby.SessionID, lobby.HostID, lobby.Code).Scan(&lobby.ID)
	if err != nil {
		return fmt.Errorf("failed to create lobby: %w", err)
	}
	return nil
}

func (r *postgresLobbyRepository) ListBySession(ctx context.Context, exec SQLExecutor, sessionID int64) ([]*models.Lobby, error) {
	query := `SELECT id, session_id, host_id, code FROM lobbies WHERE session_id = $1 ORDER BY id`

	rows, err := r.getExecutor(exec).QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list lobbies: %w", err)
	}
	defer rows.Close()

	lobbies := make([]*models.Lobby, 0)
	for rows.Next() {
		l := &models.Lobby{}
		if err := rows.Scan(&l.ID, &l.SessionID, &l.HostID, &l.Code); err != nil {
			return nil, fmt.Errorf("failed to scan lobby row: %w", err)
		}
		lobbies = append(lobbies, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating lobby rows: %w", err)
	}
	return lobbies, nil
}

func (r *postgresLobbyRepository) SetHost(ctx context.Context, exec SQLExecutor, lobbyID int, hostID int64) error {
	query := `UPDATE lobbies SET host_id = $1, code = NULL WHERE id = $2`
	result, err := r.getExecutor(exec).ExecContext(ctx, query, hostID, lobbyID)
	if err != nil {
		return fmt.Errorf("failed to set lobby host: %w", err)
	}
	return checkAffectedRows(result, ErrLobbyNotFound)
}

func (r *postgresLobbyRepository) Delete(ctx context.Context, exec SQLExecutor, lobbyID int) error {
	result, err := r.getExecutor(exec).ExecContext(ctx, `DELETE FROM lobbies WHERE id = $1`, lobbyID)
	if err != nil {
		return fmt.Errorf("failed to delete lobby: %w", err)
	}
	return checkAffectedRows(result, ErrLobbyNotFound)
}
