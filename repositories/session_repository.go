package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/stooobe/go-league/models"
)

var ErrSessionNotFound = errors.New("session not found")

type SessionRepository interface {
	Get(ctx context.Context, exec SQLExecutor, id int64) (*models.Session, error)
	// UpsertTime creates the session with state "open" if missing, updates
	// the time if it changed, and does nothing when the stored time is
	// already equal.
	UpsertTime(ctx context.Context, exec SQLExecutor, id int64, sessionTime time.Time) error
	SetState(ctx context.Context, exec SQLExecutor, id int64, state models.SignupState) error
	// List returns all sessions ordered by session time.
	List(ctx context.Context, exec SQLExecutor) ([]*models.Session, error)
}

type postgresSessionRepository struct {
	db *sql.DB
}

func NewPostgresSessionRepository(db *sql.DB) SessionRepository {
	return &postgresSessionRepository{db: db}
}

func (r *postgresSessionRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresSessionRepository) Get(ctx context.Context, exec SQLExecutor, id int64) (*models.Session, error) {
	query := `SELECT id, session_time, signup_state FROM sessions WHERE id = $1`

	s := &models.Session{}
	err := r.getExecutor(exec).QueryRowContext(ctx, query, id).Scan(&s.ID, &s.SessionTime, &s.SignupState)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return s, nil
}

func (r *postgresSessionRepository) UpsertTime(ctx context.Context, exec SQLExecutor, id int64, sessionTime time.Time) error {
	existing, err := r.Get(ctx, exec, id)
	if err != nil && !errors.Is(err, ErrSessionNotFound) {
		return err
	}

	executor := r.getExecutor(exec)
	if existing == nil {
		query := `INSERT INTO sessions (id, session_time, signup_state) VALUES ($1, $2, $3)`
		if _, err := executor.ExecContext(ctx, query, id, sessionTime, models.SignupsOpen); err != nil {
			return fmt.Errorf("failed to create session: %w", err)
		}
		return nil
	}

	if existing.SessionTime.Equal(sessionTime) {
		return nil
	}

	query := `UPDATE sessions SET session_time = $1 WHERE id = $2`
	if _, err := executor.ExecContext(ctx, query, sessionTime, id); err != nil {
		return fmt.Errorf("failed to update session time: %w", err)
	}
	return nil
}

func (r *postgresSessionRepository) SetState(ctx context.Context, exec SQLExecutor, id int64, state models.SignupState) error {
	query := `UPDATE sessions SET signup_state = $1 WHERE id = $2`
	result, err := r.getExecutor(exec).ExecContext(ctx, query, state, id)
	if err != nil {
		return fmt.Errorf("failed to set session state: %w", err)
	}
	return checkAffectedRows(result, ErrSessionNotFound)
}

func (r *postgresSessionRepository) List(ctx context.Context, exec SQLExecutor) ([]*models.Session, error) {
	query := `SELECT id, session_time, signup_state FROM sessions ORDER BY session_time`

	rows, err := r.getExecutor(exec).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	sessions := make([]*models.Session, 0)
	for rows.Next() {
		s := &models.Session{}
		if err := rows.Scan(&s.ID, &s.SessionTime, &s.SignupState); err != nil {
			return nil, fmt.Errorf("failed to scan session row: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating session rows: %w", err)
	}
	return sessions, nil
}
