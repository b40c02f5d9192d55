package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/stooobe/go-league/models"
)

var ErrProfileNotFound = errors.New("game profile not found")

// ProfileRepository reads game profiles and their stats snapshots. Profile
// rows are written by the external stats loaders, not by the bot.
type ProfileRepository interface {
	FindByID(ctx context.Context, exec SQLExecutor, profileID int64) (*models.Profile, error)
	// SearchByIGN matches profiles whose IGN contains the given string
	// (case-insensitive), up to limit rows.
	SearchByIGN(ctx context.Context, exec SQLExecutor, ign string, limit int) ([]*models.Profile, error)
	// LatestStats returns the most recent stats snapshot for a profile, or
	// nil when the profile has none.
	LatestStats(ctx context.Context, exec SQLExecutor, profileID int64) (*models.CareerStats, error)
	// ListStatsBefore returns the profile's snapshots taken at or before
	// the given time, newest first.
	ListStatsBefore(ctx context.Context, exec SQLExecutor, profileID int64, before time.Time) ([]*models.CareerStats, error)
}

type postgresProfileRepository struct {
	db *sql.DB
}

func NewPostgresProfileRepository(db *sql.DB) ProfileRepository {
	return &postgresProfileRepository{db: db}
}

func (r *postgresProfileRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresProfileRepository) FindByID(ctx context.Context, exec SQLExecutor, profileID int64) (*models.Profile, error) {
	query := `SELECT id, ign, account_created, last_login, avatar_url FROM profiles WHERE id = $1`

	p := &models.Profile{}
	err := r.getExecutor(exec).QueryRowContext(ctx, query, profileID).Scan(
		&p.ID, &p.IGN, &p.AccountCreated, &p.LastLogin, &p.AvatarURL,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to find profile: %w", err)
	}
	return p, nil
}

func (r *postgresProfileRepository) SearchByIGN(ctx context.Context, exec SQLExecutor, ign string, limit int) ([]*models.Profile, error) {
	query := `
		SELECT id, ign, account_created, last_login, avatar_url
		FROM profiles
		WHERE ign ILIKE '%' || $1 || '%'
		ORDER BY ign
		LIMIT $2`

	rows, err := r.getExecutor(exec).QueryContext(ctx, query, strings.TrimSpace(ign), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search profiles by ign: %w", err)
	}
	defer rows.Close()

	profiles := make([]*models.Profile, 0)
	for rows.Next() {
		p := &models.Profile{}
		if err := rows.Scan(&p.ID, &p.IGN, &p.AccountCreated, &p.LastLogin, &p.AvatarURL); err != nil {
			return nil, fmt.Errorf("failed to scan profile row: %w", err)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating profile rows: %w", err)
	}
	return profiles, nil
}

func (r *postgresProfileRepository) scanStats(rows *sql.Rows, s *models.CareerStats) error {
	return rows.Scan(&s.Date, &s.ProfileID, &s.Games, &s.Wins, &s.Kills, &s.Damage, &s.MMR, &s.Skill)
}

func (r *postgresProfileRepository) LatestStats(ctx context.Context, exec SQLExecutor, profileID int64) (*models.CareerStats, error) {
	query := `
		SELECT date, profile_id, games, wins, kills, damage, mmr, skill
		FROM career_stats
		WHERE profile_id = $1
		ORDER BY date DESC
		LIMIT 1`

	s := &models.CareerStats{}
	err := r.getExecutor(exec).QueryRowContext(ctx, query, profileID).Scan(
		&s.Date, &s.ProfileID, &s.Games, &s.Wins, &s.Kills, &s.Damage, &s.MMR, &s.Skill,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest stats: %w", err)
	}
	return s, nil
}

func (r *postgresProfileRepository) ListStatsBefore(ctx context.Context, exec SQLExecutor, profileID int64, before time.Time) ([]*models.CareerStats, error) {
	query := `
		SELECT date, profile_id, games, wins, kills, damage, mmr, skill
		FROM career_stats
		WHERE profile_id = $1 AND date <= $2
		ORDER BY date DESC`

	rows, err := r.getExecutor(exec).QueryContext(ctx, query, profileID, before)
	if err != nil {
		return nil, fmt.Errorf("failed to list stats: %w", err)
	}
	defer rows.Close()

	stats := make([]*models.CareerStats, 0)
	for rows.Next() {
		s := &models.CareerStats{}
		if err := r.scanStats(rows, s); err != nil {
			return nil, fmt.Errorf("failed to scan stats row: %w", err)
		}
		stats = append(stats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stats rows: %w", err)
	}
	return stats, nil
}
