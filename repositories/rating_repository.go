package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/stooobe/go-league/models"
)

type RatingRepository interface {
	// GetOfficial returns the official rating for (profile, season), or
	// nil when none has been recorded.
	GetOfficial(ctx context.Context, exec SQLExecutor, profileID int64, season string) (*float64, error)
	// SetOfficial records the official rating for (profile, season),
	// replacing any existing value.
	SetOfficial(ctx context.Context, exec SQLExecutor, rating *models.Rating) error
}

type postgresRatingRepository struct {
	db *sql.DB
}

func NewPostgresRatingRepository(db *sql.DB) RatingRepository {
	return &postgresRatingRepository{db: db}
}

func (r *postgresRatingRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresRatingRepository) GetOfficial(ctx context.Context, exec SQLExecutor, profileID int64, season string) (*float64, error) {
	query := `
		SELECT value FROM ratings
		WHERE profile_id = $1 AND season = $2 AND rating_type = $3`

	var value float64
	err := r.getExecutor(exec).QueryRowContext(ctx, query, profileID, season, models.RatingTypeOfficial).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get official rating: %w", err)
	}
	return &value, nil
}

func (r *postgresRatingRepository) SetOfficial(ctx context.Context, exec SQLExecutor, rating *models.Rating) error {
	query := `
		INSERT INTO ratings (profile_id, season, rating_type, value)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (profile_id, season, rating_type) DO UPDATE SET value = EXCLUDED.value`

	_, err := r.getExecutor(exec).ExecContext(ctx, query,
		rating.ProfileID,
		rating.Season,
		rating.RatingType,
		rating.Value,
	)
	if err != nil {
		return fmt.Errorf("failed to set official rating: %w", err)
	}
	return nil
}
