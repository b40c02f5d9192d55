package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/stooobe/go-league/models"
	"github.com/stooobe/go-league/repositories"
)

const (
	// minGamesForWindow is how many games must separate two snapshots
	// before the older one can anchor a rating window.
	minGamesForWindow = 100
	// maxGamesForWindow is the point at which the window holds enough
	// games and the walk stops.
	maxGamesForWindow = 500
	// maxSnapshotAge bounds how far back the walk goes.
	maxSnapshotAge = 96 * 24 * time.Hour
)

// RatingService resolves official GO ratings and derives fallback ratings
// from career-stats snapshots when none has been recorded.
type RatingService struct {
	ratings  repositories.RatingRepository
	profiles repositories.ProfileRepository
	season   string
	logger   *slog.Logger
}

func NewRatingService(
	ratings repositories.RatingRepository,
	profiles repositories.ProfileRepository,
	season string,
	logger *slog.Logger,
) *RatingService {
	return &RatingService{
		ratings:  ratings,
		profiles: profiles,
		season:   season,
		logger:   logger,
	}
}

// OfficialRating returns the profile's official rating for the current
// season, or nil when none has been recorded.
func (s *RatingService) OfficialRating(ctx context.Context, exec repositories.SQLExecutor, profileID int64) (*float64, error) {
	return s.ratings.GetOfficial(ctx, exec, profileID, s.season)
}

// EnsureOfficialRating returns the official rating, deriving and recording
// one from recent career stats when it is missing. Returns nil when the
// profile has no stats to derive from.
func (s *RatingService) EnsureOfficialRating(ctx context.Context, exec repositories.SQLExecutor, profileID int64) (*float64, error) {
	rating, err := s.ratings.GetOfficial(ctx, exec, profileID, s.season)
	if err != nil {
		return nil, err
	}
	if rating != nil {
		return rating, nil
	}

	derived, err := s.CalcRatingFromStats(ctx, exec, profileID, time.Now())
	if err != nil {
		return nil, err
	}
	if derived == nil {
		s.logger.Error("could not derive a rating from career stats",
			slog.Int64("profile_id", profileID))
		return nil, nil
	}

	s.logger.Info("setting official rating from career stats",
		slog.Int64("profile_id", profileID),
		slog.Float64("rating", *derived))

	err = s.ratings.SetOfficial(ctx, exec, &models.Rating{
		ProfileID:  profileID,
		Season:     s.season,
		RatingType: models.RatingTypeOfficial,
		Value:      *derived,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record derived rating: %w", err)
	}
	return derived, nil
}

// CalcRatingFromStats derives a rating from the profile's stats snapshots
// at or before snapshotDate. It prefers the delta between the most recent
// snapshot and an older one at least minGamesForWindow games back, stopping
// the walk once the window holds maxGamesForWindow games or the snapshots
// get older than maxSnapshotAge. With no usable older snapshot the career
// totals are rated directly. Returns nil when the profile has no snapshots.
func (s *RatingService) CalcRatingFromStats(ctx context.Context, exec repositories.SQLExecutor, profileID int64, snapshotDate time.Time) (*float64, error) {
	snapshots, err := s.profiles.ListStatsBefore(ctx, exec, profileID, snapshotDate)
	if err != nil {
		return nil, err
	}
	if len(snapshots) == 0 {
		return nil, nil
	}

	mostRecent := snapshots[0]
	var previous *models.CareerStats
	for _, snapshot := range snapshots[1:] {
		if mostRecent.Games-snapshot.Games >= minGamesForWindow {
			previous = snapshot
		}
		if mostRecent.Games-snapshot.Games >= maxGamesForWindow {
			break
		}
		if snapshotDate.Sub(snapshot.Date) >= maxSnapshotAge {
			break
		}
	}

	if previous == nil {
		value := mostRecent.Rating()
		return &value, nil
	}

	diff, err := mostRecent.Diff(previous)
	if err != nil {
		return nil, err
	}
	value := diff.Rating()
	return &value, nil
}
