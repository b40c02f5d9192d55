package models

// RatingTypeOfficial is the rating type used for team aggregates and caps.
// At most one official rating exists per (profile, season).
const RatingTypeOfficial = "official"

// Rating is a per-season skill number for a game profile.
type Rating struct {
	ProfileID  int64   `json:"profile_id" db:"profile_id"`
	Season     string  `json:"season" db:"season"`
	RatingType string  `json:"rating_type" db:"rating_type"`
	Value      float64 `json:"value" db:"value"`
}
