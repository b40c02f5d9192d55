package models

import "time"

// Team is an immutable named roster. Size is fixed at creation and Rating
// is the sum of the roster's official ratings at creation time (nil when a
// rating could not be resolved, which should only occur in legacy rows).
// Re-forming the same set of players always resolves to the same team;
// a different roster is a different team.
type Team struct {
	ID        int       `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Size      int       `json:"size" db:"size"`
	Rating    *float64  `json:"rating,omitempty" db:"rating"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// PlayerIDs is the roster, populated by repository lookups that join
	// the roster table. Not a column.
	PlayerIDs []int64 `json:"player_ids,omitempty" db:"-"`
}

// RatingValue returns the team rating, treating a missing rating as zero.
func (t *Team) RatingValue() float64 {
	if t.Rating == nil {
		return 0
	}
	return *t.Rating
}

// HasPlayer reports whether the given player is on the roster.
// PlayerIDs must have been populated.
func (t *Team) HasPlayer(discordID int64) bool {
	for _, id := range t.PlayerIDs {
		if id == discordID {
			return true
		}
	}
	return false
}
