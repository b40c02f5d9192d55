package models

import (
	"fmt"
	"time"
)

// Profile is a game account imported from the stats provider. Profiles are
// created and refreshed by external loaders; the bot reads them to link
// players (set-ign) and to derive ratings from career stats.
type Profile struct {
	ID             int64     `json:"id" db:"id"`
	IGN            string    `json:"ign" db:"ign"`
	AccountCreated time.Time `json:"account_created" db:"account_created"`
	LastLogin      time.Time `json:"last_login" db:"last_login"`
	AvatarURL      *string   `json:"avatar_url,omitempty" db:"avatar_url"`

	CareerStats []CareerStats `json:"career_stats,omitempty" db:"-"`
}

// CareerStats is a cumulative stats snapshot for a profile at a point in
// time. Deltas between snapshots drive the rating heuristic.
type CareerStats struct {
	Date      time.Time `json:"date" db:"date"`
	ProfileID int64     `json:"profile_id" db:"profile_id"`
	Games     int       `json:"games" db:"games"`
	Wins      int       `json:"wins" db:"wins"`
	Kills     int       `json:"kills" db:"kills"`
	Damage    int       `json:"damage" db:"damage"`
	MMR       *int      `json:"mmr,omitempty" db:"mmr"`
	Skill     *int      `json:"skill,omitempty" db:"skill"`
}

func (s *CareerStats) WinRate() float64 {
	if s.Games == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.Games)
}

func (s *CareerStats) KillsPerGame() float64 {
	if s.Games == 0 {
		return 0
	}
	return float64(s.Kills) / float64(s.Games)
}

// Rating converts the snapshot into a GO rating.
func (s *CareerStats) Rating() float64 {
	if s.Games == 0 {
		return 0
	}
	return 100.0 * (float64(s.Kills) + float64(s.Damage)/210.0 + 3.1*float64(s.Wins)) / float64(s.Games)
}

// Diff returns the stats accumulated between previous and s. Both snapshots
// must belong to the same profile and s must be the later one.
func (s *CareerStats) Diff(previous *CareerStats) (*CareerStats, error) {
	if s.ProfileID != previous.ProfileID {
		return nil, fmt.Errorf("cannot diff stats from different profiles %d and %d", s.ProfileID, previous.ProfileID)
	}
	if previous.Games > s.Games || previous.Wins > s.Wins || previous.Kills > s.Kills || previous.Damage > s.Damage {
		return nil, fmt.Errorf("cannot diff stats: earlier snapshot has higher totals for profile %d", s.ProfileID)
	}
	return &CareerStats{
		Date:      s.Date,
		ProfileID: s.ProfileID,
		Games:     s.Games - previous.Games,
		Wins:      s.Wins - previous.Wins,
		Kills:     s.Kills - previous.Kills,
		Damage:    s.Damage - previous.Damage,
		MMR:       s.MMR,
		Skill:     s.Skill,
	}, nil
}
