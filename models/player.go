package models

import "time"

// Player is a league member keyed by their Discord snowflake ID.
// ProfileID links to the game-stats profile; it is nullable until the
// player runs set-ign, and a profile belongs to at most one player.
type Player struct {
	DiscordID   int64     `json:"discord_id" db:"discord_id"`
	DiscordName string    `json:"discord_name" db:"discord_name"`
	ProfileID   *int64    `json:"profile_id,omitempty" db:"profile_id"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`

	Profile *Profile `json:"profile,omitempty" db:"-"`
}
