package models

// Roster joins a team to one of its players. A (team, player) pair appears
// at most once; a player may appear on many teams.
type Roster struct {
	TeamID    int   `json:"team_id" db:"team_id"`
	DiscordID int64 `json:"discord_id" db:"discord_id"`
}
