package models

// HostStatusConfirmed marks a host that participates in lobby sorting.
// Any other status (e.g. "tentative") is tracked but ignored by the sorter.
const HostStatusConfirmed = "confirmed"

// Host registers a player as a lobby host candidate for one session.
type Host struct {
	DiscordID int64  `json:"discord_id" db:"discord_id"`
	SessionID int64  `json:"session_id" db:"session_id"`
	Status    string `json:"status" db:"status"`
}
