package models

// Lobby is a sub-group of a session's signed-up teams with one assigned
// host. Code is the in-game lobby code; once it is published the lobby is
// locked and the session can no longer be re-sorted.
type Lobby struct {
	ID        int     `json:"id" db:"id"`
	SessionID int64   `json:"session_id" db:"session_id"`
	HostID    *int64  `json:"host_id,omitempty" db:"host_id"`
	Code      *string `json:"code,omitempty" db:"code"`
}
