package models

import "time"

// Signup registers a team for one session. SignupTime orders the queue for
// lobby admission; change-signup carries the original time over so a roster
// change does not lose its spot in line. LobbyID is assigned by lobby
// sorting and cleared on every re-sort.
type Signup struct {
	TeamID     int       `json:"team_id" db:"team_id"`
	SessionID  int64     `json:"session_id" db:"session_id"`
	LobbyID    *int      `json:"lobby_id,omitempty" db:"lobby_id"`
	SignupTime time.Time `json:"signup_time" db:"signup_time"`

	Team *Team `json:"team,omitempty" db:"-"`
}

// TeamPlayerSignup is a joined row of a session's signups expanded to one
// entry per rostered player.
type TeamPlayerSignup struct {
	Team   *Team
	Player *Player
	Signup *Signup
}
