package models

import "time"

// SignupState represents the signup states of a session, matching the ENUM
// in the database. The states form a flat set: an admin may move a session
// between any two of them in either direction.
type SignupState string

const (
	// SignupsOpen allows signup, change-signup and cancel.
	SignupsOpen SignupState = "open"
	// SignupsClosed allows none of the signup operations (admin cancel is
	// still permitted).
	SignupsClosed SignupState = "closed"
	// SignupsChangeOnly allows change-signup and cancel but no new signups.
	SignupsChangeOnly SignupState = "change_only"
)

// Session is a scheduled league time slot bound to one Discord channel;
// the channel ID is the session ID.
type Session struct {
	ID          int64       `json:"id" db:"id"`
	SessionTime time.Time   `json:"session_time" db:"session_time"`
	SignupState SignupState `json:"signup_state" db:"signup_state"`
}
