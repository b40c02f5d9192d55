package services

import "time"

// Member is the slice of a Discord user the services care about.
type Member struct {
	ID   int64
	Name string
}

// Notice is a direct message queued for a player during an operation. The
// command layer flushes notices only after the transaction commits.
type Notice struct {
	DiscordID int64
	Message   string
}

// FormatSessionTime renders a session time the way it appears in chat,
// e.g. "Monday, January 2 @ 3:04 PM MST".
func FormatSessionTime(t time.Time) string {
	return t.Format("Monday, January 2 @ 3:04 PM MST")
}
