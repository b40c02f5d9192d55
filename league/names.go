package league

import (
	"strconv"
	"strings"
)

// MaxNameAttempts bounds the rename loop when resolving team name
// collisions before the signup is rejected.
const MaxNameAttempts = 20

// IncrementTeamName produces the next candidate for a taken team name.
// A trailing number is treated as a counter and bumped, otherwise " 2" is
// appended: "Foo" -> "Foo 2" -> "Foo 3".
func IncrementTeamName(name string) string {
	base := strings.TrimRight(name, "0123456789")
	n := 1
	if name != base {
		if parsed, err := strconv.Atoi(name[len(base):]); err == nil {
			n = parsed
		}
	}
	return strings.TrimSpace(base) + " " + strconv.Itoa(n+1)
}
