package league

import (
	"fmt"
	"regexp"
	"strconv"
)

// Playfab account IDs are 16 uppercase hex digits covering the full uint64
// range. The database stores them as signed int64, shifted down by 2^63.

var playfabPattern = regexp.MustCompile(`^[0-9A-F]{16}$`)

// IsPlayfabID reports whether s looks like a playfab account ID.
func IsPlayfabID(s string) bool {
	return playfabPattern.MatchString(s)
}

// AsPlayfabID renders a stored profile ID as the playfab hex form.
func AsPlayfabID(profileID int64) string {
	return fmt.Sprintf("%016X", uint64(profileID)+(1<<63))
}

// ParsePlayfabID converts a playfab hex string to the stored profile ID.
func ParsePlayfabID(s string) (int64, error) {
	if !IsPlayfabID(s) {
		return 0, fmt.Errorf("not a playfab ID: %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("not a playfab ID: %q", s)
	}
	return int64(v - (1 << 63)), nil
}
