package league

import (
	"errors"

	"github.com/stooobe/go-league/models"
)

// ErrNoPlayers is returned when lobby sorting runs on a session with no
// signed-up players.
var ErrNoPlayers = errors.New("no players signed up for this session")

type SortLobbiesParams struct {
	// HostIDs are the session's confirmed hosts.
	HostIDs []int64
	// Teams in signup order: lower index is earlier signup.
	Teams []*models.Team
	// Capacity is the player cap per lobby.
	Capacity int
}

// SortResult maps each used lobby's host to its teams, in lobby order.
type SortResult struct {
	Lobbies []LobbyAssignment
	// Waitlist holds the teams that did not fit, in signup order.
	Waitlist []*models.Team
}

type LobbyAssignment struct {
	HostID int64
	Teams  []*models.Team
}

// LobbySorter partitions a session's signed-up teams into hosted lobbies.
type LobbySorter interface {
	SortLobbies(params SortLobbiesParams) (*SortResult, error)

	GetName() string
}
