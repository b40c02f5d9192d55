package league

import (
	"fmt"
	"sort"

	"github.com/stooobe/go-league/models"
)

// maxPlacementRetriesPerLobby bounds the draft loop: after two full passes
// over the lobbies without placing anything the remaining teams are
// unplaceable.
const maxPlacementRetriesPerLobby = 2

type SnakeDraftSorter struct {
}

func NewSnakeDraftSorter() LobbySorter {
	return &SnakeDraftSorter{}
}

func (s *SnakeDraftSorter) GetName() string {
	return "SnakeDraft"
}

// lobbyCountForPlayers derives how many lobbies a session needs from its
// total player count.
func lobbyCountForPlayers(playerCount int) (int, error) {
	switch {
	case playerCount == 0:
		return 0, ErrNoPlayers
	case playerCount < 30:
		return 1, nil
	case playerCount <= 48:
		return 2, nil
	default:
		return 3, nil
	}
}

// snakeDraftInc advances the lobby index in snake order: up to the last
// index, then back down to zero, repeating. The index stays put for one
// step at each end.
func snakeDraftInc(i int, countingUp bool, maxI int) (int, bool) {
	if countingUp {
		if i == maxI-1 {
			countingUp = false
		} else {
			i++
		}
	} else {
		if i == 0 {
			countingUp = true
		} else {
			i--
		}
	}
	return i, countingUp
}

type lobbyState struct {
	playerCount int
	hostID      int64
	hasHost     bool
	teams       []*models.Team
}

func (s *SnakeDraftSorter) SortLobbies(params SortLobbiesParams) (*SortResult, error) {
	playerCount := 0
	for _, t := range params.Teams {
		playerCount += t.Size
	}

	lobbyCount, err := lobbyCountForPlayers(playerCount)
	if err != nil {
		return nil, err
	}

	hostSet := make(map[int64]bool, len(params.HostIDs))
	for _, id := range params.HostIDs {
		hostSet[id] = true
	}

	// A team counts for at most one host slot even with two hosts rostered.
	teamToHost := make(map[int]int64)
	hostsOnTeams := make(map[int64]bool)
	for _, team := range params.Teams {
		for _, pid := range team.PlayerIDs {
			if hostSet[pid] {
				teamToHost[team.ID] = pid
				hostsOnTeams[pid] = true
			}
		}
	}

	// Free hosts in ascending player ID so draws below are deterministic.
	freeHosts := make([]int64, 0, len(params.HostIDs))
	for _, id := range params.HostIDs {
		if !hostsOnTeams[id] {
			freeHosts = append(freeHosts, id)
		}
	}
	sort.Slice(freeHosts, func(a, b int) bool { return freeHosts[a] < freeHosts[b] })

	// Run with fewer lobbies rather than failing when hosts are scarce.
	if possibleHosts := len(freeHosts) + len(teamToHost); possibleHosts < lobbyCount {
		lobbyCount = possibleHosts
	}

	// Admit teams in signup order until the session is full.
	maxPlayers := lobbyCount * params.Capacity
	teamsIn := make([]*models.Team, 0, len(params.Teams))
	playersIn := 0
	for _, team := range params.Teams {
		if playersIn+team.Size > maxPlayers {
			continue
		}
		teamsIn = append(teamsIn, team)
		playersIn += team.Size
	}

	// Highest rated first; the stable sort keeps signup order among ties.
	queue := make([]*models.Team, len(teamsIn))
	copy(queue, teamsIn)
	sort.SliceStable(queue, func(a, b int) bool {
		return queue[a].RatingValue() > queue[b].RatingValue()
	})

	lobbies := make([]lobbyState, lobbyCount)

	i := 0
	countingUp := true
	j := 0
	failedToFit := 0
	for len(queue) > 0 && lobbyCount > 0 {
		if j == len(queue) {
			// Nothing fits in lobby i; move on and rescan from the top.
			j = 0
			failedToFit++
			i, countingUp = snakeDraftInc(i, countingUp, lobbyCount)
			if failedToFit >= lobbyCount*maxPlacementRetriesPerLobby {
				break
			}
			continue
		}

		team := queue[j]

		if lobbies[i].playerCount+team.Size > params.Capacity {
			j++
			continue
		}

		if hostID, carriesHost := teamToHost[team.ID]; carriesHost {
			if lobbies[i].hasHost && lobbies[i].hostID != hostID {
				j++
				continue
			}
			lobbies[i].hostID = hostID
			lobbies[i].hasHost = true
		}

		// Placement resets the scan so the next pick re-evaluates the
		// highest-rated team remaining.
		queue = append(queue[:j], queue[j+1:]...)
		j = 0
		lobbies[i].playerCount += team.Size
		lobbies[i].teams = append(lobbies[i].teams, team)
		i, countingUp = snakeDraftInc(i, countingUp, lobbyCount)
	}

	placed := make(map[int]bool)
	result := &SortResult{}
	for idx := range lobbies {
		if len(lobbies[idx].teams) == 0 {
			continue
		}
		if !lobbies[idx].hasHost {
			if len(freeHosts) == 0 {
				return nil, fmt.Errorf("no free host available for lobby %d", idx+1)
			}
			lobbies[idx].hostID = freeHosts[0]
			lobbies[idx].hasHost = true
			freeHosts = freeHosts[1:]
		}
		for _, t := range lobbies[idx].teams {
			placed[t.ID] = true
		}
		result.Lobbies = append(result.Lobbies, LobbyAssignment{
			HostID: lobbies[idx].hostID,
			Teams:  lobbies[idx].teams,
		})
	}

	for _, team := range params.Teams {
		if !placed[team.ID] {
			result.Waitlist = append(result.Waitlist, team)
		}
	}

	return result, nil
}
