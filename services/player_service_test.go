package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stooobe/go-league/league"
	"github.com/stooobe/go-league/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addProfile(env *testEnv, id int64, ign string) *models.Profile {
	profile := &models.Profile{ID: id, IGN: ign}
	env.profiles.profiles[id] = profile
	return profile
}

func TestSetIGNLinksProfile(t *testing.T) {
	env := newTestEnv()
	addProfile(env, 5000, "SharpShooter")
	env.ratingRepo.ratings[ratingKey{5000, testSeason}] = 420

	result, err := env.playerSvc.SetIGN(context.Background(), Member{ID: 1, Name: "alice"}, "SharpShooter")
	require.NoError(t, err)

	assert.Equal(t, int64(5000), result.Profile.ID)
	require.NotNil(t, result.Player.ProfileID)
	assert.Equal(t, int64(5000), *result.Player.ProfileID)
	require.NotNil(t, result.Rating)
	assert.Equal(t, 420.0, *result.Rating)

	// the player record was created on the fly
	stored, err := env.players.FindByID(context.Background(), nil, 1)
	require.NoError(t, err)
	assert.Equal(t, "alice", stored.DiscordName)
}

func TestSetIGNDerivesRatingFromStats(t *testing.T) {
	env := newTestEnv()
	addProfile(env, 5000, "SharpShooter")
	snap := statsSnapshot(5000, time.Now().Add(-24*time.Hour), 200, 80, 600, 42000)
	env.profiles.stats[5000] = []*models.CareerStats{snap}

	result, err := env.playerSvc.SetIGN(context.Background(), Member{ID: 1, Name: "alice"}, "SharpShooter")
	require.NoError(t, err)
	require.NotNil(t, result.Rating)
	assert.InDelta(t, snap.Rating(), *result.Rating, 0.001)

	_, ok := env.ratingRepo.ratings[ratingKey{5000, testSeason}]
	assert.True(t, ok, "derived rating should be persisted")
}

func TestSetIGNAlreadySet(t *testing.T) {
	env := newTestEnv()
	alice := env.addPlayer(1, "alice", 250)
	addProfile(env, 6000, "OtherName")

	_, err := env.playerSvc.SetIGN(context.Background(), *alice, "OtherName")
	ue := requireUserError(t, err)
	assert.Contains(t, ue.Message, "already set to alice_ign")
}

func TestSetIGNNotFound(t *testing.T) {
	env := newTestEnv()

	_, err := env.playerSvc.SetIGN(context.Background(), Member{ID: 1, Name: "alice"}, "NoSuchName")
	ue := requireUserError(t, err)
	assert.Contains(t, ue.Message, `Could not find a Population One account with IGN = "NoSuchName"`)
}

func TestSetIGNAmbiguousListsCandidates(t *testing.T) {
	env := newTestEnv()
	for i := int64(0); i < 3; i++ {
		p := addProfile(env, 5000+i, fmt.Sprintf("Sharp%d", i))
		env.profiles.stats[p.ID] = []*models.CareerStats{
			statsSnapshot(p.ID, time.Now().Add(-24*time.Hour), 100, 40, 300, 21000),
		}
	}

	_, err := env.playerSvc.SetIGN(context.Background(), Member{ID: 1, Name: "alice"}, "Sharp")
	ue := requireUserError(t, err)
	assert.Contains(t, ue.Message, "Found 3 players")
	assert.Contains(t, ue.Message, league.AsPlayfabID(5000))
	assert.Contains(t, ue.Message, league.AsPlayfabID(5002))
}

func TestSetIGNByPlayfabID(t *testing.T) {
	env := newTestEnv()
	addProfile(env, 5000, "SharpShooter")
	env.ratingRepo.ratings[ratingKey{5000, testSeason}] = 420

	result, err := env.playerSvc.SetIGN(context.Background(), Member{ID: 1, Name: "alice"}, league.AsPlayfabID(5000))
	require.NoError(t, err)
	assert.Equal(t, int64(5000), result.Profile.ID)
}

func TestSetIGNProfileAlreadyClaimed(t *testing.T) {
	env := newTestEnv()
	alice := env.addPlayer(1, "alice", 250)
	_ = alice

	profileID := int64(1000) // alice's profile from addPlayer
	_, ok := env.profiles.profiles[profileID]
	require.True(t, ok)

	_, err := env.playerSvc.SetIGN(context.Background(), Member{ID: 2, Name: "bob"}, "alice_ign")
	ue := requireUserError(t, err)
	assert.Contains(t, ue.Message, `associated with Discord user "alice"`)
}

func TestPlayerInfoUnregistered(t *testing.T) {
	env := newTestEnv()
	_, err := env.playerSvc.PlayerInfo(context.Background(), Member{ID: 1, Name: "alice"})
	ue := requireUserError(t, err)
	assert.Equal(t, "alice is not registered with GO League.", ue.Message)
}

func TestPlayerInfo(t *testing.T) {
	env := newTestEnv()
	env.openSession(100, sessionTime)
	env.openSession(200, sessionTime.AddDate(0, 0, 7))
	alice := env.addPlayer(1, "alice", 250)
	bob := env.addPlayer(2, "bob", 300)

	_, err := env.signupSvc.Signup(context.Background(), SignupRequest{
		SessionID: 200, TeamName: "Duo", Players: []*Member{alice, bob},
	})
	require.NoError(t, err)
	_, err = env.signupSvc.Signup(context.Background(), SignupRequest{
		SessionID: 100, TeamName: "Solo", Players: []*Member{alice},
	})
	require.NoError(t, err)

	info, err := env.playerSvc.PlayerInfo(context.Background(), *alice)
	require.NoError(t, err)

	assert.Equal(t, "alice_ign", info.Profile.IGN)
	assert.Equal(t, 250.0, info.Rating)
	assert.Len(t, info.Teams, 2)

	// signups come back ordered by session time
	require.Len(t, info.Signups, 2)
	assert.Equal(t, "Solo", info.Signups[0].TeamName)
	assert.Equal(t, int64(100), info.Signups[0].SessionID)
	assert.Equal(t, "Duo", info.Signups[1].TeamName)
}
