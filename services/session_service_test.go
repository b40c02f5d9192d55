package services

import (
	"context"
	"testing"
	"time"

	"github.com/stooobe/go-league/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetSessionTimeCreatesSession(t *testing.T) {
	env := newTestEnv()

	require.NoError(t, env.sessionSvc.SetSessionTime(context.Background(), 100, sessionTime))

	session, err := env.sessionSvc.GetSession(context.Background(), 100)
	require.NoError(t, err)
	assert.Equal(t, sessionTime, session.SessionTime)
	assert.Equal(t, models.SignupsOpen, session.SignupState)
}

func TestSetSessionTimeUpdates(t *testing.T) {
	env := newTestEnv()
	require.NoError(t, env.sessionSvc.SetSessionTime(context.Background(), 100, sessionTime))

	later := sessionTime.Add(2 * time.Hour)
	require.NoError(t, env.sessionSvc.SetSessionTime(context.Background(), 100, later))

	session, err := env.sessionSvc.GetSession(context.Background(), 100)
	require.NoError(t, err)
	assert.Equal(t, later, session.SessionTime)
}

func TestGetSessionMissing(t *testing.T) {
	env := newTestEnv()
	_, err := env.sessionSvc.GetSession(context.Background(), 999)
	ue := requireUserError(t, err)
	assert.Equal(t, "No session is set up on this channel.", ue.Message)
}

func TestSetStateTransitions(t *testing.T) {
	env := newTestEnv()
	env.openSession(100, sessionTime)

	// states form a flat set, every direction is allowed
	for _, state := range []models.SignupState{
		models.SignupsClosed,
		models.SignupsOpen,
		models.SignupsChangeOnly,
		models.SignupsOpen,
	} {
		require.NoError(t, env.sessionSvc.SetState(context.Background(), 100, state))
		session, err := env.sessionSvc.GetSession(context.Background(), 100)
		require.NoError(t, err)
		assert.Equal(t, state, session.SignupState)
	}
}

func TestSetStateRejectsUnknown(t *testing.T) {
	env := newTestEnv()
	env.openSession(100, sessionTime)
	err := env.sessionSvc.SetState(context.Background(), 100, models.SignupState("frozen"))
	requireUserError(t, err)
}

func TestSetHostRequiresRegisteredPlayer(t *testing.T) {
	env := newTestEnv()
	env.openSession(100, sessionTime)

	err := env.sessionSvc.SetHost(context.Background(), 100, Member{ID: 7, Name: "dave"})
	ue := requireUserError(t, err)
	assert.Equal(t, "dave needs to run `/go set_ign`.", ue.Message)
}

func TestSetAndRemoveHost(t *testing.T) {
	env := newTestEnv()
	env.openSession(100, sessionTime)
	dave := env.addPlayer(7, "dave", 200)

	require.NoError(t, env.sessionSvc.SetHost(context.Background(), 100, *dave))

	hosts, err := env.hosts.ListConfirmed(context.Background(), nil, 100)
	require.NoError(t, err)
	require.Len(t, hosts, 1)
	assert.Equal(t, int64(7), hosts[0].DiscordID)

	require.NoError(t, env.sessionSvc.RemoveHost(context.Background(), 100, *dave))
	hosts, err = env.hosts.ListConfirmed(context.Background(), nil, 100)
	require.NoError(t, err)
	assert.Empty(t, hosts)

	// removing again is a no-op
	require.NoError(t, env.sessionSvc.RemoveHost(context.Background(), 100, *dave))
}

func TestListSchedule(t *testing.T) {
	env := newTestEnv()
	env.openSession(200, sessionTime.AddDate(0, 0, 7))
	env.openSession(100, sessionTime)
	p1 := env.addPlayer(1, "alice", 250)
	p2 := env.addPlayer(2, "bob", 300)

	_, err := env.signupSvc.Signup(context.Background(), SignupRequest{
		SessionID: 100, TeamName: "Alpha", Players: []*Member{p1, p2},
	})
	require.NoError(t, err)

	entries, err := env.sessionSvc.ListSchedule(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// ordered by session time
	assert.Equal(t, int64(100), entries[0].Session.ID)
	assert.Equal(t, 1, entries[0].TeamCount)
	assert.Equal(t, 2, entries[0].PlayerCount)
	assert.Equal(t, int64(200), entries[1].Session.ID)
	assert.Equal(t, 0, entries[1].TeamCount)
}

func TestListTeams(t *testing.T) {
	env := newTestEnv()
	env.openSession(100, sessionTime)
	p1 := env.addPlayer(1, "alice", 250)
	p2 := env.addPlayer(2, "bob", 300)
	p3 := env.addPlayer(3, "carol", 150)

	_, err := env.signupSvc.Signup(context.Background(), SignupRequest{
		SessionID: 100, TeamName: "Alpha", Players: []*Member{p1, p2},
		SignupTime: sessionTime.Add(-2 * time.Hour),
	})
	require.NoError(t, err)
	_, err = env.signupSvc.Signup(context.Background(), SignupRequest{
		SessionID: 100, TeamName: "Bravo", Players: []*Member{p3},
		SignupTime: sessionTime.Add(-1 * time.Hour),
	})
	require.NoError(t, err)
	require.NoError(t, env.sessionSvc.SetHost(context.Background(), 100, *p3))

	listing, err := env.sessionSvc.ListTeams(context.Background(), 100)
	require.NoError(t, err)
	require.Len(t, listing.Teams, 2)
	assert.Equal(t, "Alpha", listing.Teams[0].Name)
	assert.Equal(t, "Bravo", listing.Teams[1].Name)
	assert.Equal(t, []int64{3}, listing.HostIDs)
}
