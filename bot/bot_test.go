package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stooobe/go-league/services"
)

func registeredSubcommands() map[string]bool {
	subs := make(map[string]bool)
	for _, cmd := range slashCommands {
		for _, opt := range cmd.Options {
			subs[cmd.Name+" "+opt.Name] = true
		}
	}
	return subs
}

func TestDeferredCommandsAreRegistered(t *testing.T) {
	subs := registeredSubcommands()
	for name := range deferredCommands {
		assert.True(t, subs[name], "deferred command %q is not declared", name)
	}
	// list-teams answers publicly, sort-lobbies only to the admin
	assert.False(t, deferredCommands[commandGroupName+" list-teams"].ephemeral)
	assert.True(t, deferredCommands[adminGroupName+" sort-lobbies"].ephemeral)
}

func TestFlipCoinMessage(t *testing.T) {
	heads, err := flipCoinMessage(nil, func(n int64) int64 { return 0 })
	require.NoError(t, err)
	assert.Equal(t, "Coin flip: Heads", heads)

	tails, err := flipCoinMessage(nil, func(n int64) int64 { return 1 })
	require.NoError(t, err)
	assert.Equal(t, "Coin flip: Tails", tails)
}

func TestFlipCoinMessageRandomNumber(t *testing.T) {
	n := int64(20)
	msg, err := flipCoinMessage(&n, func(bound int64) int64 {
		assert.Equal(t, int64(20), bound)
		return 16
	})
	require.NoError(t, err)
	assert.Equal(t, "Random number between 1 and 20: 17", msg)
}

func TestFlipCoinMessageRejectsNonPositive(t *testing.T) {
	n := int64(0)
	_, err := flipCoinMessage(&n, func(int64) int64 { return 0 })
	require.Error(t, err)
	ue, ok := services.AsUserError(err)
	require.True(t, ok)
	assert.Equal(t, "Random number must be greater than 0.", ue.Message)
}
