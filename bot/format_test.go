package bot

import (
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stooobe/go-league/models"
	"github.com/stooobe/go-league/services"
)

func TestEscapeMarkdown(t *testing.T) {
	assert.Equal(t, "plain", escapeMarkdown("plain"))
	assert.Equal(t, "a\\*b\\_c\\~d\\`e", escapeMarkdown("a*b_c~d`e"))
}

func TestRatingStr(t *testing.T) {
	assert.Equal(t, "None", ratingStr(nil))
	rating := 1234.6
	assert.Equal(t, "1235", ratingStr(&rating))
}

func TestTeamLine(t *testing.T) {
	rating := 900.0
	team := &models.Team{Name: "big_dogs", Rating: &rating, PlayerIDs: []int64{7, 8}}
	assert.Equal(t, "C: **big\\_dogs** (*900*) -- <@7>, <@8>\n", teamLine(2, team))
}

func TestSignupMessage(t *testing.T) {
	rating := 1500.0
	result := &services.SignupResult{
		Team:        &models.Team{Name: "Alpha", Rating: &rating, PlayerIDs: []int64{1, 2, 3}},
		SessionTime: time.Date(2026, 9, 7, 20, 0, 0, 0, time.UTC),
		SignupCount: 2,
	}
	msg := signupMessage(result)
	assert.Contains(t, msg, `Signed up "Alpha" for Monday, September 7 @ 8:00 PM UTC`)
	assert.Contains(t, msg, "- Players: <@1>, <@2>, <@3>.")
	assert.Contains(t, msg, "- This is signup #2 for the team.")
}

func TestCancelMessage(t *testing.T) {
	result := &services.CancelResult{
		TeamName:         "Alpha",
		SessionTime:      time.Date(2026, 9, 7, 20, 0, 0, 0, time.UTC),
		SignupsRemaining: 1,
	}
	msg := cancelMessage(result)
	assert.Contains(t, msg, `Cancelled "Alpha" for session on Monday, September 7 @ 8:00 PM UTC.`)
	assert.Contains(t, msg, "There are 1 signups still active for the team.")
}

func TestParseSessionTime(t *testing.T) {
	for _, input := range []string{
		"2026-09-07 20:00",
		"2026-09-07 8:00 PM",
		"9/7/2026 20:00",
		"Sep 7 2026 8:00 PM",
	} {
		parsed, err := parseSessionTime(input)
		require.NoError(t, err, input)
		assert.Equal(t, time.Date(2026, 9, 7, 20, 0, 0, 0, time.Local), parsed, input)
	}
}

func TestParseSessionTimeInvalid(t *testing.T) {
	_, err := parseSessionTime("next tuesday-ish")
	require.Error(t, err)
	ue, ok := services.AsUserError(err)
	require.True(t, ok)
	assert.Equal(t, "Error: Could not parse date string 'next tuesday-ish'", ue.Message)
}

func TestNewOptionMap(t *testing.T) {
	opts := newOptionMap([]*discordgo.ApplicationCommandInteractionDataOption{
		{Name: "team-name", Type: discordgo.ApplicationCommandOptionString, Value: "Alpha"},
	})
	assert.Equal(t, "Alpha", opts.str("team-name"))
	assert.Equal(t, "", opts.str("missing"))
}
