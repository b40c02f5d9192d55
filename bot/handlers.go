package bot

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/stooobe/go-league/league"
	"github.com/stooobe/go-league/models"
	"github.com/stooobe/go-league/services"
)

func (b *Bot) handleSignup(ctx context.Context, i *discordgo.InteractionCreate, opts optionMap) (*reply, error) {
	sid, err := sessionID(i)
	if err != nil {
		return nil, err
	}
	players, err := rosterMembers(i, opts)
	if err != nil {
		return nil, err
	}
	result, err := b.signups.Signup(ctx, services.SignupRequest{
		SessionID: sid,
		TeamName:  opts.str("team-name"),
		Players:   players,
	})
	if err != nil {
		return nil, err
	}
	return &reply{content: signupMessage(result), notices: result.Notices}, nil
}

func signupMessage(result *services.SignupResult) string {
	msg := fmt.Sprintf("Signed up %q for %s", result.Team.Name, services.FormatSessionTime(result.SessionTime))
	msg += fmt.Sprintf("\n- Players: %s.", mentionList(result.Team.PlayerIDs))
	msg += fmt.Sprintf("\n- This is signup #%d for the team.", result.SignupCount)
	return msg
}

func (b *Bot) handleChangeSignup(ctx context.Context, i *discordgo.InteractionCreate, opts optionMap) (*reply, error) {
	sid, err := sessionID(i)
	if err != nil {
		return nil, err
	}
	actor, err := actorMember(i)
	if err != nil {
		return nil, err
	}
	players, err := rosterMembers(i, opts)
	if err != nil {
		return nil, err
	}
	result, err := b.signups.ChangeSignup(ctx, services.ChangeSignupRequest{
		SessionID:   sid,
		Actor:       actor,
		Players:     players,
		NewTeamName: opts.str("new-team-name"),
	})
	if err != nil {
		return nil, err
	}
	msg := fmt.Sprintf("Cancelled %q for this session.\n", result.OldTeamName)
	msg += fmt.Sprintf("Signed up %q for this session.", result.Signup.Team.Name)
	msg += fmt.Sprintf("\n- Players: %s.", mentionList(result.Signup.Team.PlayerIDs))
	msg += fmt.Sprintf("\n- This is signup #%d for the team.", result.Signup.SignupCount)
	return &reply{content: msg, notices: result.Notices}, nil
}

func (b *Bot) handleCancel(ctx context.Context, i *discordgo.InteractionCreate, opts optionMap) (*reply, error) {
	sid, err := sessionID(i)
	if err != nil {
		return nil, err
	}
	actor, err := actorMember(i)
	if err != nil {
		return nil, err
	}
	result, err := b.signups.Cancel(ctx, sid, actor, false)
	if err != nil {
		return nil, err
	}
	return &reply{content: cancelMessage(result), notices: result.Notices}, nil
}

func cancelMessage(result *services.CancelResult) string {
	msg := fmt.Sprintf("Cancelled %q for session on %s.",
		result.TeamName, services.FormatSessionTime(result.SessionTime))
	msg += fmt.Sprintf("\nThere are %d signups still active for the team.", result.SignupsRemaining)
	return msg
}

func (b *Bot) handleSub(ctx context.Context, i *discordgo.InteractionCreate, opts optionMap) (*reply, error) {
	msg := "GO League doesn't have subs\n"
	msg += "- Every new combo of players is a new team.\n"
	msg += "- Use `/go change-signup` to sign up a different team for a session while keeping your original signup time."
	return &reply{content: msg}, nil
}

// flipCoinMessage rolls via the supplied source so tests stay
// deterministic; roll(n) must return a value in [0, n).
func flipCoinMessage(randomNum *int64, roll func(n int64) int64) (string, error) {
	if randomNum != nil {
		if *randomNum < 1 {
			return "", services.Userf("Random number must be greater than 0.")
		}
		return fmt.Sprintf("Random number between 1 and %d: %d", *randomNum, 1+roll(*randomNum)), nil
	}
	if roll(2) == 0 {
		return "Coin flip: Heads", nil
	}
	return "Coin flip: Tails", nil
}

func (b *Bot) handleFlipCoin(ctx context.Context, i *discordgo.InteractionCreate, opts optionMap) (*reply, error) {
	var randomNum *int64
	if opt, ok := opts["random-num"]; ok {
		n := opt.IntValue()
		randomNum = &n
	}
	msg, err := flipCoinMessage(randomNum, rand.Int63n)
	if err != nil {
		return nil, err
	}
	return &reply{content: msg}, nil
}

func (b *Bot) handleRenameTeam(ctx context.Context, i *discordgo.InteractionCreate, opts optionMap) (*reply, error) {
	sid, err := sessionID(i)
	if err != nil {
		return nil, err
	}
	actor, err := actorMember(i)
	if err != nil {
		return nil, err
	}
	team, err := b.signups.RenameTeam(ctx, sid, actor, opts.str("new-team-name"))
	if err != nil {
		return nil, err
	}
	return &reply{content: fmt.Sprintf("Team name changed to %s", team.Name)}, nil
}

func (b *Bot) handleSetIGN(ctx context.Context, i *discordgo.InteractionCreate, opts optionMap) (*reply, error) {
	actor, err := actorMember(i)
	if err != nil {
		return nil, err
	}
	return b.setIGN(ctx, actor, opts.str("ign"))
}

func (b *Bot) setIGN(ctx context.Context, member services.Member, ign string) (*reply, error) {
	result, err := b.players.SetIGN(ctx, member, ign)
	if err != nil {
		return nil, err
	}
	msg := fmt.Sprintf("IGN for %s set to %q", member.Name, result.Profile.IGN)
	if result.Rating != nil {
		msg += fmt.Sprintf(" with GO Rating %.0f", *result.Rating)
	}
	msg += fmt.Sprintf("\n* Account created on %s", result.Profile.AccountCreated.Format("2006-01-02"))
	if len(result.Profile.CareerStats) > 0 {
		stats := result.Profile.CareerStats[0]
		msg += fmt.Sprintf("\n* Career Stats: games=%d, win rate=%.0f%%, kpg=%.1f",
			stats.Games, stats.WinRate()*100, stats.KillsPerGame())
	}
	return &reply{content: msg}, nil
}

func (b *Bot) handlePlayerInfo(ctx context.Context, i *discordgo.InteractionCreate, opts optionMap) (*reply, error) {
	var member services.Member
	var err error
	if opt, ok := opts["user"]; ok {
		member, err = userMember(i, opt)
	} else {
		member, err = actorMember(i)
	}
	if err != nil {
		return nil, err
	}
	info, err := b.players.PlayerInfo(ctx, member)
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "- IGN: %s\n", escapeMarkdown(info.Profile.IGN))
	fmt.Fprintf(&sb, "- GO Rating: %.0f\n", info.Rating)
	fmt.Fprintf(&sb, "- Playfab ID: %s\n", league.AsPlayfabID(info.Profile.ID))
	if len(info.Teams) > 0 {
		sb.WriteString("- Teams:\n")
		for _, t := range info.Teams {
			fmt.Fprintf(&sb, "  - %s *(%s)* -- %d signups\n",
				escapeMarkdown(t.Team.Name), ratingStr(t.Team.Rating), t.SignupCount)
		}
	}
	if len(info.Signups) > 0 {
		sb.WriteString("- Sessions:\n")
		for _, su := range info.Signups {
			fmt.Fprintf(&sb, "  - %s -- %s\n",
				services.FormatSessionTime(su.SessionTime), escapeMarkdown(su.TeamName))
		}
	}
	return &reply{content: sb.String(), ephemeral: true}, nil
}

func (b *Bot) handleListTeams(ctx context.Context, i *discordgo.InteractionCreate, opts optionMap) (*reply, error) {
	sid, err := sessionID(i)
	if err != nil {
		return nil, err
	}
	result, err := b.sessions.ListTeams(ctx, sid)
	if err != nil {
		return nil, err
	}

	playerCount := 0
	var lines strings.Builder
	for idx, team := range result.Teams {
		playerCount += len(team.PlayerIDs)
		lines.WriteString(teamLine(idx, team))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "**teams:** %d\n", len(result.Teams))
	fmt.Fprintf(&sb, "**players:** %d\n", playerCount)
	fmt.Fprintf(&sb, "**hosts:** %s\n\n", mentionList(result.HostIDs))
	sb.WriteString(lines.String())
	return &reply{content: sb.String()}, nil
}

func (b *Bot) handleListSchedule(ctx context.Context, i *discordgo.InteractionCreate, opts optionMap) (*reply, error) {
	entries, err := b.sessions.ListSchedule(ctx)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return &reply{content: "No sessions found."}, nil
	}
	var sb strings.Builder
	for _, entry := range entries {
		stateStr := ""
		if entry.Session.SignupState != models.SignupsClosed {
			stateStr = fmt.Sprintf(" (signups *%s*)", entry.Session.SignupState)
		}
		fmt.Fprintf(&sb, "<#%d> -- %d teams  %d players%s\n",
			entry.Session.ID, entry.TeamCount, entry.PlayerCount, stateStr)
	}
	return &reply{content: sb.String()}, nil
}

// sessionTimeLayouts are tried in order when parsing /goadmin
// set-session-time input.
var sessionTimeLayouts = []string{
	"2006-01-02 15:04",
	"2006-01-02 3:04 PM",
	"1/2/2006 15:04",
	"1/2/2006 3:04 PM",
	"Jan 2 2006 3:04 PM",
	"January 2 2006 3:04 PM",
	"2006-01-02T15:04",
}

func parseSessionTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range sessionTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, services.Userf("Error: Could not parse date string '%s'", s)
}

func (b *Bot) handleSetSessionTime(ctx context.Context, i *discordgo.InteractionCreate, opts optionMap) (*reply, error) {
	sid, err := sessionID(i)
	if err != nil {
		return nil, err
	}
	when, err := parseSessionTime(opts.str("date-time"))
	if err != nil {
		return nil, err
	}
	if err := b.sessions.SetSessionTime(ctx, sid, when); err != nil {
		return nil, err
	}
	msg := fmt.Sprintf("Session date for <#%d> set to %s", sid, services.FormatSessionTime(when))
	return &reply{content: msg}, nil
}

func (b *Bot) handleGetSessionTime(ctx context.Context, i *discordgo.InteractionCreate, opts optionMap) (*reply, error) {
	sid, err := sessionID(i)
	if err != nil {
		return nil, err
	}
	session, err := b.sessions.GetSession(ctx, sid)
	if err != nil {
		return nil, err
	}
	msg := fmt.Sprintf("Session time for <#%d> is %s.", sid, services.FormatSessionTime(session.SessionTime))
	msg += fmt.Sprintf("\nSignups are %s.", session.SignupState)
	return &reply{content: msg}, nil
}

// handleSetState builds the handler for one of the set-session-* commands.
func (b *Bot) handleSetState(state models.SignupState) commandHandler {
	return func(ctx context.Context, i *discordgo.InteractionCreate, opts optionMap) (*reply, error) {
		sid, err := sessionID(i)
		if err != nil {
			return nil, err
		}
		if err := b.sessions.SetState(ctx, sid, state); err != nil {
			return nil, err
		}
		return &reply{content: fmt.Sprintf("Session signups set to %s for <#%d>", state, sid)}, nil
	}
}

func (b *Bot) handleSetHost(ctx context.Context, i *discordgo.InteractionCreate, opts optionMap) (*reply, error) {
	sid, err := sessionID(i)
	if err != nil {
		return nil, err
	}
	member, err := userMember(i, opts["player"])
	if err != nil {
		return nil, err
	}
	if err := b.sessions.SetHost(ctx, sid, member); err != nil {
		return nil, err
	}
	return &reply{content: fmt.Sprintf("<@%d> set as host for <#%d>.", member.ID, sid)}, nil
}

func (b *Bot) handleRemoveHost(ctx context.Context, i *discordgo.InteractionCreate, opts optionMap) (*reply, error) {
	sid, err := sessionID(i)
	if err != nil {
		return nil, err
	}
	member, err := userMember(i, opts["player"])
	if err != nil {
		return nil, err
	}
	if err := b.sessions.RemoveHost(ctx, sid, member); err != nil {
		return nil, err
	}
	return &reply{content: fmt.Sprintf("<@%d> removed as host for <#%d>.", member.ID, sid)}, nil
}

func (b *Bot) handleAdminSetIGN(ctx context.Context, i *discordgo.InteractionCreate, opts optionMap) (*reply, error) {
	member, err := userMember(i, opts["user"])
	if err != nil {
		return nil, err
	}
	return b.setIGN(ctx, member, opts.str("ign"))
}

func (b *Bot) handleAdminCancel(ctx context.Context, i *discordgo.InteractionCreate, opts optionMap) (*reply, error) {
	sid, err := sessionID(i)
	if err != nil {
		return nil, err
	}
	member, err := userMember(i, opts["player"])
	if err != nil {
		return nil, err
	}
	result, err := b.signups.Cancel(ctx, sid, member, true)
	if err != nil {
		return nil, err
	}
	return &reply{content: cancelMessage(result), notices: result.Notices}, nil
}

func (b *Bot) handleSortLobbies(ctx context.Context, i *discordgo.InteractionCreate, opts optionMap) (*reply, error) {
	sid, err := sessionID(i)
	if err != nil {
		return nil, err
	}
	result, err := b.lobbies.SortSession(ctx, sid)
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	for idx, lobby := range result.Lobbies {
		fmt.Fprintf(&sb, "## Lobby %d hosted by <@%d>\n", idx+1, lobby.HostID)
		fmt.Fprintf(&sb, "%d teams, %d players\n", len(lobby.Teams), lobby.PlayerCount)
		for j, team := range lobby.Teams {
			sb.WriteString(teamLine(j, team))
		}
	}
	if len(result.Waitlist) > 0 {
		sb.WriteString("## Waitlist:\n")
		for j, team := range result.Waitlist {
			sb.WriteString(teamLine(j, team))
		}
	}
	return &reply{content: sb.String(), ephemeral: true}, nil
}
