package bot

import (
	"fmt"
	"strconv"

	"github.com/bwmarrin/discordgo"

	"github.com/stooobe/go-league/config"
	"github.com/stooobe/go-league/services"
)

type optionMap map[string]*discordgo.ApplicationCommandInteractionDataOption

func newOptionMap(opts []*discordgo.ApplicationCommandInteractionDataOption) optionMap {
	m := make(optionMap, len(opts))
	for _, opt := range opts {
		m[opt.Name] = opt
	}
	return m
}

// str returns the named string option, or "" when it was not supplied.
func (m optionMap) str(name string) string {
	opt, ok := m[name]
	if !ok {
		return ""
	}
	return opt.StringValue()
}

// interactionUser returns the invoking user, which discordgo places on
// Member for guild interactions and on User for DMs.
func interactionUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Member != nil {
		return i.Member.User
	}
	return i.User
}

func parseSnowflake(id string) (int64, error) {
	v, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse snowflake %q: %w", id, err)
	}
	return v, nil
}

// sessionID maps the interaction's channel to its session: each league
// session lives in its own Discord channel.
func sessionID(i *discordgo.InteractionCreate) (int64, error) {
	return parseSnowflake(i.ChannelID)
}

func actorMember(i *discordgo.InteractionCreate) (services.Member, error) {
	user := interactionUser(i)
	id, err := parseSnowflake(user.ID)
	if err != nil {
		return services.Member{}, err
	}
	return services.Member{ID: id, Name: user.Username}, nil
}

// userMember resolves a user-typed option to a Member. Resolved users
// carry the username; fall back to the raw ID when the payload omits it.
func userMember(i *discordgo.InteractionCreate, opt *discordgo.ApplicationCommandInteractionDataOption) (services.Member, error) {
	if opt == nil {
		return services.Member{}, fmt.Errorf("missing user option")
	}
	user := opt.UserValue(nil)
	id, err := parseSnowflake(user.ID)
	if err != nil {
		return services.Member{}, err
	}
	name := user.Username
	if resolved := i.ApplicationCommandData().Resolved; resolved != nil {
		if ru, ok := resolved.Users[user.ID]; ok {
			name = ru.Username
		}
	}
	return services.Member{ID: id, Name: name}, nil
}

// rosterMembers collects the player1..playerN options in order, stopping
// at the first one missing. Gaps are left for the service to reject.
func rosterMembers(i *discordgo.InteractionCreate, opts optionMap) ([]*services.Member, error) {
	players := make([]*services.Member, 0, config.MaxTeamSize)
	for slot := 1; slot <= config.MaxTeamSize; slot++ {
		opt, ok := opts[fmt.Sprintf("player%d", slot)]
		if !ok {
			players = append(players, nil)
			continue
		}
		member, err := userMember(i, opt)
		if err != nil {
			return nil, err
		}
		players = append(players, &member)
	}
	// Trim the trailing nils so a plain trio comes through as 3 entries.
	for len(players) > 0 && players[len(players)-1] == nil {
		players = players[:len(players)-1]
	}
	return players, nil
}
