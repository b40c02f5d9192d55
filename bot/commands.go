package bot

import "github.com/bwmarrin/discordgo"

const (
	commandGroupName = "go"
	adminGroupName   = "goadmin"
)

func playerOption(name string, required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionUser,
		Name:        name,
		Description: "Player on the team",
		Required:    required,
	}
}

var slashCommands = []*discordgo.ApplicationCommand{
	{
		Name:        commandGroupName,
		Description: "GO League commands",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "signup",
				Description: "Sign up a team for this session",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "team-name",
						Description: "Name for the team",
						Required:    true,
					},
					playerOption("player1", true),
					playerOption("player2", false),
					playerOption("player3", false),
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "change-signup",
				Description: "Change the players in your signup and keep your spot in line",
				Options: []*discordgo.ApplicationCommandOption{
					playerOption("player1", true),
					playerOption("player2", false),
					playerOption("player3", false),
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "new-team-name",
						Description: "Name for the new team",
						Required:    false,
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "cancel",
				Description: "Cancel your signup for this session",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "sub",
				Description: "GO League doesn't have subs. Use /go change-signup",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "rename-team",
				Description: "Rename your team in this session",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "new-team-name",
						Description: "New name for the team",
						Required:    true,
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "set-ign",
				Description: "Set your In Game Name",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "ign",
						Description: "Your in-game name or playfab ID",
						Required:    true,
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "flip-coin",
				Description: "Flip a coin, or roll a random number between 1 and random-num",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionInteger,
						Name:        "random-num",
						Description: "Roll a number between 1 and this instead of flipping",
						Required:    false,
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "player-info",
				Description: "Get info for a player",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionUser,
						Name:        "user",
						Description: "Player to look up (defaults to you)",
						Required:    false,
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "list-teams",
				Description: "List the teams signed up this session",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "list-schedule",
				Description: "List the schedule",
			},
		},
	},
	{
		Name:        adminGroupName,
		Description: "GO League admin commands",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "set-session-time",
				Description: "Set the session date & time for this channel",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "date-time",
						Description: "Session date and time, e.g. 2026-09-07 20:00",
						Required:    true,
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "get-session-time",
				Description: "Get the session date for this channel",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "set-session-open",
				Description: "Set the signup state to open",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "set-session-closed",
				Description: "Set the signup state to closed",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "set-session-frozen",
				Description: "Set the signup state to change-only",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "set-host",
				Description: "Add a host to this session",
				Options:     []*discordgo.ApplicationCommandOption{playerOption("player", true)},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "remove-host",
				Description: "Remove a host from this session",
				Options:     []*discordgo.ApplicationCommandOption{playerOption("player", true)},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "set-ign",
				Description: "Admin tool to set a user's In Game Name",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionUser,
						Name:        "user",
						Description: "User to link",
						Required:    true,
					},
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "ign",
						Description: "In-game name or playfab ID",
						Required:    true,
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "cancel",
				Description: "Admin tool to cancel a signup",
				Options:     []*discordgo.ApplicationCommandOption{playerOption("player", true)},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "sort-lobbies",
				Description: "Sort the session's teams into hosted lobbies",
			},
		},
	},
}
