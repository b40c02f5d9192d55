package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/stooobe/go-league/config"
	"github.com/stooobe/go-league/models"
	"github.com/stooobe/go-league/services"
)

// commandTimeout bounds one slash-command handler, transaction included.
const commandTimeout = 30 * time.Second

type commandHandler func(ctx context.Context, i *discordgo.InteractionCreate, opts optionMap) (*reply, error)

// reply is what a handler wants sent back: the interaction response plus
// any direct messages queued by the services. Notices are flushed only
// after the handler (and its transaction) succeeded.
type reply struct {
	content   string
	ephemeral bool
	notices   []services.Notice
}

// Bot owns the Discord session and routes slash commands to the services.
type Bot struct {
	session *discordgo.Session
	cfg     *config.Config
	logger  *slog.Logger

	players  *services.PlayerService
	signups  *services.SignupService
	lobbies  *services.LobbyService
	sessions *services.SessionService

	handlers      map[string]commandHandler
	adminHandlers map[string]commandHandler

	// dmsEnabled gates notice delivery, off in tests.
	dmsEnabled bool
}

func New(
	cfg *config.Config,
	players *services.PlayerService,
	signups *services.SignupService,
	lobbies *services.LobbyService,
	sessions *services.SessionService,
	logger *slog.Logger,
) (*Bot, error) {
	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsDirectMessages

	b := &Bot{
		session:    session,
		cfg:        cfg,
		logger:     logger,
		players:    players,
		signups:    signups,
		lobbies:    lobbies,
		sessions:   sessions,
		dmsEnabled: true,
	}
	b.handlers = map[string]commandHandler{
		"signup":        b.handleSignup,
		"change-signup": b.handleChangeSignup,
		"cancel":        b.handleCancel,
		"sub":           b.handleSub,
		"flip-coin":     b.handleFlipCoin,
		"rename-team":   b.handleRenameTeam,
		"set-ign":       b.handleSetIGN,
		"player-info":   b.handlePlayerInfo,
		"list-teams":    b.handleListTeams,
		"list-schedule": b.handleListSchedule,
	}
	b.adminHandlers = map[string]commandHandler{
		"set-session-time":   b.handleSetSessionTime,
		"get-session-time":   b.handleGetSessionTime,
		"set-session-open":   b.handleSetState(models.SignupsOpen),
		"set-session-closed": b.handleSetState(models.SignupsClosed),
		"set-session-frozen": b.handleSetState(models.SignupsChangeOnly),
		"set-host":           b.handleSetHost,
		"remove-host":        b.handleRemoveHost,
		"set-ign":            b.handleAdminSetIGN,
		"cancel":             b.handleAdminCancel,
		"sort-lobbies":       b.handleSortLobbies,
	}

	session.AddHandler(b.onReady)
	session.AddHandler(b.onInteraction)
	return b, nil
}

// Start opens the gateway connection and registers the slash commands.
func (b *Bot) Start() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open discord session: %w", err)
	}
	_, err := b.session.ApplicationCommandBulkOverwrite(
		b.session.State.User.ID, b.cfg.DiscordGuildID, slashCommands)
	if err != nil {
		return fmt.Errorf("failed to register slash commands: %w", err)
	}
	return nil
}

func (b *Bot) Stop() error {
	return b.session.Close()
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	b.logger.Info("discord session ready",
		slog.String("username", r.User.Username),
		slog.Int("guilds", len(r.Guilds)))
}

// deferredCommands are acknowledged immediately and answered with a
// followup message: their handlers read the whole session and may run
// past Discord's initial response window.
var deferredCommands = map[string]struct{ ephemeral bool }{
	commandGroupName + " list-teams": {},
	adminGroupName + " sort-lobbies": {ephemeral: true},
}

func (b *Bot) onInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	data := i.ApplicationCommandData()
	if len(data.Options) == 0 || data.Options[0].Type != discordgo.ApplicationCommandOptionSubCommand {
		return
	}
	sub := data.Options[0]
	name := data.Name + " " + sub.Name

	var handler commandHandler
	switch data.Name {
	case commandGroupName:
		handler = b.handlers[sub.Name]
	case adminGroupName:
		handler = b.adminHandlers[sub.Name]
	}
	if handler == nil {
		return
	}

	b.logger.Info("command received",
		slog.String("command", name),
		slog.String("user", interactionUser(i).Username))

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	if data.Name == adminGroupName {
		if err := b.requireOwner(i); err != nil {
			b.respond(i, &reply{content: err.Error(), ephemeral: true}, false)
			return
		}
	}

	mode, deferred := deferredCommands[name]
	if deferred {
		if err := b.acknowledge(i, mode.ephemeral); err != nil {
			b.logger.Error("failed to defer interaction",
				slog.String("command", name), slog.Any("error", err))
			return
		}
	}

	rep, err := handler(ctx, i, newOptionMap(sub.Options))
	if err != nil {
		if ue, ok := services.AsUserError(err); ok {
			b.respond(i, &reply{content: ue.Message, ephemeral: mode.ephemeral}, deferred)
			return
		}
		b.logger.Error("command failed",
			slog.String("command", name),
			slog.Any("error", err))
		b.respond(i, &reply{content: "Something went wrong running that command.", ephemeral: mode.ephemeral}, deferred)
		return
	}
	b.respond(i, rep, deferred)
	b.sendNotices(rep.notices)
}

// acknowledge sends the deferred "thinking" response so the followup can
// arrive later than Discord's response window.
func (b *Bot) acknowledge(i *discordgo.InteractionCreate, ephemeral bool) error {
	data := &discordgo.InteractionResponseData{}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	return b.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: data,
	})
}

func (b *Bot) respond(i *discordgo.InteractionCreate, rep *reply, deferred bool) {
	if deferred {
		params := &discordgo.WebhookParams{Content: rep.content}
		if rep.ephemeral {
			params.Flags = discordgo.MessageFlagsEphemeral
		}
		if _, err := b.session.FollowupMessageCreate(i.Interaction, true, params); err != nil {
			b.logger.Error("failed to send followup message", slog.Any("error", err))
		}
		return
	}
	data := &discordgo.InteractionResponseData{Content: rep.content}
	if rep.ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	err := b.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
	if err != nil {
		b.logger.Error("failed to respond to interaction", slog.Any("error", err))
	}
}

// sendNotices delivers queued DMs. Delivery failures are logged and
// skipped; the command already committed.
func (b *Bot) sendNotices(notices []services.Notice) {
	if !b.dmsEnabled {
		return
	}
	for _, notice := range notices {
		channel, err := b.session.UserChannelCreate(strconv.FormatInt(notice.DiscordID, 10))
		if err != nil {
			b.logger.Warn("failed to open DM channel",
				slog.Int64("discord_id", notice.DiscordID),
				slog.Any("error", err))
			continue
		}
		if _, err := b.session.ChannelMessageSend(channel.ID, notice.Message); err != nil {
			b.logger.Warn("failed to send DM",
				slog.Int64("discord_id", notice.DiscordID),
				slog.Any("error", err))
		}
	}
}

func (b *Bot) requireOwner(i *discordgo.InteractionCreate) error {
	user := interactionUser(i)
	id, err := strconv.ParseInt(user.ID, 10, 64)
	if err != nil || id != b.cfg.OwnerID {
		b.logger.Warn("non-owner tried to run an admin command",
			slog.String("user", user.Username))
		return fmt.Errorf("You don't have permission to use this command.")
	}
	return nil
}
