package discord

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/server-mimic/internal/logging"
	"github.com/keshon/server-mimic/internal/mind"
	"github.com/keshon/server-mimic/internal/transport"
	"github.com/keshon/server-mimic/pkg/cmd"
	"github.com/rs/zerolog"
)

// Bot connects the mimic core to Discord. A text channel is a group: its snowflake id,
// parsed as an integer, is the group id.
type Bot struct {
	token       string
	developerID string
	commands    *cmd.Registry
	log         zerolog.Logger

	mu sync.RWMutex
	dg *discordgo.Session
}

var _ transport.Bot = (*Bot)(nil)

// NewBot creates a Discord bot. Nothing connects until Run.
func NewBot(token, developerID string, commands *cmd.Registry) *Bot {
	return &Bot{
		token:       token,
		developerID: developerID,
		commands:    commands,
		log:         logging.For("discord"),
	}
}

// Run opens the gateway session, forwards channel messages to in and blocks until ctx
// is done.
func (b *Bot) Run(ctx context.Context, in transport.Ingester) error {
	dg, err := discordgo.New("Bot " + b.token)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages | discordgo.IntentMessageContent

	dg.AddHandler(b.onReady)
	dg.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		b.onMessageCreate(ctx, s, m, in)
	})
	dg.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		b.onInteractionCreate(ctx, s, i)
	})

	if err := dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	defer dg.Close()

	b.mu.Lock()
	b.dg = dg
	b.mu.Unlock()

	<-ctx.Done()
	b.log.Info().Msg("shutdown signal received, closing session")

	b.mu.Lock()
	b.dg = nil
	b.mu.Unlock()
	return nil
}

// Send posts text to the channel identified by groupID.
func (b *Bot) Send(ctx context.Context, groupID int64, text string) error {
	b.mu.RLock()
	dg := b.dg
	b.mu.RUnlock()
	if dg == nil {
		return errors.New("discord session is not open")
	}

	// Remembered text may contain @everyone or role mentions; repeat it without pinging.
	_, err := dg.ChannelMessageSendComplex(strconv.FormatInt(groupID, 10), &discordgo.MessageSend{
		Content:         text,
		AllowedMentions: &discordgo.MessageAllowedMentions{},
	}, discordgo.WithContext(ctx))
	return err
}

// IsRateLimited reports whether err is a Discord 429.
func (b *Bot) IsRateLimited(err error) bool {
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Response != nil {
		return restErr.Response.StatusCode == http.StatusTooManyRequests
	}
	return false
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	if err := b.registerCommands(s); err != nil {
		b.log.Error().Err(err).Msg("failed to register slash commands")
	}
	b.log.Info().Str("user", r.User.Username).Int("guilds", len(r.Guilds)).Msg("discord bot is running")
}

func (b *Bot) onMessageCreate(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, in transport.Ingester) {
	if m.Author == nil || m.GuildID == "" {
		return
	}
	if s.State != nil && s.State.User != nil && m.Author.ID == s.State.User.ID {
		return
	}

	msg, ok := toMessage(m.Message)
	if !ok {
		return
	}
	outcome := in.Ingest(ctx, msg)
	b.log.Debug().Int64("group", msg.GroupID).Stringer("outcome", outcome).Msg("message ingested")
}

// toMessage converts a Discord message into a core message. Snowflakes that do not parse
// are dropped.
func toMessage(m *discordgo.Message) (mind.Message, bool) {
	groupID, err := strconv.ParseInt(m.ChannelID, 10, 64)
	if err != nil {
		return mind.Message{}, false
	}
	senderID, _ := strconv.ParseInt(m.Author.ID, 10, 64)
	return mind.Message{
		GroupID:  groupID,
		SenderID: senderID,
		Text:     m.Content,
		FromBot:  m.Author.Bot,
	}, true
}
