// Package telegram connects the mimic core to Telegram group chats over long polling.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/keshon/server-mimic/internal/logging"
	"github.com/keshon/server-mimic/internal/mind"
	"github.com/keshon/server-mimic/internal/transport"
	"github.com/keshon/server-mimic/pkg/cmd"
	"github.com/rs/zerolog"
)

// commandAliases maps Telegram command names (no dashes allowed) onto registry names.
var commandAliases = map[string]string{
	"mimic_blacklist": "blacklist-add",
	"mimic_stats":     "stats",
}

// Bot is a Telegram transport. A group or supergroup chat is a group; its chat id is the
// group id. Private chats are ignored.
type Bot struct {
	token       string
	developerID string
	commands    *cmd.Registry
	log         zerolog.Logger

	mu  sync.RWMutex
	api *tgbotapi.BotAPI
}

var _ transport.Bot = (*Bot)(nil)

// NewBot creates a Telegram bot. Nothing connects until Run.
func NewBot(token, developerID string, commands *cmd.Registry) *Bot {
	return &Bot{
		token:       token,
		developerID: developerID,
		commands:    commands,
		log:         logging.For("telegram"),
	}
}

// Run polls for updates and forwards group messages to in until ctx is done.
func (b *Bot) Run(ctx context.Context, in transport.Ingester) error {
	api, err := tgbotapi.NewBotAPI(b.token)
	if err != nil {
		return fmt.Errorf("failed to create telegram client: %w", err)
	}

	b.mu.Lock()
	b.api = api
	b.mu.Unlock()
	defer func() {
		b.mu.Lock()
		b.api = nil
		b.mu.Unlock()
	}()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := api.GetUpdatesChan(u)
	b.log.Info().Str("user", api.Self.UserName).Msg("telegram bot is running")

	for {
		select {
		case <-ctx.Done():
			api.StopReceivingUpdates()
			b.log.Info().Msg("shutdown signal received, stopped polling")
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message != nil {
				b.handleMessage(ctx, api, update.Message, in)
			}
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, api *tgbotapi.BotAPI, m *tgbotapi.Message, in transport.Ingester) {
	if m.Chat == nil || !(m.Chat.IsGroup() || m.Chat.IsSuperGroup()) {
		return
	}
	if m.IsCommand() {
		b.handleCommand(ctx, api, m)
		return
	}

	msg, ok := toMessage(m)
	if !ok {
		return
	}
	outcome := in.Ingest(ctx, msg)
	b.log.Debug().Int64("group", msg.GroupID).Stringer("outcome", outcome).Msg("message ingested")
}

// toMessage converts a Telegram message into a core message. Service messages without a
// sender are dropped.
func toMessage(m *tgbotapi.Message) (mind.Message, bool) {
	if m.From == nil || m.Chat == nil {
		return mind.Message{}, false
	}
	return mind.Message{
		GroupID:  m.Chat.ID,
		SenderID: m.From.ID,
		Text:     m.Text,
		FromBot:  m.From.IsBot,
	}, true
}

func (b *Bot) handleCommand(ctx context.Context, api *tgbotapi.BotAPI, m *tgbotapi.Message) {
	name, ok := commandAliases[m.Command()]
	if !ok {
		return
	}
	c := b.commands.Get(name)
	if c == nil {
		return
	}

	reply := func(text string) error {
		out := tgbotapi.NewMessage(m.Chat.ID, text)
		out.ReplyToMessageID = m.MessageID
		_, err := api.Send(out)
		return err
	}

	inv := &cmd.Invocation{
		GroupID: m.Chat.ID,
		Data:    m,
		Reply:   reply,
	}
	if args := strings.TrimSpace(m.CommandArguments()); args != "" {
		inv.Args = []string{args}
	}
	if m.From != nil {
		inv.UserID = strconv.FormatInt(m.From.ID, 10)
		inv.Admin = b.isAdmin(api, m.Chat.ID, m.From.ID)
	}

	if err := c.Run(ctx, inv); err != nil {
		_ = reply(fmt.Sprintf("Error: %v", err))
	}
}

// isAdmin reports whether userID administers chatID, or is the configured developer.
func (b *Bot) isAdmin(api *tgbotapi.BotAPI, chatID, userID int64) bool {
	if b.developerID != "" && strconv.FormatInt(userID, 10) == b.developerID {
		return true
	}
	member, err := api.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{ChatID: chatID, UserID: userID},
	})
	if err != nil {
		b.log.Warn().Err(err).Int64("group", chatID).Msg("failed to fetch chat member")
		return false
	}
	return member.IsAdministrator() || member.IsCreator()
}

// Send posts text to the chat identified by groupID.
func (b *Bot) Send(ctx context.Context, groupID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.RLock()
	api := b.api
	b.mu.RUnlock()
	if api == nil {
		return errors.New("telegram client is not running")
	}
	_, err := api.Send(tgbotapi.NewMessage(groupID, text))
	return err
}

// IsRateLimited reports whether err is a Telegram 429.
func (b *Bot) IsRateLimited(err error) bool {
	var tgErr *tgbotapi.Error
	return errors.As(err, &tgErr) && tgErr.Code == 429
}
