package discord

import (
	"context"
	"fmt"
	"strconv"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/server-mimic/pkg/cmd"
)

const slashRoot = "mimic"

// slashDefinition exposes every registered command as a subcommand of /mimic. Commands
// with a Usage take one free-text argument.
func (b *Bot) slashDefinition() *discordgo.ApplicationCommand {
	adminOnly := int64(discordgo.PermissionAdministrator)
	def := &discordgo.ApplicationCommand{
		Name:                     slashRoot,
		Description:              "Humanlike auto-reply settings",
		DefaultMemberPermissions: &adminOnly,
	}
	for _, c := range b.commands.GetAll() {
		sub := &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        c.Name(),
			Description: c.Description(),
		}
		if _, ok := cmd.Root(c).(cmd.Usage); ok {
			sub.Options = []*discordgo.ApplicationCommandOption{{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "value",
				Description: "Argument",
				Required:    true,
			}}
		}
		def.Options = append(def.Options, sub)
	}
	return def
}

// registerCommands overwrites the bot's global application commands with /mimic, unless
// the same definition was already registered.
func (b *Bot) registerCommands(s *discordgo.Session) error {
	if s.State == nil || s.State.User == nil {
		return fmt.Errorf("session state has no user")
	}
	appID := s.State.User.ID
	def := b.slashDefinition()
	hash := hashCommand(def)
	if hash == loadCommandHash(appID) {
		b.log.Debug().Msg("slash commands unchanged, skipping registration")
		return nil
	}

	if _, err := s.ApplicationCommandBulkOverwrite(appID, "", []*discordgo.ApplicationCommand{def}); err != nil {
		return err
	}
	if err := saveCommandHash(appID, hash); err != nil {
		b.log.Warn().Err(err).Msg("failed to cache command hash")
	}
	b.log.Info().Int("subcommands", len(def.Options)).Msg("slash commands registered")
	return nil
}

func (b *Bot) onInteractionCreate(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	data := i.ApplicationCommandData()
	if data.Name != slashRoot || len(data.Options) == 0 {
		return
	}

	sub := data.Options[0]
	c := b.commands.Get(sub.Name)
	if c == nil {
		b.log.Warn().Str("command", sub.Name).Msg("unknown command")
		_ = respondEphemeral(s, i, "Unknown command.")
		return
	}

	inv := &cmd.Invocation{
		Admin: b.isAdmin(i),
		Data:  i,
		Reply: func(text string) error { return respondEphemeral(s, i, text) },
	}
	for _, opt := range sub.Options {
		if opt.Type == discordgo.ApplicationCommandOptionString {
			inv.Args = append(inv.Args, opt.StringValue())
		}
	}
	if id, err := strconv.ParseInt(i.ChannelID, 10, 64); err == nil {
		inv.GroupID = id
	}
	if u := interactionUser(i); u != nil {
		inv.UserID = u.ID
	}

	if err := c.Run(ctx, inv); err != nil {
		_ = respondEphemeral(s, i, fmt.Sprintf("Error: %v", err))
	}
}

// isAdmin reports whether the caller holds Administrator in the channel, or is the
// configured developer.
func (b *Bot) isAdmin(i *discordgo.InteractionCreate) bool {
	if u := interactionUser(i); u != nil && b.developerID != "" && u.ID == b.developerID {
		return true
	}
	return i.Member != nil && i.Member.Permissions&discordgo.PermissionAdministrator != 0
}

func interactionUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}

// respondEphemeral answers only the caller. Mentions in echoed text never ping anyone.
func respondEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, content string) error {
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content:         content,
			Flags:           discordgo.MessageFlagsEphemeral,
			AllowedMentions: &discordgo.MessageAllowedMentions{},
		},
	})
}
