package discord

import (
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/google/logger"

	"github.com/KirkDiggler/secretsanta/internal/services/draw"
	"github.com/KirkDiggler/secretsanta/internal/services/messaging"
)

// Bot represents the Discord bot instance
type Bot struct {
	session    *discordgo.Session
	respond    Responder
	commands   map[string]CommandHandler
	commandIDs map[string]string // Maps command name to command ID
	config     *Config
}

// Config holds the configuration for the bot
type Config struct {
	// Discord bot token
	Token string

	// Application ID for the bot
	ApplicationID string

	// Optional guild ID for development (server-specific commands)
	GuildID string

	DrawService      draw.Service
	MessagingService messaging.Service
}

// New creates a new Discord bot
func New(cfg *Config) (*Bot, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.Token == "" {
		return nil, errors.New("token cannot be empty")
	}

	if cfg.DrawService == nil {
		return nil, errors.New("draw service cannot be nil")
	}

	if cfg.MessagingService == nil {
		return nil, errors.New("messaging service cannot be nil")
	}

	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}

	bot := &Bot{
		session:    session,
		commands:   make(map[string]CommandHandler),
		commandIDs: make(map[string]string),
		config:     cfg,
	}
	bot.respond = &sessionResponder{session: session}

	bot.commands["santa"] = NewSantaCommand(cfg.DrawService, cfg.MessagingService)

	session.AddHandler(func(_ *discordgo.Session, i *discordgo.InteractionCreate) {
		bot.handleInteraction(i)
	})

	return bot, nil
}

// Start opens the gateway connection and registers commands
func (b *Bot) Start() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open Discord connection: %w", err)
	}

	for _, cmd := range b.commands {
		if err := b.registerCommand(cmd); err != nil {
			return err
		}
	}

	logger.Infof("Discord bot is running")
	return nil
}

// Stop removes registered commands and closes the connection
func (b *Bot) Stop() error {
	appID := b.appID()
	for cmdName, cmdID := range b.commandIDs {
		if err := b.session.ApplicationCommandDelete(appID, b.config.GuildID, cmdID); err != nil {
			logger.Warningf("Failed to delete command %s (ID: %s): %v", cmdName, cmdID, err)
		}
	}

	return b.session.Close()
}

func (b *Bot) appID() string {
	if b.config.ApplicationID != "" {
		return b.config.ApplicationID
	}
	// Fall back to session user ID if application ID is not provided
	return b.session.State.User.ID
}

// registerCommand registers a command with Discord, per guild when one is configured
func (b *Bot) registerCommand(cmd CommandHandler) error {
	if b.config.GuildID != "" {
		logger.Infof("Registering command %s for guild %s", cmd.GetName(), b.config.GuildID)
	} else {
		logger.Infof("Registering command %s globally", cmd.GetName())
	}

	createdCmd, err := b.session.ApplicationCommandCreate(b.appID(), b.config.GuildID, cmd.GetCommand())
	if err != nil {
		return fmt.Errorf("failed to create command %s: %w", cmd.GetName(), err)
	}

	b.commandIDs[cmd.GetName()] = createdCmd.ID
	return nil
}

// handleInteraction routes slash commands and component interactions
func (b *Bot) handleInteraction(i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		name := i.ApplicationCommandData().Name
		if h, ok := b.commands[name]; ok {
			if err := h.Handle(b.respond, i); err != nil {
				logger.Errorf("Error handling command %s: %v", name, err)
			}
		}
	case discordgo.InteractionMessageComponent:
		customID := i.MessageComponentData().CustomID
		for _, cmd := range b.commands {
			h, ok := cmd.(ComponentHandler)
			if !ok || !h.HandlesComponent(customID) {
				continue
			}
			if err := h.HandleComponent(b.respond, i); err != nil {
				logger.Errorf("Error handling component %s: %v", customID, err)
			}
			return
		}
		if err := RespondWithError(b.respond, i, fmt.Sprintf("Unknown component: %s", customID)); err != nil {
			logger.Errorf("Error answering unknown component %s: %v", customID, err)
		}
	}
}

// sessionResponder answers interactions over the bot's session
type sessionResponder struct {
	session *discordgo.Session
}

func (r *sessionResponder) Respond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse) error {
	return r.session.InteractionRespond(interaction, resp)
}

func (r *sessionResponder) Edit(interaction *discordgo.Interaction, edit *discordgo.WebhookEdit) error {
	_, err := r.session.InteractionResponseEdit(interaction, edit)
	return err
}
