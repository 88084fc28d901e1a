package discord

import (
	"github.com/bwmarrin/discordgo"
)

// Responder answers interactions. The bot binds it to its session.
type Responder interface {
	// Respond sends the initial response, which Discord expects within 3 seconds
	Respond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse) error

	// Edit replaces the initial (or deferred) response
	Edit(interaction *discordgo.Interaction, edit *discordgo.WebhookEdit) error
}

// CommandHandler defines the interface for Discord command handlers
type CommandHandler interface {
	// GetName returns the command name
	GetName() string

	// GetCommand returns the application command definition
	GetCommand() *discordgo.ApplicationCommand

	// Handle processes a slash command interaction
	Handle(respond Responder, i *discordgo.InteractionCreate) error
}

// ComponentHandler is implemented by commands that also own message components
type ComponentHandler interface {
	// HandlesComponent reports whether the custom ID belongs to this handler
	HandlesComponent(customID string) bool

	// HandleComponent processes a button or select interaction
	HandleComponent(respond Responder, i *discordgo.InteractionCreate) error
}

// BaseCommand provides common functionality for all commands
type BaseCommand struct {
	Name        string
	Description string
	Options     []*discordgo.ApplicationCommandOption
}

// GetName returns the command name
func (c *BaseCommand) GetName() string {
	return c.Name
}

// GetCommand returns the application command definition
func (c *BaseCommand) GetCommand() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name,
		Description: c.Description,
		Options:     c.Options,
	}
}

// RespondWithEmbed sends an embed visible to the whole channel
func RespondWithEmbed(respond Responder, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed) error {
	return respond.Respond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
		},
	})
}

// RespondWithEphemeralEmbed sends an embed only the caller can see
func RespondWithEphemeralEmbed(respond Responder, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed, components ...discordgo.MessageComponent) error {
	return respond.Respond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{embed},
			Components: components,
			Flags:      discordgo.MessageFlagsEphemeral,
		},
	})
}

// UpdateWithEmbed replaces the message a component belongs to
func UpdateWithEmbed(respond Responder, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed) error {
	return respond.Respond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{embed},
			Components: []discordgo.MessageComponent{},
		},
	})
}

// RespondWithError sends an ephemeral error embed
func RespondWithError(respond Responder, i *discordgo.InteractionCreate, errorMessage string) error {
	return RespondWithEphemeralEmbed(respond, i, &discordgo.MessageEmbed{
		Title:       "Error",
		Description: errorMessage,
		Color:       colorError,
	})
}

// DeferEphemeral acknowledges a slash command with a private loading state
func DeferEphemeral(respond Responder, i *discordgo.InteractionCreate) error {
	return respond.Respond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags: discordgo.MessageFlagsEphemeral,
		},
	})
}

// DeferUpdate acknowledges a component; the message it belongs to is edited later
func DeferUpdate(respond Responder, i *discordgo.InteractionCreate) error {
	return respond.Respond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	})
}

// EditWithEmbed replaces the embeds of a deferred response. Nil components
// are left as they are, an empty slice removes them.
func EditWithEmbed(respond Responder, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed, components []discordgo.MessageComponent) error {
	edit := &discordgo.WebhookEdit{
		Embeds: &[]*discordgo.MessageEmbed{embed},
	}
	if components != nil {
		edit.Components = &components
	}
	return respond.Edit(i.Interaction, edit)
}

// EditWithError replaces a deferred response with an error embed
func EditWithError(respond Responder, i *discordgo.InteractionCreate, errorMessage string) error {
	return EditWithEmbed(respond, i, &discordgo.MessageEmbed{
		Title:       "Error",
		Description: errorMessage,
		Color:       colorError,
	}, nil)
}
