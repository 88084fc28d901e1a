package discord

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/logger"

	"github.com/KirkDiggler/secretsanta/internal/services/draw"
	"github.com/KirkDiggler/secretsanta/internal/services/messaging"
)

// Component custom IDs
const (
	SelectWhoAmI = "santa_who_am_i"
)

const requestTimeout = 15 * time.Second

// SantaCommand handles the /santa command and its identity picker
type SantaCommand struct {
	BaseCommand
	drawService      draw.Service
	messagingService messaging.Service
}

// NewSantaCommand creates a new santa command handler
func NewSantaCommand(drawService draw.Service, messagingService messaging.Service) *SantaCommand {
	return &SantaCommand{
		BaseCommand: BaseCommand{
			Name:        "santa",
			Description: "Secret Santa draw",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "board",
					Description: "Show who has already drawn",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "draw",
					Description: "Draw your recipient",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "name",
							Description: "Your name as it is on the list",
							Required:    false,
						},
					},
				},
			},
		},
		drawService:      drawService,
		messagingService: messagingService,
	}
}

// Handle processes a Discord interaction for the santa command
func (c *SantaCommand) Handle(respond Responder, i *discordgo.InteractionCreate) error {
	if i.Type != discordgo.InteractionApplicationCommand {
		return nil
	}

	data := i.ApplicationCommandData()
	if data.Name != c.Name || len(data.Options) == 0 {
		return nil
	}

	sub := data.Options[0]
	switch sub.Name {
	case "board":
		return c.handleBoard(respond, i)
	case "draw":
		name := ""
		for _, opt := range sub.Options {
			if opt.Name == "name" {
				name = opt.StringValue()
			}
		}
		return c.handleDraw(respond, i, name)
	default:
		return RespondWithError(respond, i, "Unknown subcommand")
	}
}

// HandlesComponent reports whether the custom ID belongs to this command
func (c *SantaCommand) HandlesComponent(customID string) bool {
	return customID == SelectWhoAmI
}

// HandleComponent reveals for the participant picked from the select menu
func (c *SantaCommand) HandleComponent(respond Responder, i *discordgo.InteractionCreate) error {
	values := i.MessageComponentData().Values
	if len(values) == 0 {
		return RespondWithError(respond, i, "Pick your name first.")
	}

	if err := DeferUpdate(respond, i); err != nil {
		return err
	}
	return c.reveal(respond, i, values[0])
}

func (c *SantaCommand) handleBoard(respond Responder, i *discordgo.InteractionCreate) error {
	board, err := c.drawService.Board()
	if err != nil {
		return RespondWithError(respond, i, errorText(err))
	}
	return RespondWithEmbed(respond, i, renderBoard(board))
}

// handleDraw reveals directly when a name was given, otherwise offers the picker
func (c *SantaCommand) handleDraw(respond Responder, i *discordgo.InteractionCreate, name string) error {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	if name == "" {
		board, err := c.drawService.Board()
		if err != nil {
			return RespondWithError(respond, i, errorText(err))
		}
		picker := renderPicker(board)
		if picker == nil {
			return RespondWithEphemeralEmbed(respond, i, renderBoard(board))
		}
		return RespondWithEphemeralEmbed(respond, i, &discordgo.MessageEmbed{
			Title:       "🎅 Who are you?",
			Description: "Only you will see your recipient.",
			Color:       colorPine,
		}, picker...)
	}

	found, err := c.drawService.FindParticipant(ctx, &draw.FindParticipantInput{Name: name})
	if err != nil {
		return RespondWithError(respond, i, errorText(err))
	}

	if err := DeferEphemeral(respond, i); err != nil {
		return err
	}
	return c.reveal(respond, i, found.Participant.ID)
}

// reveal answers an already acknowledged interaction. The recipient is shown
// as soon as the draw succeeds and the wish is added when it is written.
func (c *SantaCommand) reveal(respond Responder, i *discordgo.InteractionCreate, participantID string) error {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	out, err := c.drawService.Reveal(ctx, &draw.RevealInput{ParticipantID: participantID})
	if err != nil {
		logger.Infof("Discord reveal for %s refused: %v", participantID, err)
		return EditWithError(respond, i, errorText(err))
	}

	noComponents := []discordgo.MessageComponent{}
	if err := EditWithEmbed(respond, i, renderReveal(out, ""), noComponents); err != nil {
		logger.Warningf("Failed to show recipient for %s, retrying with the wish: %v", participantID, err)
	}

	message := messaging.FallbackMessage(out.Recipient.Name)
	msg, err := c.messagingService.GetRevealMessage(ctx, &messaging.GetRevealMessageInput{
		RecipientName: out.Recipient.Name,
	})
	if err == nil && msg != nil && msg.Message != "" {
		message = msg.Message
	}

	return EditWithEmbed(respond, i, renderReveal(out, message), noComponents)
}
