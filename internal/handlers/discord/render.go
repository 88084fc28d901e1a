package discord

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/KirkDiggler/secretsanta/internal/models"
	"github.com/KirkDiggler/secretsanta/internal/services/draw"
)

const (
	colorFestive = 0xc0392b
	colorPine    = 0x1e8449
	colorError   = 0xff0000

	// Discord caps a select menu at 25 options
	maxSelectOptions = 25

	// shown under the recipient until the wish arrives
	pendingWish = "✨ _Writing a little wish for you…_"
)

// renderBoard lists everyone and whether they have drawn. Assignments are never shown.
func renderBoard(board *models.Board) *discordgo.MessageEmbed {
	var lines []string
	for _, entry := range board.Entries {
		mark := "🎁"
		if entry.HasDrawn {
			mark = "✅"
		}
		lines = append(lines, fmt.Sprintf("%s %s", mark, entry.Name))
	}
	if len(lines) == 0 {
		lines = append(lines, "Nobody is in the exchange yet.")
	}

	return &discordgo.MessageEmbed{
		Title:       "🎄 Secret Santa",
		Description: strings.Join(lines, "\n"),
		Color:       colorPine,
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("%d of %d have drawn", board.Drawn, board.Total),
		},
	}
}

// renderPicker offers everyone who still has to draw
func renderPicker(board *models.Board) []discordgo.MessageComponent {
	var options []discordgo.SelectMenuOption
	for _, entry := range board.Entries {
		if entry.HasDrawn {
			continue
		}
		if len(options) == maxSelectOptions {
			break
		}
		options = append(options, discordgo.SelectMenuOption{
			Label: entry.Name,
			Value: entry.ID,
			Emoji: &discordgo.ComponentEmoji{Name: "🎅"},
		})
	}
	if len(options) == 0 {
		return nil
	}

	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.SelectMenu{
					CustomID:    SelectWhoAmI,
					Placeholder: "Who are you?",
					Options:     options,
				},
			},
		},
	}
}

// renderReveal is only ever sent ephemerally to the giver
func renderReveal(out *draw.RevealOutput, message string) *discordgo.MessageEmbed {
	if message == "" {
		message = pendingWish
	}
	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("%s, you are buying a gift for…", out.Giver.Name),
		Description: fmt.Sprintf("## %s\n\n%s", out.Recipient.Name, message),
		Color:       colorFestive,
		Footer: &discordgo.MessageEmbedFooter{
			Text: "Keep it secret!",
		},
	}
}

// errorText turns coordinator errors into something a participant can act on
func errorText(err error) string {
	switch {
	case errors.Is(err, draw.ErrAlreadyDrawn):
		return "You have already drawn. Your recipient stays the same, ask yourself nicely 🙂"
	case errors.Is(err, draw.ErrParticipantNotFound):
		return "That name is not on the list."
	case errors.Is(err, draw.ErrNotReady):
		return "The exchange is still being set up, try again in a moment."
	case errors.Is(err, draw.ErrCorruptState):
		return "Something is wrong with the drawing. Please tell the organiser."
	default:
		return "The exchange is unavailable right now, try again later."
	}
}
