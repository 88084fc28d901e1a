package discord

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	drawMocks "github.com/KirkDiggler/secretsanta/internal/services/draw/mocks"
	messagingMocks "github.com/KirkDiggler/secretsanta/internal/services/messaging/mocks"
)

func TestNewValidatesConfig(t *testing.T) {
	ctrl := gomock.NewController(t)
	drawService := drawMocks.NewMockService(ctrl)
	messagingService := messagingMocks.NewMockService(ctrl)

	_, err := New(nil)
	assert.Error(t, err)

	_, err = New(&Config{DrawService: drawService, MessagingService: messagingService})
	assert.Error(t, err)

	_, err = New(&Config{Token: "t", MessagingService: messagingService})
	assert.Error(t, err)

	_, err = New(&Config{Token: "t", DrawService: drawService})
	assert.Error(t, err)

	bot, err := New(&Config{Token: "t", DrawService: drawService, MessagingService: messagingService})
	require.NoError(t, err)
	assert.Contains(t, bot.commands, "santa")
}

func TestHandleInteractionRoutesComponents(t *testing.T) {
	ctrl := gomock.NewController(t)
	drawService := drawMocks.NewMockService(ctrl)
	messagingService := messagingMocks.NewMockService(ctrl)

	bot, err := New(&Config{Token: "t", DrawService: drawService, MessagingService: messagingService})
	require.NoError(t, err)

	recorder := &recordingResponder{}
	bot.respond = recorder

	bot.handleInteraction(&discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Type: discordgo.InteractionMessageComponent,
		Data: discordgo.MessageComponentInteractionData{CustomID: "roll_dice"},
	}})

	got, _ := recorder.snapshot()
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Data.Embeds[0].Description, "Unknown component: roll_dice")
}
