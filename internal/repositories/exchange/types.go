package exchange

import "github.com/KirkDiggler/secretsanta/internal/models"

type SubscribeInput struct {
	Path string
}

type GetSnapshotInput struct {
	Path string
}

type WriteFullInput struct {
	Path     string
	Exchange *models.Exchange
}

type CreateIfAbsentInput struct {
	Path     string
	Exchange *models.Exchange
}

type WriteDrawStatusInput struct {
	Path          string
	ParticipantID string

	// IfAbsent makes the write conditional: ErrAlreadySet when the key is already true
	IfAbsent bool
}

// document is the write-once part of the exchange as persisted by both backends
type document struct {
	Participants []models.Participant    `json:"participants"`
	Edges        []models.AssignmentEdge `json:"edges"`
}
