package models

// Participant is a member of the gift exchange.
// Participants are created once when the exchange is initialized and never change.
type Participant struct {
	// ID is the opaque unique token identifying the participant
	ID string `json:"id"`

	// Name is the display name the participant selects to claim their identity
	Name string `json:"name"`
}
