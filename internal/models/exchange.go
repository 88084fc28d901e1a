package models

// AssignmentEdge says that the giver buys a gift for the recipient
type AssignmentEdge struct {
	// GiverID is the participant who draws
	GiverID string `json:"giverId"`

	// RecipientID is the participant the giver was assigned
	RecipientID string `json:"recipientId"`
}

// DrawStatus maps a participant ID to whether they have revealed their assignment.
// An absent key means false. Keys only ever move from false to true.
type DrawStatus map[string]bool

// Exchange is the shared document describing one gift exchange.
// Participants and Edges are written once at creation. Only DrawStatus changes afterwards.
type Exchange struct {
	// Participants in the order they were rostered
	Participants []Participant `json:"participants"`

	// Edges form the drawing ring, one per participant
	Edges []AssignmentEdge `json:"edges"`

	// DrawStatus records who has already drawn
	DrawStatus DrawStatus `json:"drawStatus,omitempty"`
}

// HasDrawn reports whether the participant has already revealed their assignment
func (e *Exchange) HasDrawn(participantID string) bool {
	if e == nil {
		return false
	}
	return e.DrawStatus[participantID]
}

// EdgeFor returns the edge where the participant is the giver
func (e *Exchange) EdgeFor(giverID string) (AssignmentEdge, bool) {
	if e == nil {
		return AssignmentEdge{}, false
	}
	for _, edge := range e.Edges {
		if edge.GiverID == giverID {
			return edge, true
		}
	}
	return AssignmentEdge{}, false
}

// Participant looks up a participant by ID
func (e *Exchange) Participant(id string) (Participant, bool) {
	if e == nil {
		return Participant{}, false
	}
	for _, p := range e.Participants {
		if p.ID == id {
			return p, true
		}
	}
	return Participant{}, false
}

// DrawnCount returns how many participants have revealed
func (e *Exchange) DrawnCount() int {
	if e == nil {
		return 0
	}
	count := 0
	for _, p := range e.Participants {
		if e.DrawStatus[p.ID] {
			count++
		}
	}
	return count
}

// Clone returns a deep copy so callers can hold on to a snapshot safely
func (e *Exchange) Clone() *Exchange {
	if e == nil {
		return nil
	}
	clone := &Exchange{
		Participants: make([]Participant, len(e.Participants)),
		Edges:        make([]AssignmentEdge, len(e.Edges)),
		DrawStatus:   make(DrawStatus, len(e.DrawStatus)),
	}
	copy(clone.Participants, e.Participants)
	copy(clone.Edges, e.Edges)
	for id, drawn := range e.DrawStatus {
		clone.DrawStatus[id] = drawn
	}
	return clone
}
