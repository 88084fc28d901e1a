package exchange

import (
	"time"

	"github.com/KirkDiggler/secretsanta/internal/models"
)

const (
	testPath    = "christmas-draw-test"
	waitTimeout = 3 * time.Second
)

func testExchange() *models.Exchange {
	return &models.Exchange{
		Participants: []models.Participant{
			{ID: "p-anya", Name: "Anya"},
			{ID: "p-bence", Name: "Bence"},
			{ID: "p-bogi", Name: "Bogi"},
		},
		Edges: []models.AssignmentEdge{
			{GiverID: "p-anya", RecipientID: "p-bogi"},
			{GiverID: "p-bogi", RecipientID: "p-bence"},
			{GiverID: "p-bence", RecipientID: "p-anya"},
		},
		DrawStatus: models.DrawStatus{},
	}
}

func otherExchange() *models.Exchange {
	return &models.Exchange{
		Participants: []models.Participant{
			{ID: "q-1", Name: "Marci"},
			{ID: "q-2", Name: "Pisti"},
			{ID: "q-3", Name: "Zsani"},
		},
		Edges: []models.AssignmentEdge{
			{GiverID: "q-1", RecipientID: "q-2"},
			{GiverID: "q-2", RecipientID: "q-3"},
			{GiverID: "q-3", RecipientID: "q-1"},
		},
		DrawStatus: models.DrawStatus{},
	}
}

// nextSnapshot waits for the next delivered snapshot, nil if the feed closed or timed out
func nextSnapshot(sub Subscription) (*models.Snapshot, bool) {
	select {
	case snapshot, ok := <-sub.Updates():
		return snapshot, ok
	case <-time.After(waitTimeout):
		return nil, false
	}
}

// waitFor skips snapshots until one satisfies the condition
func waitFor(sub Subscription, cond func(*models.Snapshot) bool) (*models.Snapshot, bool) {
	deadline := time.After(waitTimeout)
	for {
		select {
		case snapshot, ok := <-sub.Updates():
			if !ok {
				return nil, false
			}
			if cond(snapshot) {
				return snapshot, true
			}
		case <-deadline:
			return nil, false
		}
	}
}
