package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBoard(t *testing.T) {
	snapshot := &Snapshot{
		Revision: 3,
		Exchange: &Exchange{
			Participants: []Participant{
				{ID: "p-anya", Name: "Anya"},
				{ID: "p-bence", Name: "Bence"},
				{ID: "p-bogi", Name: "Bogi"},
			},
			Edges: []AssignmentEdge{
				{GiverID: "p-anya", RecipientID: "p-bogi"},
				{GiverID: "p-bogi", RecipientID: "p-bence"},
				{GiverID: "p-bence", RecipientID: "p-anya"},
			},
			// a status for someone not in the exchange is not counted
			DrawStatus: DrawStatus{"p-bence": true, "p-ghost": true},
		},
	}

	board := NewBoard(snapshot)

	require.Len(t, board.Entries, 3)
	assert.Equal(t, uint64(3), board.Revision)
	assert.Equal(t, 1, board.Drawn)
	assert.Equal(t, 3, board.Total)
	assert.Equal(t, []BoardEntry{
		{ID: "p-anya", Name: "Anya"},
		{ID: "p-bence", Name: "Bence", HasDrawn: true},
		{ID: "p-bogi", Name: "Bogi"},
	}, board.Entries)
}

func TestNewBoardAbsentDocument(t *testing.T) {
	board := NewBoard(&Snapshot{Revision: 0})
	assert.Empty(t, board.Entries)
	assert.Zero(t, board.Drawn)
	assert.Zero(t, board.Total)

	assert.Empty(t, NewBoard(nil).Entries)
}
