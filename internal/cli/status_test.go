package cli

import (
	"bytes"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/secretsanta/internal/models"
)

func TestRenderStatus(t *testing.T) {
	tests := []struct {
		name  string
		board *models.Board
	}{
		{
			name:  "status_empty",
			board: &models.Board{Entries: []models.BoardEntry{}},
		},
		{
			name: "status_partial",
			board: &models.Board{
				Revision: 4,
				Entries: []models.BoardEntry{
					{ID: "p-1", Name: "Anya", HasDrawn: true},
					{ID: "p-2", Name: "Bence"},
					{ID: "p-3", Name: "Bogi", HasDrawn: true},
				},
				Drawn: 2,
				Total: 3,
			},
		},
		{
			name: "status_complete",
			board: &models.Board{
				Revision: 6,
				Entries: []models.BoardEntry{
					{ID: "p-1", Name: "Anya", HasDrawn: true},
					{ID: "p-2", Name: "Bence", HasDrawn: true},
					{ID: "p-3", Name: "Bogi", HasDrawn: true},
				},
				Drawn: 3,
				Total: 3,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, renderStatus(&buf, "family-2024", tt.board))

			g := goldie.New(t,
				goldie.WithFixtureDir("testdata/golden"),
				goldie.WithNameSuffix(".golden"),
			)
			g.Assert(t, tt.name, buf.Bytes())
		})
	}
}
