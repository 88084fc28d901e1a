package models

// BoardEntry is the public state of one participant
type BoardEntry struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	HasDrawn bool   `json:"hasDrawn"`
}

// Board is what every client may see: who is in the exchange and who has drawn.
// It never carries assignment edges.
type Board struct {
	Revision uint64       `json:"revision"`
	Entries  []BoardEntry `json:"entries"`
	Drawn    int          `json:"drawn"`
	Total    int          `json:"total"`
}

// NewBoard builds the public view of a snapshot
func NewBoard(snapshot *Snapshot) *Board {
	board := &Board{Entries: []BoardEntry{}}
	if snapshot == nil {
		return board
	}
	board.Revision = snapshot.Revision
	if snapshot.Exchange == nil {
		return board
	}
	for _, p := range snapshot.Exchange.Participants {
		board.Entries = append(board.Entries, BoardEntry{
			ID:       p.ID,
			Name:     p.Name,
			HasDrawn: snapshot.Exchange.HasDrawn(p.ID),
		})
	}
	board.Drawn = snapshot.Exchange.DrawnCount()
	board.Total = len(board.Entries)
	return board
}
