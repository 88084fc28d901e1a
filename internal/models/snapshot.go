package models

// Snapshot is one observed version of the shared exchange document
type Snapshot struct {
	// Revision increases every time the document changes in the store
	Revision uint64

	// Exchange is nil when no document exists yet
	Exchange *Exchange
}

// Absent reports whether the document has not been created yet
func (s *Snapshot) Absent() bool {
	return s == nil || s.Exchange == nil
}
