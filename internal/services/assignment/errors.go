package assignment

// AssignmentError is a custom error type for ring generation errors
type AssignmentError string

// Error implements the error interface
func (e AssignmentError) Error() string {
	return string(e)
}

// Define errors
const (
	ErrInfeasible           AssignmentError = "no valid drawing ring found"
	ErrDuplicateParticipant AssignmentError = "participant listed more than once"
	ErrInvalidRing          AssignmentError = "invalid drawing ring"
	ErrNilConfig            AssignmentError = "config cannot be nil"
	ErrNilShuffler          AssignmentError = "shuffler cannot be nil"
	ErrInvalidMaxAttempts   AssignmentError = "max attempts must be positive"
)
