package draw

// DrawError is a custom error type for draw coordination errors
type DrawError string

// Error implements the error interface
func (e DrawError) Error() string {
	return string(e)
}

// Define errors
const (
	ErrAlreadyDrawn        DrawError = "participant has already drawn"
	ErrCorruptState        DrawError = "exchange document is corrupt"
	ErrStoreUnavailable    DrawError = "exchange store unavailable"
	ErrNotReady            DrawError = "exchange is not ready"
	ErrParticipantNotFound DrawError = "participant not found"
	ErrAlreadyStarted      DrawError = "coordinator already started"
	ErrClosed              DrawError = "coordinator closed"
	ErrNilConfig           DrawError = "config cannot be nil"
	ErrNilRepository       DrawError = "exchange repository cannot be nil"
	ErrNilGenerator        DrawError = "assignment generator cannot be nil"
	ErrNilIDGenerator      DrawError = "ID generator cannot be nil"
	ErrEmptyPath           DrawError = "exchange path cannot be empty"
)
