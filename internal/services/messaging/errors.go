package messaging

// MessagingError is a custom error type for messaging errors
type MessagingError string

// Error implements the error interface
func (e MessagingError) Error() string {
	return string(e)
}

// Define errors
const (
	ErrNilConfig     MessagingError = "config cannot be nil"
	ErrEmptyAPIKey   MessagingError = "API key cannot be empty"
	ErrEmptyResponse MessagingError = "text generator returned no text"
	ErrNoGenerator   MessagingError = "no text generator configured"
)
