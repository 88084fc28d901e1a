package config

// ConfigError is a custom error type for configuration errors
type ConfigError string

// Error implements the error interface
func (e ConfigError) Error() string {
	return string(e)
}

// Define errors
const (
	ErrUnknownBackend      ConfigError = "unknown store backend"
	ErrInvalidValue        ConfigError = "invalid configuration value"
	ErrEmptyRoster         ConfigError = "roster has no participants"
	ErrDuplicateName       ConfigError = "roster lists a name more than once"
	ErrUnknownExclusion    ConfigError = "exclusion names someone who is not on the roster"
	ErrMissingExchangePath ConfigError = "exchange path cannot be empty"
)
