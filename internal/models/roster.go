package models

// Roster is the input used to initialize an exchange.
// The exclusion relation only shapes the generated ring and is never persisted.
type Roster struct {
	// Participants lists display names in presentation order
	Participants []string `yaml:"participants"`

	// Exclusions maps a giver's name to the names they must not be assigned
	Exclusions map[string][]string `yaml:"exclusions"`
}

// DefaultRoster returns the roster used when no roster file is configured
func DefaultRoster() *Roster {
	return &Roster{
		Participants: []string{"Anya", "Pisti", "Bence", "Balázs", "Zsani", "Bogi", "Marci"},
		Exclusions: map[string][]string{
			"Bogi":   {"Marci"},
			"Marci":  {"Bogi"},
			"Balázs": {"Zsani"},
			"Zsani":  {"Balázs"},
		},
	}
}
