package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/KirkDiggler/secretsanta/internal/common/names"
	"github.com/KirkDiggler/secretsanta/internal/models"
)

// LoadRoster reads and validates a roster YAML file.
// Unknown fields are rejected so a typo like "exclusion:" is not silently ignored.
func LoadRoster(path string) (*models.Roster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read roster file: %w", err)
	}

	var roster models.Roster
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&roster); err != nil {
		return nil, fmt.Errorf("failed to parse roster %s: %w", path, err)
	}

	if err := ValidateRoster(&roster); err != nil {
		return nil, fmt.Errorf("roster %s: %w", path, err)
	}

	return &roster, nil
}

// ValidateRoster checks that names are unique and every exclusion refers to someone on the roster
func ValidateRoster(roster *models.Roster) error {
	if roster == nil || len(roster.Participants) == 0 {
		return ErrEmptyRoster
	}

	seen := make(map[string]bool, len(roster.Participants))
	for _, name := range roster.Participants {
		key := names.Normalize(name)
		if key == "" {
			return fmt.Errorf("%w: blank name", ErrInvalidValue)
		}
		if seen[key] {
			return fmt.Errorf("%w: %q", ErrDuplicateName, name)
		}
		seen[key] = true
	}

	for giver, recipients := range roster.Exclusions {
		if !seen[names.Normalize(giver)] {
			return fmt.Errorf("%w: %q", ErrUnknownExclusion, giver)
		}
		for _, recipient := range recipients {
			if !seen[names.Normalize(recipient)] {
				return fmt.Errorf("%w: %q excludes %q", ErrUnknownExclusion, giver, recipient)
			}
		}
	}

	return nil
}
