package assignment

import "github.com/KirkDiggler/secretsanta/internal/common/names"

// exclusions is the forbidden relation keyed by normalized names
type exclusions map[string]map[string]struct{}

func newExclusions(forbidden map[string][]string) exclusions {
	ex := make(exclusions, len(forbidden))
	for giver, recipients := range forbidden {
		key := names.Normalize(giver)
		if ex[key] == nil {
			ex[key] = make(map[string]struct{}, len(recipients))
		}
		for _, recipient := range recipients {
			ex[key][names.Normalize(recipient)] = struct{}{}
		}
	}
	return ex
}

func (ex exclusions) has(giver, recipient string) bool {
	_, ok := ex[names.Normalize(giver)][names.Normalize(recipient)]
	return ok
}
