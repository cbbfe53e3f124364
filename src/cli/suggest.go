package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/texttheater/golang-levenshtein/levenshtein"
)

// maxTargetSuggestionDistance bounds how different an unrecognized target
// name may be from a registered one before it stops counting as a likely
// typo rather than an unrelated name.
const maxTargetSuggestionDistance = 3

// SuggestTarget ranks registered target names by edit distance from name
// and formats the close ones as a "did you mean" hint for spec §7's
// "unknown target" configuration error. Returns "" if nothing registered
// is close enough to be worth suggesting.
func SuggestTarget(name string, registered []string) string {
	needle := []rune(name)

	type match struct {
		name string
		dist int
	}
	var matches []match
	for _, candidate := range registered {
		if candidate == "" {
			continue
		}
		if dist := levenshtein.DistanceForStrings(needle, []rune(candidate), levenshtein.DefaultOptions); dist <= maxTargetSuggestionDistance {
			matches = append(matches, match{candidate, dist})
		}
	}
	if len(matches) == 0 {
		return ""
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].dist < matches[j].dist })

	names := make([]string, len(matches))
	for i, m := range matches {
		names[i] = m.name
	}
	if len(names) == 1 {
		return fmt.Sprintf("\nMaybe you meant %s ?", names[0])
	}
	return fmt.Sprintf("\nMaybe you meant %s or %s ?", strings.Join(names[:len(names)-1], " , "), names[len(names)-1])
}
