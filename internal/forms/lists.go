package forms

import "strings"

// Caps on comma-separated lists.
const (
	MaxTags   = 12
	MaxSkills = 15
)

// ParseTags splits comma-separated tags. Entries are trimmed, empties
// dropped, exact duplicates removed, and the result cut to MaxTags.
func ParseTags(input string) []string {
	return parseList(input, MaxTags)
}

// ParseSkills is ParseTags with the MaxSkills cap.
func ParseSkills(input string) []string {
	return parseList(input, MaxSkills)
}

func parseList(input string, limit int) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, part := range strings.Split(input, ",") {
		item := strings.TrimSpace(part)
		if item == "" || seen[item] {
			continue
		}
		seen[item] = true
		out = append(out, item)
		if len(out) == limit {
			break
		}
	}
	return out
}

// JoinList renders a list back into the comma-separated input form.
func JoinList(items []string) string {
	return strings.Join(items, ", ")
}
