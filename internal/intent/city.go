package intent

import "strings"

// ExtractCity pulls a location token out of free text: the first token that
// follows a case-insensitive "in" or "at" is returned verbatim, punctuation
// and all ("in Lyon?" yields "Lyon?"). Scanning does not backtrack; when no
// preposition-followed-by-token pattern exists, fallback is returned.
func ExtractCity(message, fallback string) string {
	words := strings.Fields(message)
	for i, w := range words {
		switch strings.ToLower(w) {
		case "in", "at":
			if i+1 < len(words) {
				return words[i+1]
			}
		}
	}
	return fallback
}
