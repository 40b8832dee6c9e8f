package session

import "strings"

// ClosureKeywords end a conversation when found anywhere in the user's input,
// ignoring case.
var ClosureKeywords = []string{"exit", "bye", "thanks", "quit"}

// IsClosure reports whether input contains any closure keyword.
func IsClosure(input string) bool {
	lower := strings.ToLower(input)
	for _, kw := range ClosureKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
