package normalization

import (
	"strings"
)

// Tokenize lowercases the input and splits it on whitespace. Token equality
// downstream is exact: punctuation stays attached to its word.
func Tokenize(input string) []string {
	return strings.Fields(strings.ToLower(input))
}
