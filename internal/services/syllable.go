package services

import (
	"strings"
)

const vowels = "aeiouy"

// EstimateSyllables counts vowel groups in a word. A silent trailing 'e'
// ("make", "time") is not counted unless the word ends in "le" or the 'e' is
// the only vowel. Always returns at least 1.
func EstimateSyllables(word string) int {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(word)) {
		if r >= 'a' && r <= 'z' {
			b.WriteRune(r)
		}
	}
	w := b.String()
	if w == "" {
		return 1
	}

	count := 0
	prevVowel := false
	for i := 0; i < len(w); i++ {
		isVowel := strings.IndexByte(vowels, w[i]) >= 0
		if isVowel && !prevVowel {
			count++
		}
		prevVowel = isVowel
	}

	if strings.HasSuffix(w, "e") && !strings.HasSuffix(w, "le") && count > 1 {
		count--
	}
	if count < 1 {
		count = 1
	}
	return count
}
