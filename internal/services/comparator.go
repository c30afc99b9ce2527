package services

import (
	"math"
	"strings"

	"github.com/dyslexifriend/backend/internal/normalization"
	"github.com/dyslexifriend/backend/internal/types"
)

// CompareTexts scores a reading attempt against the expected text. An
// expected word counts as read if it appears anywhere in the spoken text;
// position and repetition do not matter. Duplicated expected words are each
// scored on their own since repetition is real reading load.
func CompareTexts(expected, spoken string) *types.ReadingAnalysis {
	expectedWords := normalization.Tokenize(expected)
	spokenWords := normalization.Tokenize(spoken)

	spokenSet := make(map[string]struct{}, len(spokenWords))
	for _, word := range spokenWords {
		spokenSet[word] = struct{}{}
	}

	stumbling := []types.StumblingWord{}
	difficultyScore := 0
	for _, word := range expectedWords {
		if _, said := spokenSet[word]; said {
			continue
		}
		syllableCount := EstimateSyllables(word)
		difficulty := "medium"
		if syllableCount > 3 {
			difficulty = "high"
		}
		stumbling = append(stumbling, types.StumblingWord{
			Word:       word,
			Syllables:  syllableCount,
			Difficulty: difficulty,
		})
		difficultyScore += syllableCount
	}

	denominator := len(expectedWords)
	if denominator == 0 {
		denominator = 1
	}
	accuracy := roundTo2((1 - float64(len(stumbling))/float64(denominator)) * 100)

	return &types.ReadingAnalysis{
		ExpectedText:    expected,
		SpokenText:      spoken,
		Accuracy:        accuracy,
		StumblingWords:  stumbling,
		DifficultyScore: difficultyScore,
		Suggestions:     buildSuggestions(stumbling),
	}
}

func buildSuggestions(stumbling []types.StumblingWord) []string {
	suggestions := []string{}
	if len(stumbling) == 0 {
		return append(suggestions, "Perfect reading! Try a harder level!")
	}

	var complexWords []string
	for _, w := range stumbling {
		if w.Syllables > 3 {
			complexWords = append(complexWords, w.Word)
		}
	}
	if len(complexWords) > 0 {
		if len(complexWords) > 3 {
			complexWords = complexWords[:3]
		}
		suggestions = append(suggestions, "Practice breaking long words into syllables")
		suggestions = append(suggestions, "Try reading these words slowly: "+strings.Join(complexWords, ", "))
	}

	suggestions = append(suggestions,
		"Take a deep breath between sentences",
		"Use your finger to track each word",
	)
	return suggestions
}

func roundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}
