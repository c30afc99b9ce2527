package types

// StumblingWord is an expected word the student did not say, with a syllable
// estimate used for difficulty classification.
type StumblingWord struct {
	Word       string `json:"word"`
	Syllables  int    `json:"syllables"`
	Difficulty string `json:"difficulty"`
}

type ReadingAnalysis struct {
	ExpectedText    string          `json:"expected_text"`
	SpokenText      string          `json:"spoken_text"`
	Accuracy        float64         `json:"accuracy"`
	StumblingWords  []StumblingWord `json:"stumbling_words"`
	DifficultyScore int             `json:"difficulty_score"`
	Suggestions     []string        `json:"suggestions"`
}
