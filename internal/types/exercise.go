package types

type SyllableBreakdown struct {
	Word      string `json:"word"`
	Syllables string `json:"syllables"`
	Count     int    `json:"count"`
}

type SimplifiedText struct {
	Original            string              `json:"original"`
	Simplified          string              `json:"simplified"`
	Syllables           []SyllableBreakdown `json:"syllables"`
	ReadingTimeEstimate float64             `json:"reading_time_estimate"`
}

type ExerciseQuestion struct {
	Type     string   `json:"type"`
	Question string   `json:"question"`
	Options  []string `json:"options,omitempty"`
	Answer   any      `json:"answer"`
}

type ReadingExercise struct {
	Story     string             `json:"story"`
	Questions []ExerciseQuestion `json:"questions"`
	FunFact   string             `json:"fun_fact"`
}
