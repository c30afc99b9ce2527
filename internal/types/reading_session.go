package types

import (
	"encoding/json"
	"time"
)

// ReadingSession is one completed reading attempt. Clients may attach fields
// beyond the known ones; those round-trip opaquely through Extra.
type ReadingSession struct {
	Timestamp       time.Time
	WordsRead       int
	DurationMinutes float64
	Accuracy        float64
	Topic           string
	Extra           map[string]any
}

func (s ReadingSession) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(s.Extra)+5)
	for k, v := range s.Extra {
		out[k] = v
	}
	out["timestamp"] = s.Timestamp.Format(time.RFC3339Nano)
	out["words_read"] = s.WordsRead
	out["duration_minutes"] = s.DurationMinutes
	out["accuracy"] = s.Accuracy
	out["topic"] = s.Topic
	return json.Marshal(out)
}

func (s *ReadingSession) UnmarshalJSON(data []byte) error {
	raw := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if v, ok := raw["timestamp"]; ok {
		var str string
		if err := json.Unmarshal(v, &str); err == nil {
			if t, err := time.Parse(time.RFC3339Nano, str); err == nil {
				s.Timestamp = t
			}
		}
		delete(raw, "timestamp")
	}
	if v, ok := raw["words_read"]; ok {
		var n float64
		if err := json.Unmarshal(v, &n); err == nil {
			s.WordsRead = int(n)
		}
		delete(raw, "words_read")
	}
	if v, ok := raw["duration_minutes"]; ok {
		var n float64
		if err := json.Unmarshal(v, &n); err == nil {
			s.DurationMinutes = n
		}
		delete(raw, "duration_minutes")
	}
	if v, ok := raw["accuracy"]; ok {
		var n float64
		if err := json.Unmarshal(v, &n); err == nil {
			s.Accuracy = n
		}
		delete(raw, "accuracy")
	}
	if v, ok := raw["topic"]; ok {
		var str string
		if err := json.Unmarshal(v, &str); err == nil {
			s.Topic = str
		}
		delete(raw, "topic")
	}
	if len(raw) > 0 {
		s.Extra = make(map[string]any, len(raw))
		for k, v := range raw {
			var anyVal any
			if err := json.Unmarshal(v, &anyVal); err != nil {
				return err
			}
			s.Extra[k] = anyVal
		}
	}
	return nil
}
