package types

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// StudentRecord is the durable per-student progress record. The append-only
// session log is stored as a single JSONB document so session payloads with
// unknown client fields survive round-trips untouched.
type StudentRecord struct {
	StudentID        string         `gorm:"primaryKey;column:student_id" json:"student_id"`
	Sessions         datatypes.JSON `gorm:"type:jsonb;column:sessions" json:"sessions"`
	TotalWordsRead   int            `gorm:"column:total_words_read;not null;default:0" json:"total_words_read"`
	TotalTimeMinutes float64        `gorm:"column:total_time_minutes;not null;default:0" json:"total_time_minutes"`
	StreakDays       int            `gorm:"column:streak_days;not null;default:0" json:"streak_days"`
	CreatedAt        time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (StudentRecord) TableName() string { return "student_record" }

func (r *StudentRecord) SessionList() ([]ReadingSession, error) {
	if len(r.Sessions) == 0 {
		return []ReadingSession{}, nil
	}
	var sessions []ReadingSession
	if err := json.Unmarshal(r.Sessions, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *StudentRecord) SetSessionList(sessions []ReadingSession) error {
	raw, err := json.Marshal(sessions)
	if err != nil {
		return err
	}
	r.Sessions = datatypes.JSON(raw)
	return nil
}
