package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dyslexifriend/backend/internal/logger"
	"github.com/dyslexifriend/backend/internal/types"
)

var ErrNotFound = errors.New("student record not found")

// RecordStore persists one progress record per student. Put replaces the
// whole record in a single upsert so readers never see a half-applied update.
type RecordStore interface {
	Get(ctx context.Context, tx *gorm.DB, studentID string) (*types.StudentRecord, error)
	Put(ctx context.Context, tx *gorm.DB, record *types.StudentRecord) error
}

type recordStore struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRecordStore(db *gorm.DB, baseLog *logger.Logger) RecordStore {
	repoLog := baseLog.With("repo", "RecordStore")
	return &recordStore{db: db, log: repoLog}
}

func (rs *recordStore) Get(ctx context.Context, tx *gorm.DB, studentID string) (*types.StudentRecord, error) {
	transaction := tx
	if transaction == nil {
		transaction = rs.db
	}

	var result types.StudentRecord
	if err := transaction.WithContext(ctx).
		Where("student_id = ?", studentID).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &result, nil
}

func (rs *recordStore) Put(ctx context.Context, tx *gorm.DB, record *types.StudentRecord) error {
	transaction := tx
	if transaction == nil {
		transaction = rs.db
	}

	if err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "student_id"}},
			UpdateAll: true,
		}).
		Create(record).Error; err != nil {
		rs.log.Error("Failed to put student record", "student_id", record.StudentID, "error", err)
		return err
	}
	return nil
}
