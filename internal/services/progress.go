package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	redisclient "github.com/dyslexifriend/backend/internal/clients/redis"
	"github.com/dyslexifriend/backend/internal/logger"
	"github.com/dyslexifriend/backend/internal/repos"
	"github.com/dyslexifriend/backend/internal/types"
)

var (
	ErrMissingStudentID = errors.New("student_id is required")
	ErrInvalidSession   = errors.New("words_read and duration_minutes must be non-negative")
)

type ProgressService interface {
	SaveSession(ctx context.Context, studentID string, session types.ReadingSession) error
	GetProgress(ctx context.Context, studentID string) (*types.ProgressReport, error)
}

// ReportCache is the narrow view of the progress cache the service needs.
// *redisclient.ProgressCache satisfies it; tests substitute a fake.
type ReportCache interface {
	Get(ctx context.Context, studentID string) (*types.ProgressReport, bool)
	Set(ctx context.Context, studentID string, report *types.ProgressReport)
	Invalidate(ctx context.Context, studentID string)
}

var _ ReportCache = (*redisclient.ProgressCache)(nil)

type progressService struct {
	log   *logger.Logger
	store repos.RecordStore
	cache ReportCache

	group singleflight.Group

	// per-student locks: two appends for the same student must not race the
	// read-modify-write; appends for different students run concurrently.
	// Lock entries are never removed: reclaiming a mutex another goroutine
	// still references would break the exclusion, so the map grows with the
	// set of distinct student IDs. gens counts saves per student so a read
	// that overlapped a save cannot re-cache the report it built from the
	// pre-save record.
	mu    sync.Mutex
	locks map[string]*sync.Mutex
	gens  map[string]uint64
}

func NewProgressService(log *logger.Logger, store repos.RecordStore, cache ReportCache) ProgressService {
	return &progressService{
		log:   log.With("service", "ProgressService"),
		store: store,
		cache: cache,
		locks: map[string]*sync.Mutex{},
		gens:  map[string]uint64{},
	}
}

func (ps *progressService) studentLock(studentID string) *sync.Mutex {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	l, ok := ps.locks[studentID]
	if !ok {
		l = &sync.Mutex{}
		ps.locks[studentID] = l
	}
	return l
}

func (ps *progressService) gen(studentID string) uint64 {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return ps.gens[studentID]
}

func (ps *progressService) bumpGen(studentID string) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.gens[studentID]++
}

func (ps *progressService) SaveSession(ctx context.Context, studentID string, session types.ReadingSession) error {
	studentID = strings.TrimSpace(studentID)
	if studentID == "" {
		return ErrMissingStudentID
	}
	if session.WordsRead < 0 || session.DurationMinutes < 0 {
		return ErrInvalidSession
	}

	lock := ps.studentLock(studentID)
	lock.Lock()
	defer lock.Unlock()

	record, err := ps.store.Get(ctx, nil, studentID)
	if errors.Is(err, repos.ErrNotFound) {
		record = &types.StudentRecord{StudentID: studentID}
	} else if err != nil {
		return err
	}

	sessions, err := record.SessionList()
	if err != nil {
		return fmt.Errorf("decode sessions for %s: %w", studentID, err)
	}

	// the store stamps the session, not the client
	session.Timestamp = time.Now()
	sessions = append(sessions, session)

	if err := record.SetSessionList(sessions); err != nil {
		return err
	}
	record.TotalWordsRead += session.WordsRead
	record.TotalTimeMinutes += session.DurationMinutes
	record.StreakDays = CalculateStreak(sessions)

	if err := ps.store.Put(ctx, nil, record); err != nil {
		return err
	}

	ps.bumpGen(studentID)
	if ps.cache != nil {
		ps.cache.Invalidate(ctx, studentID)
	}
	ps.log.Debug("Session saved", "student_id", studentID, "sessions", len(sessions), "streak_days", record.StreakDays)
	return nil
}

func (ps *progressService) GetProgress(ctx context.Context, studentID string) (*types.ProgressReport, error) {
	studentID = strings.TrimSpace(studentID)
	if studentID == "" {
		return nil, ErrMissingStudentID
	}

	v, err, _ := ps.group.Do(studentID, func() (any, error) {
		if ps.cache != nil {
			if report, ok := ps.cache.Get(ctx, studentID); ok {
				return report, nil
			}
		}

		gen := ps.gen(studentID)
		record, err := ps.store.Get(ctx, nil, studentID)
		if err != nil {
			return nil, err
		}
		sessions, err := record.SessionList()
		if err != nil {
			return nil, fmt.Errorf("decode sessions for %s: %w", studentID, err)
		}

		report := &types.ProgressReport{
			StudentID:        record.StudentID,
			Sessions:         sessions,
			TotalWordsRead:   record.TotalWordsRead,
			TotalTimeMinutes: record.TotalTimeMinutes,
			StreakDays:       record.StreakDays,
		}
		report.Statistics = AggregateStats(report)

		// a save may have invalidated the cache while this report was being
		// built from the older record; caching it then would pin the stale
		// view for a full TTL
		if ps.cache != nil && ps.gen(studentID) == gen {
			ps.cache.Set(ctx, studentID, report)
		}
		return report, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*types.ProgressReport), nil
}
