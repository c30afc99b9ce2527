package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"gorm.io/gorm"

	"github.com/dyslexifriend/backend/internal/logger"
	"github.com/dyslexifriend/backend/internal/repos"
	"github.com/dyslexifriend/backend/internal/types"
)

type fakeRecordStore struct {
	mu      sync.Mutex
	records map[string]types.StudentRecord
	putErr  error

	// onGet runs once, after the record is snapshotted but before Get
	// returns, so a test can interleave a write with an in-flight read
	onGet func()
}

func newFakeRecordStore() *fakeRecordStore {
	return &fakeRecordStore{records: map[string]types.StudentRecord{}}
}

func (f *fakeRecordStore) Get(ctx context.Context, tx *gorm.DB, studentID string) (*types.StudentRecord, error) {
	f.mu.Lock()
	rec, ok := f.records[studentID]
	hook := f.onGet
	f.onGet = nil
	f.mu.Unlock()

	if hook != nil {
		hook()
	}
	if !ok {
		return nil, repos.ErrNotFound
	}
	clone := rec
	clone.Sessions = append([]byte(nil), rec.Sessions...)
	return &clone, nil
}

func (f *fakeRecordStore) Put(ctx context.Context, tx *gorm.DB, record *types.StudentRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return f.putErr
	}
	clone := *record
	clone.Sessions = append([]byte(nil), record.Sessions...)
	f.records[record.StudentID] = clone
	return nil
}

type fakeReportCache struct {
	mu            sync.Mutex
	entries       map[string]*types.ProgressReport
	invalidations int
}

func newFakeReportCache() *fakeReportCache {
	return &fakeReportCache{entries: map[string]*types.ProgressReport{}}
}

func (f *fakeReportCache) Get(ctx context.Context, studentID string) (*types.ProgressReport, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	report, ok := f.entries[studentID]
	return report, ok
}

func (f *fakeReportCache) Set(ctx context.Context, studentID string, report *types.ProgressReport) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[studentID] = report
}

func (f *fakeReportCache) Invalidate(ctx context.Context, studentID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.entries, studentID)
	f.invalidations++
}

func (f *fakeReportCache) cached(studentID string) (*types.ProgressReport, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	report, ok := f.entries[studentID]
	return report, ok
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("production")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return log
}

func TestSaveSessionRejectsMissingStudentID(t *testing.T) {
	store := newFakeRecordStore()
	svc := NewProgressService(testLogger(t), store, nil)

	err := svc.SaveSession(context.Background(), "  ", types.ReadingSession{WordsRead: 10})
	if !errors.Is(err, ErrMissingStudentID) {
		t.Fatalf("err=%v, want ErrMissingStudentID", err)
	}
	if len(store.records) != 0 {
		t.Fatalf("store mutated despite malformed input")
	}
}

func TestSaveSessionRejectsNegativeCounts(t *testing.T) {
	store := newFakeRecordStore()
	svc := NewProgressService(testLogger(t), store, nil)

	err := svc.SaveSession(context.Background(), "s1", types.ReadingSession{WordsRead: -1})
	if !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("err=%v, want ErrInvalidSession", err)
	}
}

func TestSaveSessionAccumulatesTotals(t *testing.T) {
	store := newFakeRecordStore()
	svc := NewProgressService(testLogger(t), store, nil)
	ctx := context.Background()

	wordCounts := []int{120, 80, 200}
	durations := []float64{5, 2.5, 10}
	for i := range wordCounts {
		err := svc.SaveSession(ctx, "s1", types.ReadingSession{
			WordsRead:       wordCounts[i],
			DurationMinutes: durations[i],
			Accuracy:        90,
			Topic:           "space",
		})
		if err != nil {
			t.Fatalf("SaveSession: %v", err)
		}
	}

	report, err := svc.GetProgress(ctx, "s1")
	if err != nil {
		t.Fatalf("GetProgress: %v", err)
	}
	if report.TotalWordsRead != 400 {
		t.Fatalf("total_words_read=%d, want 400", report.TotalWordsRead)
	}
	if report.TotalTimeMinutes != 17.5 {
		t.Fatalf("total_time_minutes=%v, want 17.5", report.TotalTimeMinutes)
	}
	if len(report.Sessions) != 3 {
		t.Fatalf("sessions=%d, want 3", len(report.Sessions))
	}
	if report.StreakDays != 1 {
		t.Fatalf("streak_days=%d, want 1 (all saved today)", report.StreakDays)
	}
	if report.Statistics == nil || report.Statistics.FavoriteTopic != "space" {
		t.Fatalf("statistics=%v, want favorite topic space", report.Statistics)
	}
}

func TestSaveSessionStampsTimestampServerSide(t *testing.T) {
	store := newFakeRecordStore()
	svc := NewProgressService(testLogger(t), store, nil)

	session := types.ReadingSession{WordsRead: 10}
	if err := svc.SaveSession(context.Background(), "s1", session); err != nil {
		t.Fatalf("SaveSession: %v", err)
	}

	report, err := svc.GetProgress(context.Background(), "s1")
	if err != nil {
		t.Fatalf("GetProgress: %v", err)
	}
	if report.Sessions[0].Timestamp.IsZero() {
		t.Fatalf("session timestamp not stamped by the store")
	}
}

func TestSaveSessionConcurrentSameStudent(t *testing.T) {
	store := newFakeRecordStore()
	svc := NewProgressService(testLogger(t), store, nil)
	ctx := context.Background()

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := svc.SaveSession(ctx, "s1", types.ReadingSession{WordsRead: 10}); err != nil {
				t.Errorf("SaveSession: %v", err)
			}
		}()
	}
	wg.Wait()

	report, err := svc.GetProgress(ctx, "s1")
	if err != nil {
		t.Fatalf("GetProgress: %v", err)
	}
	if report.TotalWordsRead != n*10 {
		t.Fatalf("total_words_read=%d, want %d (appends must be serialized)", report.TotalWordsRead, n*10)
	}
	if len(report.Sessions) != n {
		t.Fatalf("sessions=%d, want %d", len(report.Sessions), n)
	}
}

func TestSaveSessionKeepsUnknownFields(t *testing.T) {
	store := newFakeRecordStore()
	svc := NewProgressService(testLogger(t), store, nil)

	session := types.ReadingSession{
		WordsRead: 10,
		Extra:     map[string]any{"mood": "happy"},
	}
	if err := svc.SaveSession(context.Background(), "s1", session); err != nil {
		t.Fatalf("SaveSession: %v", err)
	}

	report, err := svc.GetProgress(context.Background(), "s1")
	if err != nil {
		t.Fatalf("GetProgress: %v", err)
	}
	if got := report.Sessions[0].Extra["mood"]; got != "happy" {
		t.Fatalf("extra field mood=%v, want happy", got)
	}
}

func TestGetProgressServesFromCache(t *testing.T) {
	store := newFakeRecordStore()
	cache := newFakeReportCache()
	svc := NewProgressService(testLogger(t), store, cache)

	// the store has no record; only the cache can satisfy this read
	cache.Set(context.Background(), "s1", &types.ProgressReport{StudentID: "s1", TotalWordsRead: 999})

	report, err := svc.GetProgress(context.Background(), "s1")
	if err != nil {
		t.Fatalf("GetProgress: %v", err)
	}
	if report.TotalWordsRead != 999 {
		t.Fatalf("total_words_read=%d, want 999 from cache", report.TotalWordsRead)
	}
}

func TestSaveSessionInvalidatesCachedReport(t *testing.T) {
	store := newFakeRecordStore()
	cache := newFakeReportCache()
	svc := NewProgressService(testLogger(t), store, cache)
	ctx := context.Background()

	if err := svc.SaveSession(ctx, "s1", types.ReadingSession{WordsRead: 100}); err != nil {
		t.Fatalf("SaveSession: %v", err)
	}
	if _, err := svc.GetProgress(ctx, "s1"); err != nil {
		t.Fatalf("GetProgress: %v", err)
	}
	if _, ok := cache.cached("s1"); !ok {
		t.Fatalf("report not cached after read")
	}

	if err := svc.SaveSession(ctx, "s1", types.ReadingSession{WordsRead: 50}); err != nil {
		t.Fatalf("SaveSession: %v", err)
	}
	if _, ok := cache.cached("s1"); ok {
		t.Fatalf("cached report survived a save")
	}

	report, err := svc.GetProgress(ctx, "s1")
	if err != nil {
		t.Fatalf("GetProgress: %v", err)
	}
	if report.TotalWordsRead != 150 {
		t.Fatalf("total_words_read=%d, want 150 after second save", report.TotalWordsRead)
	}
}

func TestGetProgressDoesNotRecacheStaleReadAfterSave(t *testing.T) {
	store := newFakeRecordStore()
	cache := newFakeReportCache()
	svc := NewProgressService(testLogger(t), store, cache)
	ctx := context.Background()

	if err := svc.SaveSession(ctx, "s1", types.ReadingSession{WordsRead: 100}); err != nil {
		t.Fatalf("SaveSession: %v", err)
	}

	// a save lands between the read's record snapshot and its cache fill
	store.mu.Lock()
	store.onGet = func() {
		if err := svc.SaveSession(ctx, "s1", types.ReadingSession{WordsRead: 50}); err != nil {
			t.Errorf("interleaved SaveSession: %v", err)
		}
	}
	store.mu.Unlock()

	report, err := svc.GetProgress(ctx, "s1")
	if err != nil {
		t.Fatalf("GetProgress: %v", err)
	}
	if report.TotalWordsRead != 100 {
		t.Fatalf("total_words_read=%d, want the pre-save 100 for the overlapped read", report.TotalWordsRead)
	}
	if _, ok := cache.cached("s1"); ok {
		t.Fatalf("stale report re-cached after the interleaved save invalidated it")
	}

	fresh, err := svc.GetProgress(ctx, "s1")
	if err != nil {
		t.Fatalf("GetProgress: %v", err)
	}
	if fresh.TotalWordsRead != 150 {
		t.Fatalf("total_words_read=%d, want 150 on the next read", fresh.TotalWordsRead)
	}
}

func TestGetProgressUnknownStudent(t *testing.T) {
	store := newFakeRecordStore()
	svc := NewProgressService(testLogger(t), store, nil)

	_, err := svc.GetProgress(context.Background(), "nobody")
	if !errors.Is(err, repos.ErrNotFound) {
		t.Fatalf("err=%v, want repos.ErrNotFound", err)
	}
}

func TestSaveSessionSurfacesStoreError(t *testing.T) {
	store := newFakeRecordStore()
	store.putErr = errors.New("disk full")
	svc := NewProgressService(testLogger(t), store, nil)

	err := svc.SaveSession(context.Background(), "s1", types.ReadingSession{WordsRead: 10})
	if err == nil || !errors.Is(err, store.putErr) {
		t.Fatalf("err=%v, want wrapped store error", err)
	}
	if len(store.records) != 0 {
		t.Fatalf("record persisted despite put failure")
	}
}
