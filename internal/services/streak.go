package services

import (
	"sort"
	"time"

	"github.com/dyslexifriend/backend/internal/types"
)

// CalculateStreak counts consecutive calendar days with at least one session,
// ending at the most recent recorded day. The run is anchored to the latest
// day in history, not to today: a student whose last session was yesterday
// still shows the streak that ended yesterday.
func CalculateStreak(sessions []types.ReadingSession) int {
	if len(sessions) == 0 {
		return 0
	}

	seen := map[string]time.Time{}
	for _, s := range sessions {
		y, m, d := s.Timestamp.Date()
		day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		seen[day.Format("2006-01-02")] = day
	}

	days := make([]time.Time, 0, len(seen))
	for _, day := range seen {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].After(days[j]) })

	streak := 1
	for i := 0; i < len(days)-1; i++ {
		gap := int(days[i].Sub(days[i+1]).Hours() / 24)
		if gap != 1 {
			break
		}
		streak++
	}
	return streak
}
