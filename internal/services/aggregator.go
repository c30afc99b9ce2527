package services

import (
	"github.com/dyslexifriend/backend/internal/types"
)

type badgeRule struct {
	name      string
	threshold int
	metric    func(report *types.ProgressReport) int
}

var badgeRules = []badgeRule{
	{"📚 Bookworm", 1000, func(r *types.ProgressReport) int { return r.TotalWordsRead }},
	{"🏆 Reading Champion", 5000, func(r *types.ProgressReport) int { return r.TotalWordsRead }},
	{"🔥 Week Warrior", 7, func(r *types.ProgressReport) int { return r.StreakDays }},
	{"⭐ Monthly Master", 30, func(r *types.ProgressReport) int { return r.StreakDays }},
	{"🎯 Consistent Learner", 10, func(r *types.ProgressReport) int { return len(r.Sessions) }},
	{"💎 Dedication Diamond", 50, func(r *types.ProgressReport) int { return len(r.Sessions) }},
}

// AggregateStats derives statistics from a progress report. It is a pure
// function of the report: nil when there are no sessions, identical output on
// identical input. The input is never mutated.
func AggregateStats(report *types.ProgressReport) *types.ProgressStats {
	if report == nil || len(report.Sessions) == 0 {
		return nil
	}
	sessions := report.Sessions

	recent := lastN(sessions, 7)

	improvement := 0.0
	if len(sessions) >= 2 {
		improvement = meanAccuracy(lastN(sessions, 5)) - meanAccuracy(firstN(sessions, 5))
	}

	badges := []string{}
	for _, rule := range badgeRules {
		if rule.metric(report) >= rule.threshold {
			badges = append(badges, rule.name)
		}
	}

	return &types.ProgressStats{
		AvgAccuracy:        roundTo2(meanAccuracy(recent)),
		ImprovementPercent: roundTo2(improvement),
		SessionsCompleted:  len(sessions),
		FavoriteTopic:      favoriteTopic(sessions),
		BadgesEarned:       badges,
	}
}

func firstN(sessions []types.ReadingSession, n int) []types.ReadingSession {
	if len(sessions) < n {
		return sessions
	}
	return sessions[:n]
}

func lastN(sessions []types.ReadingSession, n int) []types.ReadingSession {
	if len(sessions) < n {
		return sessions
	}
	return sessions[len(sessions)-n:]
}

func meanAccuracy(sessions []types.ReadingSession) float64 {
	if len(sessions) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range sessions {
		sum += s.Accuracy
	}
	return sum / float64(len(sessions))
}

// favoriteTopic is a stable max-by-count: on equal counts the topic
// encountered first wins. A session without a topic counts as "general".
func favoriteTopic(sessions []types.ReadingSession) string {
	counts := map[string]int{}
	order := []string{}
	for _, s := range sessions {
		topic := s.Topic
		if topic == "" {
			topic = "general"
		}
		if _, ok := counts[topic]; !ok {
			order = append(order, topic)
		}
		counts[topic]++
	}

	best := "general"
	bestCount := 0
	for _, topic := range order {
		if counts[topic] > bestCount {
			best = topic
			bestCount = counts[topic]
		}
	}
	return best
}
