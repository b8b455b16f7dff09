// Package progress derives completion rollups from a khatm's sessions.
// Progress is always computed from the session rows at read time; it is
// never stored, so it cannot drift from the underlying states.
package progress

import "github.com/example/khatm/pkg/models"

// Summary is the derived progress view over one khatm's sessions.
type Summary struct {
	TotalSessions      int            `json:"total_sessions"`
	CompletedSessions  int            `json:"completed_sessions"`
	RemainingSessions  int            `json:"remaining_sessions"`
	TotalVerses        int            `json:"total_verses"`
	CompletedVerses    int            `json:"completed_verses"`
	RemainingVerses    int            `json:"remaining_verses"`
	SessionProgressPct float64        `json:"session_progress_pct"`
	VersesProgressPct  float64        `json:"verses_progress_pct"`
	StatusCounts       map[string]int `json:"status_counts"`
}

// Aggregate computes the summary for a session list. Only completed
// sessions contribute verses: a skipped session keeps whatever partial
// verses-read count was recorded for audit, but counts as zero here.
func Aggregate(sessions []models.KhatmSession) Summary {
	s := Summary{
		StatusCounts: map[string]int{
			models.SessionScheduled: 0,
			models.SessionCompleted: 0,
			models.SessionSkipped:   0,
			models.SessionMissed:    0,
		},
	}

	for _, sess := range sessions {
		s.TotalSessions++
		s.TotalVerses += sess.VerseCount
		s.StatusCounts[sess.Status]++
		if sess.Status == models.SessionCompleted {
			s.CompletedSessions++
			s.CompletedVerses += sess.VersesReadCount
		}
	}

	s.RemainingSessions = s.TotalSessions - s.CompletedSessions
	s.RemainingVerses = s.TotalVerses - s.CompletedVerses
	if s.TotalSessions > 0 {
		s.SessionProgressPct = float64(s.CompletedSessions) / float64(s.TotalSessions) * 100
	}
	if s.TotalVerses > 0 {
		s.VersesProgressPct = float64(s.CompletedVerses) / float64(s.TotalVerses) * 100
	}
	return s
}

// AllTerminal reports whether every session has left the scheduled state.
// An empty list is not considered terminal.
func AllTerminal(sessions []models.KhatmSession) bool {
	if len(sessions) == 0 {
		return false
	}
	for _, sess := range sessions {
		if sess.Status == models.SessionScheduled {
			return false
		}
	}
	return true
}
