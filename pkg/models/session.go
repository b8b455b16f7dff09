package models

import "time"

// Session status values. A session starts out scheduled and moves to exactly
// one of the terminal states.
const (
	SessionScheduled = "scheduled"
	SessionCompleted = "completed"
	SessionSkipped   = "skipped"
	SessionMissed    = "missed"
)

// KhatmSession is one planned reading sitting, covering a contiguous range
// of verses. Sessions are owned by their parent Khatm and partition the
// full text with no gaps or overlaps.
type KhatmSession struct {
	ID                int64      `json:"id" db:"id"`
	KhatmID           int64      `json:"khatm_id" db:"khatm_id"`
	SessionNumber     int        `json:"session_number" db:"session_number"` // 1-based, dense
	ScheduledDate     time.Time  `json:"scheduled_date" db:"scheduled_date"`
	ScheduledTime     string     `json:"scheduled_time" db:"scheduled_time"` // copied from the khatm at creation
	StartVerse        int        `json:"start_verse" db:"start_verse"`       // global verse numbers
	EndVerse          int        `json:"end_verse" db:"end_verse"`
	StartSurah        int        `json:"start_surah" db:"start_surah"`
	StartVerseInSurah int        `json:"start_verse_in_surah" db:"start_verse_in_surah"`
	EndSurah          int        `json:"end_surah" db:"end_surah"`
	EndVerseInSurah   int        `json:"end_verse_in_surah" db:"end_verse_in_surah"`
	VerseCount        int        `json:"verse_count" db:"verse_count"`
	Status            string     `json:"status" db:"status"`
	VersesReadCount   int        `json:"verses_read_count" db:"verses_read_count"`
	CurrentVerse      *int       `json:"current_verse" db:"current_verse"` // last verse the reader was on, for resume
	CompletedAt       *time.Time `json:"completed_at" db:"completed_at"`
	SkippedAt         *time.Time `json:"skipped_at" db:"skipped_at"`
	SkippedReason     *string    `json:"skipped_reason" db:"skipped_reason"`
	CreatedAt         time.Time  `json:"created_at" db:"created_at"`
}

// IsTerminal reports whether the session has left the scheduled state.
func (s *KhatmSession) IsTerminal() bool {
	return s.Status != SessionScheduled
}

// TodaySessionResult is the tagged result for the today-session lookup:
// either a session is scheduled for the requested day or none is.
type TodaySessionResult struct {
	Found   bool          `json:"found"`
	Session *KhatmSession `json:"session,omitempty"`
}
