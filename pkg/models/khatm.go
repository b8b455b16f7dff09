package models

import "time"

// Frequency types for a Khatm schedule
const (
	FrequencyDaily  = "daily"
	FrequencyWeekly = "weekly"
	FrequencyCustom = "custom"
)

// Reading modes
const (
	ReadingModeReadOnly   = "read_only"
	ReadingModeReadListen = "read_listen"
)

// Khatm represents a scheduled complete read-through of the Quran
type Khatm struct {
	ID               int64     `json:"id" db:"id"`
	Title            string    `json:"title" db:"title"`
	Description      string    `json:"description" db:"description"`
	StartDate        time.Time `json:"start_date" db:"start_date"`
	EndDate          time.Time `json:"end_date" db:"end_date"` // inclusive
	FrequencyType    string    `json:"frequency_type" db:"frequency_type"`
	ReadingDays      []string  `json:"reading_days" db:"reading_days"` // day names for weekly/custom, e.g. ["mon", "thu"]
	ReadingTime      string    `json:"reading_time" db:"reading_time"` // "19:00" format, advisory only
	Timezone         string    `json:"timezone" db:"timezone"`
	ReadingMode      string    `json:"reading_mode" db:"reading_mode"`
	EnableAudioBreak bool      `json:"enable_audio_break" db:"enable_audio_break"`
	TotalSessions    int       `json:"total_sessions" db:"total_sessions"`
	TotalVerses      int       `json:"total_verses" db:"total_verses"`
	IsActive         bool      `json:"is_active" db:"is_active"`
	IsCompleted      bool      `json:"is_completed" db:"is_completed"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}
