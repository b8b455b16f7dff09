package models

import "time"

// VerseRef identifies a single verse by its 1-based global number across
// the whole text, together with its surah and position within the surah.
type VerseRef struct {
	GlobalNumber int `json:"global_number" db:"global_number"` // 1..6236
	SurahNumber  int `json:"surah_number" db:"surah_number"`   // 1..114
	VerseInSurah int `json:"verse_in_surah" db:"verse_in_surah"`
}

// Surah represents one chapter of the Quran
type Surah struct {
	ID                  int64     `json:"id" db:"id"`
	Number              int       `json:"number" db:"number"`
	NameArabic          string    `json:"name_arabic" db:"name_arabic"`
	NameEnglish         string    `json:"name_english" db:"name_english"`
	NameTransliteration string    `json:"name_transliteration" db:"name_transliteration"`
	VerseCount          int       `json:"verse_count" db:"verse_count"`
	RevelationType      string    `json:"revelation_type" db:"revelation_type"` // Meccan or Medinan
	CreatedAt           time.Time `json:"created_at" db:"created_at"`
}
