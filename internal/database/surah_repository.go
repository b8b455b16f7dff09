package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/example/khatm/pkg/models"
)

// SurahRepository handles database operations for the surah catalogue
type SurahRepository struct {
	db *sqlx.DB
}

// NewSurahRepository creates a new repository instance
func NewSurahRepository(db *sqlx.DB) *SurahRepository {
	return &SurahRepository{db: db}
}

// GetAll returns all surahs ordered by number.
func (r *SurahRepository) GetAll(ctx context.Context) ([]models.Surah, error) {
	var surahs []models.Surah
	query := `
		SELECT id, number, name_arabic, name_english, name_transliteration,
			verse_count, revelation_type, created_at
		FROM surahs ORDER BY number
	`
	if err := r.db.SelectContext(ctx, &surahs, query); err != nil {
		return nil, fmt.Errorf("failed to get surahs: %v", err)
	}
	return surahs, nil
}

// GetByNumber returns one surah by its 1..114 number.
func (r *SurahRepository) GetByNumber(ctx context.Context, number int) (*models.Surah, error) {
	var s models.Surah
	query := r.db.Rebind(`
		SELECT id, number, name_arabic, name_english, name_transliteration,
			verse_count, revelation_type, created_at
		FROM surahs WHERE number = ?
	`)
	if err := r.db.GetContext(ctx, &s, query, number); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("surah %d: %w", number, sql.ErrNoRows)
		}
		return nil, fmt.Errorf("failed to get surah: %v", err)
	}
	return &s, nil
}

// Upsert creates the surah or updates it in place, keyed by number.
func (r *SurahRepository) Upsert(ctx context.Context, s *models.Surah) (created bool, err error) {
	var existingID int64
	query := r.db.Rebind("SELECT id FROM surahs WHERE number = ?")
	err = r.db.QueryRowContext(ctx, query, s.Number).Scan(&existingID)

	if err == nil {
		s.ID = existingID
		update := r.db.Rebind(`
			UPDATE surahs SET
				name_arabic = ?, name_english = ?, name_transliteration = ?,
				verse_count = ?, revelation_type = ?
			WHERE id = ?
		`)
		if _, err := r.db.ExecContext(ctx, update,
			s.NameArabic, s.NameEnglish, s.NameTransliteration,
			s.VerseCount, s.RevelationType, s.ID,
		); err != nil {
			return false, fmt.Errorf("failed to update surah %d: %v", s.Number, err)
		}
		return false, nil
	}
	if err != sql.ErrNoRows {
		return false, fmt.Errorf("failed to look up surah %d: %v", s.Number, err)
	}

	insert := r.db.Rebind(`
		INSERT INTO surahs (number, name_arabic, name_english, name_transliteration, verse_count, revelation_type)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if r.db.DriverName() == "postgres" {
		err = r.db.QueryRowContext(ctx, insert+" RETURNING id",
			s.Number, s.NameArabic, s.NameEnglish, s.NameTransliteration, s.VerseCount, s.RevelationType,
		).Scan(&s.ID)
		if err != nil {
			return false, fmt.Errorf("failed to create surah %d: %v", s.Number, err)
		}
		return true, nil
	}

	result, err := r.db.ExecContext(ctx, insert,
		s.Number, s.NameArabic, s.NameEnglish, s.NameTransliteration, s.VerseCount, s.RevelationType,
	)
	if err != nil {
		return false, fmt.Errorf("failed to create surah %d: %v", s.Number, err)
	}
	s.ID, err = result.LastInsertId()
	if err != nil {
		return false, fmt.Errorf("failed to get surah ID: %v", err)
	}
	return true, nil
}

// Count returns the number of surahs in the catalogue.
func (r *SurahRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM surahs"); err != nil {
		return 0, fmt.Errorf("failed to count surahs: %v", err)
	}
	return n, nil
}
