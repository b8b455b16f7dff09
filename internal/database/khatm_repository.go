package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/example/khatm/pkg/models"
)

const khatmColumns = `id, title, description, start_date, end_date, frequency_type,
	reading_days, reading_time, timezone, reading_mode, enable_audio_break,
	total_sessions, total_verses, is_active, is_completed, created_at, updated_at`

// KhatmRepository handles database operations for khatms
type KhatmRepository struct {
	db *sqlx.DB
}

// NewKhatmRepository creates a new repository instance
func NewKhatmRepository(db *sqlx.DB) *KhatmRepository {
	return &KhatmRepository{db: db}
}

// CreateWithSessions inserts a khatm and all of its sessions in a single
// transaction, so a khatm is never observable without its full session
// list. Session KhatmID and IDs are filled in on success.
func (r *KhatmRepository) CreateWithSessions(ctx context.Context, k *models.Khatm, sessions []models.KhatmSession) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	k.CreatedAt = now
	k.UpdatedAt = now

	readingDays, err := marshalReadingDays(k.ReadingDays)
	if err != nil {
		return err
	}

	insertKhatm := r.db.Rebind(`
		INSERT INTO khatms (
			title, description, start_date, end_date, frequency_type,
			reading_days, reading_time, timezone, reading_mode, enable_audio_break,
			total_sessions, total_verses, is_active, is_completed, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	args := []interface{}{
		k.Title, k.Description, k.StartDate, k.EndDate, k.FrequencyType,
		readingDays, k.ReadingTime, k.Timezone, k.ReadingMode, k.EnableAudioBreak,
		k.TotalSessions, k.TotalVerses, k.IsActive, k.IsCompleted, k.CreatedAt, k.UpdatedAt,
	}

	if r.db.DriverName() == "postgres" {
		err = tx.QueryRowContext(ctx, insertKhatm+" RETURNING id", args...).Scan(&k.ID)
		if err != nil {
			return fmt.Errorf("failed to create khatm: %v", err)
		}
	} else {
		result, err := tx.ExecContext(ctx, insertKhatm, args...)
		if err != nil {
			return fmt.Errorf("failed to create khatm: %v", err)
		}
		k.ID, err = result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get khatm ID: %v", err)
		}
	}

	insertSession := r.db.Rebind(`
		INSERT INTO khatm_sessions (
			khatm_id, session_number, scheduled_date, scheduled_time,
			start_verse, end_verse, start_surah, start_verse_in_surah,
			end_surah, end_verse_in_surah, verse_count, status,
			verses_read_count, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	for i := range sessions {
		s := &sessions[i]
		s.KhatmID = k.ID
		s.CreatedAt = now

		sessionArgs := []interface{}{
			s.KhatmID, s.SessionNumber, s.ScheduledDate, s.ScheduledTime,
			s.StartVerse, s.EndVerse, s.StartSurah, s.StartVerseInSurah,
			s.EndSurah, s.EndVerseInSurah, s.VerseCount, s.Status,
			s.VersesReadCount, s.CreatedAt,
		}

		if r.db.DriverName() == "postgres" {
			err = tx.QueryRowContext(ctx, insertSession+" RETURNING id", sessionArgs...).Scan(&s.ID)
			if err != nil {
				return fmt.Errorf("failed to create session %d: %v", s.SessionNumber, err)
			}
		} else {
			result, err := tx.ExecContext(ctx, insertSession, sessionArgs...)
			if err != nil {
				return fmt.Errorf("failed to create session %d: %v", s.SessionNumber, err)
			}
			s.ID, err = result.LastInsertId()
			if err != nil {
				return fmt.Errorf("failed to get session ID: %v", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit khatm creation: %v", err)
	}
	return nil
}

// GetByID returns a khatm by ID. The error wraps sql.ErrNoRows when the
// khatm does not exist.
func (r *KhatmRepository) GetByID(ctx context.Context, id int64) (*models.Khatm, error) {
	query := r.db.Rebind("SELECT " + khatmColumns + " FROM khatms WHERE id = ?")
	return r.scanKhatm(r.db.QueryRowContext(ctx, query, id))
}

// GetAll returns khatms ordered newest first, optionally only active ones.
func (r *KhatmRepository) GetAll(ctx context.Context, activeOnly bool) ([]models.Khatm, error) {
	query := "SELECT " + khatmColumns + " FROM khatms"
	if activeOnly {
		query += " WHERE is_active = true"
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list khatms: %v", err)
	}
	defer rows.Close()

	var khatms []models.Khatm
	for rows.Next() {
		k, err := r.scanKhatm(rows)
		if err != nil {
			return nil, err
		}
		khatms = append(khatms, *k)
	}
	return khatms, rows.Err()
}

// Update modifies a khatm's mutable fields. Session ranges are never
// touched here.
func (r *KhatmRepository) Update(ctx context.Context, k *models.Khatm) error {
	k.UpdatedAt = time.Now().UTC()

	query := r.db.Rebind(`
		UPDATE khatms SET
			title = ?, description = ?, reading_time = ?, reading_mode = ?,
			enable_audio_break = ?, is_active = ?, is_completed = ?, updated_at = ?
		WHERE id = ?
	`)
	result, err := r.db.ExecContext(ctx, query,
		k.Title, k.Description, k.ReadingTime, k.ReadingMode,
		k.EnableAudioBreak, k.IsActive, k.IsCompleted, k.UpdatedAt, k.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update khatm: %v", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %v", err)
	}
	if rows == 0 {
		return fmt.Errorf("khatm %d: %w", k.ID, sql.ErrNoRows)
	}
	return nil
}

// Delete removes a khatm and all of its sessions in one transaction.
func (r *KhatmRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, r.db.Rebind("DELETE FROM khatm_sessions WHERE khatm_id = ?"), id); err != nil {
		return fmt.Errorf("failed to delete sessions: %v", err)
	}

	result, err := tx.ExecContext(ctx, r.db.Rebind("DELETE FROM khatms WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("failed to delete khatm: %v", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %v", err)
	}
	if rows == 0 {
		return fmt.Errorf("khatm %d: %w", id, sql.ErrNoRows)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit khatm deletion: %v", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *KhatmRepository) scanKhatm(row rowScanner) (*models.Khatm, error) {
	var k models.Khatm
	var readingDays sql.NullString

	err := row.Scan(
		&k.ID, &k.Title, &k.Description, &k.StartDate, &k.EndDate, &k.FrequencyType,
		&readingDays, &k.ReadingTime, &k.Timezone, &k.ReadingMode, &k.EnableAudioBreak,
		&k.TotalSessions, &k.TotalVerses, &k.IsActive, &k.IsCompleted, &k.CreatedAt, &k.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("khatm: %w", sql.ErrNoRows)
		}
		return nil, fmt.Errorf("failed to scan khatm: %v", err)
	}

	if readingDays.Valid && readingDays.String != "" {
		if err := json.Unmarshal([]byte(readingDays.String), &k.ReadingDays); err != nil {
			return nil, fmt.Errorf("failed to parse reading days: %v", err)
		}
	}
	return &k, nil
}

func marshalReadingDays(days []string) (interface{}, error) {
	if len(days) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(days)
	if err != nil {
		return nil, fmt.Errorf("failed to encode reading days: %v", err)
	}
	return string(data), nil
}
