package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/example/khatm/pkg/models"
)

const sessionColumns = `id, khatm_id, session_number, scheduled_date, scheduled_time,
	start_verse, end_verse, start_surah, start_verse_in_surah,
	end_surah, end_verse_in_surah, verse_count, status,
	verses_read_count, current_verse, completed_at, skipped_at, skipped_reason, created_at`

// SessionRepository handles database operations for khatm sessions
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository creates a new repository instance
func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// GetByKhatm returns all sessions of a khatm ordered by session number.
func (r *SessionRepository) GetByKhatm(ctx context.Context, khatmID int64) ([]models.KhatmSession, error) {
	var sessions []models.KhatmSession
	query := r.db.Rebind("SELECT " + sessionColumns + " FROM khatm_sessions WHERE khatm_id = ? ORDER BY session_number")
	if err := r.db.SelectContext(ctx, &sessions, query, khatmID); err != nil {
		return nil, fmt.Errorf("failed to get sessions: %v", err)
	}
	return sessions, nil
}

// GetByID returns one session of a khatm. The error wraps sql.ErrNoRows
// when no such session exists under that khatm.
func (r *SessionRepository) GetByID(ctx context.Context, khatmID, sessionID int64) (*models.KhatmSession, error) {
	var s models.KhatmSession
	query := r.db.Rebind("SELECT " + sessionColumns + " FROM khatm_sessions WHERE id = ? AND khatm_id = ?")
	if err := r.db.GetContext(ctx, &s, query, sessionID, khatmID); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("session %d of khatm %d: %w", sessionID, khatmID, sql.ErrNoRows)
		}
		return nil, fmt.Errorf("failed to get session: %v", err)
	}
	return &s, nil
}

// UpdateState persists a session's status fields after a transition.
func (r *SessionRepository) UpdateState(ctx context.Context, s *models.KhatmSession) error {
	query := r.db.Rebind(`
		UPDATE khatm_sessions SET
			status = ?, verses_read_count = ?, current_verse = ?,
			completed_at = ?, skipped_at = ?, skipped_reason = ?
		WHERE id = ? AND khatm_id = ?
	`)
	result, err := r.db.ExecContext(ctx, query,
		s.Status, s.VersesReadCount, s.CurrentVerse,
		s.CompletedAt, s.SkippedAt, s.SkippedReason,
		s.ID, s.KhatmID,
	)
	if err != nil {
		return fmt.Errorf("failed to update session: %v", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %v", err)
	}
	if rows == 0 {
		return fmt.Errorf("session %d of khatm %d: %w", s.ID, s.KhatmID, sql.ErrNoRows)
	}
	return nil
}

// ListScheduledActive returns every still-scheduled session belonging to
// an active khatm, across all khatms. Used by the missed-session sweep.
func (r *SessionRepository) ListScheduledActive(ctx context.Context) ([]models.KhatmSession, error) {
	var sessions []models.KhatmSession
	query := `
		SELECT s.id, s.khatm_id, s.session_number, s.scheduled_date, s.scheduled_time,
			s.start_verse, s.end_verse, s.start_surah, s.start_verse_in_surah,
			s.end_surah, s.end_verse_in_surah, s.verse_count, s.status,
			s.verses_read_count, s.current_verse, s.completed_at, s.skipped_at, s.skipped_reason, s.created_at
		FROM khatm_sessions s
		JOIN khatms k ON k.id = s.khatm_id
		WHERE s.status = 'scheduled' AND k.is_active = true
		ORDER BY s.khatm_id, s.session_number
	`
	if err := r.db.SelectContext(ctx, &sessions, query); err != nil {
		return nil, fmt.Errorf("failed to list scheduled sessions: %v", err)
	}
	return sessions, nil
}
