// Package khatm owns the lifecycle of reading schedules and their
// sessions: creation through the planner, per-session status transitions
// and the derived progress view.
package khatm

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/example/khatm/internal/database"
	"github.com/example/khatm/internal/planner"
	"github.com/example/khatm/internal/progress"
	"github.com/example/khatm/pkg/models"
)

// Service coordinates planning, persistence and session state transitions.
type Service struct {
	khatms   *database.KhatmRepository
	sessions *database.SessionRepository
	index    planner.VerseIndex
	locks    *scheduleLocks
	now      func() time.Time
}

// NewService creates a service over the given database and verse index.
func NewService(db *sqlx.DB, index planner.VerseIndex) *Service {
	return &Service{
		khatms:   database.NewKhatmRepository(db),
		sessions: database.NewSessionRepository(db),
		index:    index,
		locks:    newScheduleLocks(),
		now:      time.Now,
	}
}

// CreateRequest carries everything needed to create a khatm.
type CreateRequest struct {
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	StartDate        time.Time `json:"start_date"`
	EndDate          time.Time `json:"end_date"`
	FrequencyType    string    `json:"frequency_type"`
	ReadingDays      []string  `json:"reading_days"`
	ReadingTime      string    `json:"reading_time"`
	Timezone         string    `json:"timezone"`
	ReadingMode      string    `json:"reading_mode"`
	EnableAudioBreak bool      `json:"enable_audio_break"`
}

// UpdateRequest is a partial update of a khatm's settings. Nil fields are
// left unchanged. Session verse ranges are never affected.
type UpdateRequest struct {
	Title            *string `json:"title"`
	Description      *string `json:"description"`
	ReadingTime      *string `json:"reading_time"`
	ReadingMode      *string `json:"reading_mode"`
	EnableAudioBreak *bool   `json:"enable_audio_break"`
	IsActive         *bool   `json:"is_active"`
}

// Overview pairs a khatm with its derived progress for list views.
type Overview struct {
	Khatm    models.Khatm     `json:"khatm"`
	Progress progress.Summary `json:"progress"`
}

// Create validates the request, plans the full session list and persists
// khatm and sessions atomically.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*models.Khatm, []models.KhatmSession, error) {
	if req.Title == "" {
		return nil, nil, fmt.Errorf("%w: title is required", ErrInvalidRequest)
	}
	if _, err := time.Parse("15:04", req.ReadingTime); err != nil {
		return nil, nil, fmt.Errorf("%w: reading time %q is not in HH:MM format", ErrInvalidRequest, req.ReadingTime)
	}

	mode := req.ReadingMode
	if mode == "" {
		mode = models.ReadingModeReadListen
	}
	if mode != models.ReadingModeReadOnly && mode != models.ReadingModeReadListen {
		return nil, nil, fmt.Errorf("%w: unknown reading mode %q", ErrInvalidRequest, mode)
	}

	tz := req.Timezone
	if tz == "" {
		tz = "UTC"
	}

	k := &models.Khatm{
		Title:            req.Title,
		Description:      req.Description,
		StartDate:        req.StartDate,
		EndDate:          req.EndDate,
		FrequencyType:    req.FrequencyType,
		ReadingDays:      req.ReadingDays,
		ReadingTime:      req.ReadingTime,
		Timezone:         tz,
		ReadingMode:      mode,
		EnableAudioBreak: req.EnableAudioBreak,
		IsActive:         true,
	}

	sessions, err := planner.Plan(k, s.index)
	if err != nil {
		return nil, nil, err
	}

	k.TotalSessions = len(sessions)
	for _, sess := range sessions {
		k.TotalVerses += sess.VerseCount
	}

	if err := s.khatms.CreateWithSessions(ctx, k, sessions); err != nil {
		return nil, nil, err
	}
	return k, sessions, nil
}

// Get returns a khatm and its full ordered session list.
func (s *Service) Get(ctx context.Context, id int64) (*models.Khatm, []models.KhatmSession, error) {
	k, err := s.khatms.GetByID(ctx, id)
	if err != nil {
		return nil, nil, mapNotFound(err)
	}
	sessions, err := s.sessions.GetByKhatm(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return k, sessions, nil
}

// List returns khatms with their derived progress, newest first.
func (s *Service) List(ctx context.Context, activeOnly bool) ([]Overview, error) {
	khatms, err := s.khatms.GetAll(ctx, activeOnly)
	if err != nil {
		return nil, err
	}

	overviews := make([]Overview, 0, len(khatms))
	for _, k := range khatms {
		sessions, err := s.sessions.GetByKhatm(ctx, k.ID)
		if err != nil {
			return nil, err
		}
		overviews = append(overviews, Overview{Khatm: k, Progress: progress.Aggregate(sessions)})
	}
	return overviews, nil
}

// Progress recomputes the progress view from the session rows.
func (s *Service) Progress(ctx context.Context, id int64) (progress.Summary, error) {
	if _, err := s.khatms.GetByID(ctx, id); err != nil {
		return progress.Summary{}, mapNotFound(err)
	}
	sessions, err := s.sessions.GetByKhatm(ctx, id)
	if err != nil {
		return progress.Summary{}, err
	}
	return progress.Aggregate(sessions), nil
}

// TodaySession reports whether a session is scheduled on the given day.
func (s *Service) TodaySession(ctx context.Context, khatmID int64, day time.Time) (models.TodaySessionResult, error) {
	if _, err := s.khatms.GetByID(ctx, khatmID); err != nil {
		return models.TodaySessionResult{}, mapNotFound(err)
	}
	sessions, err := s.sessions.GetByKhatm(ctx, khatmID)
	if err != nil {
		return models.TodaySessionResult{}, err
	}

	for i := range sessions {
		if sameDay(sessions[i].ScheduledDate, day) {
			return models.TodaySessionResult{Found: true, Session: &sessions[i]}, nil
		}
	}
	return models.TodaySessionResult{Found: false}, nil
}

// GetSession returns one session of a khatm.
func (s *Service) GetSession(ctx context.Context, khatmID, sessionID int64) (*models.KhatmSession, error) {
	sess, err := s.sessions.GetByID(ctx, khatmID, sessionID)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return sess, nil
}

// CompleteSession marks a scheduled session completed. The verses-read
// count is clamped to the session's verse count; lastVerse records the
// resume position.
func (s *Service) CompleteSession(ctx context.Context, khatmID, sessionID int64, versesRead int, lastVerse *int) (*models.KhatmSession, error) {
	mu := s.locks.get(khatmID)
	mu.Lock()
	defer mu.Unlock()

	k, err := s.khatms.GetByID(ctx, khatmID)
	if err != nil {
		return nil, mapNotFound(err)
	}
	sess, err := s.sessions.GetByID(ctx, khatmID, sessionID)
	if err != nil {
		return nil, mapNotFound(err)
	}
	if sess.Status != models.SessionScheduled {
		return nil, fmt.Errorf("%w: session %d is already %s", ErrInvalidTransition, sess.SessionNumber, sess.Status)
	}

	if versesRead < 0 {
		versesRead = 0
	}
	if versesRead > sess.VerseCount {
		versesRead = sess.VerseCount
	}

	now := s.now().UTC()
	sess.Status = models.SessionCompleted
	sess.VersesReadCount = versesRead
	sess.CurrentVerse = lastVerse
	sess.CompletedAt = &now

	if err := s.sessions.UpdateState(ctx, sess); err != nil {
		return nil, err
	}
	if err := s.finalizeIfDone(ctx, k); err != nil {
		return nil, err
	}
	return sess, nil
}

// SkipSession marks a scheduled session skipped. Any partially recorded
// verses-read count is kept for audit but contributes nothing to progress.
func (s *Service) SkipSession(ctx context.Context, khatmID, sessionID int64, reason string) (*models.KhatmSession, error) {
	mu := s.locks.get(khatmID)
	mu.Lock()
	defer mu.Unlock()

	k, err := s.khatms.GetByID(ctx, khatmID)
	if err != nil {
		return nil, mapNotFound(err)
	}
	sess, err := s.sessions.GetByID(ctx, khatmID, sessionID)
	if err != nil {
		return nil, mapNotFound(err)
	}
	if sess.Status != models.SessionScheduled {
		return nil, fmt.Errorf("%w: session %d is already %s", ErrInvalidTransition, sess.SessionNumber, sess.Status)
	}

	now := s.now().UTC()
	sess.Status = models.SessionSkipped
	sess.SkippedAt = &now
	if reason != "" {
		sess.SkippedReason = &reason
	}

	if err := s.sessions.UpdateState(ctx, sess); err != nil {
		return nil, err
	}
	if err := s.finalizeIfDone(ctx, k); err != nil {
		return nil, err
	}
	return sess, nil
}

// ResumeSession returns the reader's last position in a session, resolved
// to a full verse reference, or nil if no position was recorded. Read-only.
func (s *Service) ResumeSession(ctx context.Context, khatmID, sessionID int64) (*models.VerseRef, error) {
	sess, err := s.sessions.GetByID(ctx, khatmID, sessionID)
	if err != nil {
		return nil, mapNotFound(err)
	}
	if sess.CurrentVerse == nil {
		return nil, nil
	}
	ref, err := s.index.VerseAt(*sess.CurrentVerse)
	if err != nil {
		return nil, err
	}
	return &ref, nil
}

// MarkMissed transitions every still-scheduled session of an active khatm
// whose date has fully elapsed to missed, and returns how many sessions
// were transitioned. Safe to run repeatedly.
func (s *Service) MarkMissed(ctx context.Context) (int, error) {
	scheduled, err := s.sessions.ListScheduledActive(ctx)
	if err != nil {
		return 0, err
	}

	today := dateOnly(s.now().UTC())
	elapsed := make(map[int64][]int64) // khatm ID -> session IDs
	for _, sess := range scheduled {
		if dateOnly(sess.ScheduledDate).Before(today) {
			elapsed[sess.KhatmID] = append(elapsed[sess.KhatmID], sess.ID)
		}
	}

	marked := 0
	for khatmID, sessionIDs := range elapsed {
		n, err := s.markMissedForKhatm(ctx, khatmID, sessionIDs)
		if err != nil {
			return marked, err
		}
		marked += n
	}
	return marked, nil
}

func (s *Service) markMissedForKhatm(ctx context.Context, khatmID int64, sessionIDs []int64) (int, error) {
	mu := s.locks.get(khatmID)
	mu.Lock()
	defer mu.Unlock()

	k, err := s.khatms.GetByID(ctx, khatmID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Deleted between listing and locking.
			return 0, nil
		}
		return 0, err
	}

	marked := 0
	for _, id := range sessionIDs {
		sess, err := s.sessions.GetByID(ctx, khatmID, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				continue
			}
			return marked, err
		}
		// The user may have completed or skipped it since the listing.
		if sess.Status != models.SessionScheduled {
			continue
		}

		sess.Status = models.SessionMissed
		if err := s.sessions.UpdateState(ctx, sess); err != nil {
			return marked, err
		}
		marked++
	}

	if err := s.finalizeIfDone(ctx, k); err != nil {
		return marked, err
	}
	return marked, nil
}

// Update applies a partial settings update.
func (s *Service) Update(ctx context.Context, id int64, req UpdateRequest) (*models.Khatm, error) {
	mu := s.locks.get(id)
	mu.Lock()
	defer mu.Unlock()

	k, err := s.khatms.GetByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err)
	}

	if req.Title != nil {
		if *req.Title == "" {
			return nil, fmt.Errorf("%w: title cannot be empty", ErrInvalidRequest)
		}
		k.Title = *req.Title
	}
	if req.Description != nil {
		k.Description = *req.Description
	}
	if req.ReadingTime != nil {
		if _, err := time.Parse("15:04", *req.ReadingTime); err != nil {
			return nil, fmt.Errorf("%w: reading time %q is not in HH:MM format", ErrInvalidRequest, *req.ReadingTime)
		}
		k.ReadingTime = *req.ReadingTime
	}
	if req.ReadingMode != nil {
		if *req.ReadingMode != models.ReadingModeReadOnly && *req.ReadingMode != models.ReadingModeReadListen {
			return nil, fmt.Errorf("%w: unknown reading mode %q", ErrInvalidRequest, *req.ReadingMode)
		}
		k.ReadingMode = *req.ReadingMode
	}
	if req.EnableAudioBreak != nil {
		k.EnableAudioBreak = *req.EnableAudioBreak
	}
	if req.IsActive != nil {
		k.IsActive = *req.IsActive
	}

	if err := s.khatms.Update(ctx, k); err != nil {
		return nil, mapNotFound(err)
	}
	return k, nil
}

// Delete removes a khatm and all of its sessions.
func (s *Service) Delete(ctx context.Context, id int64) error {
	mu := s.locks.get(id)
	mu.Lock()
	defer mu.Unlock()

	if err := s.khatms.Delete(ctx, id); err != nil {
		return mapNotFound(err)
	}
	s.locks.forget(id)
	return nil
}

// finalizeIfDone marks the khatm completed once no session remains
// scheduled. Idempotent: rerunning it never flips a completed khatm back.
func (s *Service) finalizeIfDone(ctx context.Context, k *models.Khatm) error {
	sessions, err := s.sessions.GetByKhatm(ctx, k.ID)
	if err != nil {
		return err
	}
	if !progress.AllTerminal(sessions) {
		return nil
	}
	if k.IsCompleted && !k.IsActive {
		return nil
	}

	k.IsCompleted = true
	k.IsActive = false
	return s.khatms.Update(ctx, k)
}

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return err
}

func sameDay(a, b time.Time) bool {
	au, bu := a.UTC(), b.UTC()
	return au.Year() == bu.Year() && au.Month() == bu.Month() && au.Day() == bu.Day()
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
