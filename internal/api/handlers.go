package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/example/khatm/internal/khatm"
	"github.com/example/khatm/internal/progress"
	"github.com/example/khatm/pkg/models"
)

type khatmResponse struct {
	Khatm    *models.Khatm         `json:"khatm"`
	Sessions []models.KhatmSession `json:"sessions"`
	Progress progress.Summary      `json:"progress"`
}

func (s *Server) handleCreateKhatm(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit
	var req khatm.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "Invalid request body")
		return
	}

	k, sessions, err := s.service.Create(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, khatmResponse{
		Khatm:    k,
		Sessions: sessions,
		Progress: progress.Aggregate(sessions),
	})
}

func (s *Server) handleListKhatms(w http.ResponseWriter, r *http.Request) {
	activeOnly := true
	if v := r.URL.Query().Get("active"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			writeBadRequest(w, "Invalid active parameter")
			return
		}
		activeOnly = parsed
	}

	overviews, err := s.service.List(r.Context(), activeOnly)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, overviews)
}

func (s *Server) handleGetKhatm(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	k, sessions, err := s.service.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, khatmResponse{
		Khatm:    k,
		Sessions: sessions,
		Progress: progress.Aggregate(sessions),
	})
}

func (s *Server) handleUpdateKhatm(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req khatm.UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "Invalid request body")
		return
	}

	k, err := s.service.Update(r.Context(), id, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, k)
}

func (s *Server) handleDeleteKhatm(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := s.service.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Khatm deleted"})
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	summary, err := s.service.Progress(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleTodaySession(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	day := time.Now().UTC()
	if v := r.URL.Query().Get("date"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			writeBadRequest(w, "Invalid date parameter, want YYYY-MM-DD")
			return
		}
		day = parsed
	}

	result, err := s.service.TodaySession(r.Context(), id, day)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	khatmID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	sessionID, ok := pathID(w, r, "sid")
	if !ok {
		return
	}

	sess, err := s.service.GetSession(r.Context(), khatmID, sessionID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

type resumeResponse struct {
	CurrentVerse *models.VerseRef `json:"current_verse"`
}

func (s *Server) handleResumeSession(w http.ResponseWriter, r *http.Request) {
	khatmID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	sessionID, ok := pathID(w, r, "sid")
	if !ok {
		return
	}

	ref, err := s.service.ResumeSession(r.Context(), khatmID, sessionID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resumeResponse{CurrentVerse: ref})
}

type completeRequest struct {
	VersesRead int  `json:"verses_read"`
	LastVerse  *int `json:"last_verse"`
}

func (s *Server) handleCompleteSession(w http.ResponseWriter, r *http.Request) {
	khatmID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	sessionID, ok := pathID(w, r, "sid")
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req completeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "Invalid request body")
		return
	}

	sess, err := s.service.CompleteSession(r.Context(), khatmID, sessionID, req.VersesRead, req.LastVerse)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

type skipRequest struct {
	Reason string `json:"reason"`
}

func (s *Server) handleSkipSession(w http.ResponseWriter, r *http.Request) {
	khatmID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	sessionID, ok := pathID(w, r, "sid")
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req skipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "Invalid request body")
		return
	}

	sess, err := s.service.SkipSession(r.Context(), khatmID, sessionID, req.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		writeBadRequest(w, "Invalid "+name+" path parameter")
		return 0, false
	}
	return id, true
}
