// Package api exposes the khatm service over a JSON HTTP API.
package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/example/khatm/internal/khatm"
	"github.com/example/khatm/internal/planner"
	"github.com/example/khatm/internal/recurrence"
)

// Server holds the handlers for the khatm HTTP API.
type Server struct {
	service *khatm.Service
}

// NewServer creates a server over the given service.
func NewServer(service *khatm.Service) *Server {
	return &Server{service: service}
}

// Routes returns the full route table.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /khatms", s.handleCreateKhatm)
	mux.HandleFunc("GET /khatms", s.handleListKhatms)
	mux.HandleFunc("GET /khatms/{id}", s.handleGetKhatm)
	mux.HandleFunc("PATCH /khatms/{id}", s.handleUpdateKhatm)
	mux.HandleFunc("DELETE /khatms/{id}", s.handleDeleteKhatm)
	mux.HandleFunc("GET /khatms/{id}/progress", s.handleProgress)
	mux.HandleFunc("GET /khatms/{id}/today", s.handleTodaySession)
	mux.HandleFunc("GET /khatms/{id}/sessions/{sid}", s.handleGetSession)
	mux.HandleFunc("GET /khatms/{id}/sessions/{sid}/resume", s.handleResumeSession)
	mux.HandleFunc("POST /khatms/{id}/sessions/{sid}/complete", s.handleCompleteSession)
	mux.HandleFunc("POST /khatms/{id}/sessions/{sid}/skip", s.handleSkipSession)

	return mux
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps service errors to HTTP statuses: missing resources to
// 404, stale transitions to 409, rejected requests to 400 and everything
// else to 500.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, khatm.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, khatm.ErrInvalidTransition):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, khatm.ErrInvalidRequest),
		errors.Is(err, recurrence.ErrInvalidPolicy),
		errors.Is(err, recurrence.ErrInvalidRange),
		errors.Is(err, planner.ErrNoSessionDates),
		errors.Is(err, planner.ErrTooManySessions),
		errors.Is(err, planner.ErrVerseIndexMismatch):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	default:
		log.Printf("Internal error: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func writeBadRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}
