package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/khatm/internal/database"
	"github.com/example/khatm/internal/khatm"
	"github.com/example/khatm/internal/progress"
	"github.com/example/khatm/internal/quran"
	"github.com/example/khatm/pkg/models"
)

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewServer(khatm.NewService(db, quran.Canonical())).Routes()
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func createTestKhatm(t *testing.T, handler http.Handler) khatmResponse {
	t.Helper()
	rec := doJSON(t, handler, http.MethodPost, "/khatms", map[string]interface{}{
		"title":          "January Khatm",
		"start_date":     "2024-01-01T00:00:00Z",
		"end_date":       "2024-01-30T00:00:00Z",
		"frequency_type": "daily",
		"reading_time":   "19:00",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp khatmResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestCreateKhatmEndpoint(t *testing.T) {
	handler := newTestHandler(t)

	resp := createTestKhatm(t, handler)
	assert.Equal(t, "January Khatm", resp.Khatm.Title)
	assert.Equal(t, 30, resp.Khatm.TotalSessions)
	require.Len(t, resp.Sessions, 30)
	assert.Equal(t, 1, resp.Sessions[0].StartVerse)
	assert.Equal(t, 6236, resp.Sessions[29].EndVerse)
	assert.Equal(t, 0.0, resp.Progress.SessionProgressPct)
}

func TestCreateKhatmRejectsBadRequests(t *testing.T) {
	handler := newTestHandler(t)

	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{"missing title", map[string]interface{}{
			"start_date": "2024-01-01T00:00:00Z", "end_date": "2024-01-30T00:00:00Z",
			"frequency_type": "daily", "reading_time": "19:00",
		}},
		{"inverted range", map[string]interface{}{
			"title": "X", "start_date": "2024-02-01T00:00:00Z", "end_date": "2024-01-01T00:00:00Z",
			"frequency_type": "daily", "reading_time": "19:00",
		}},
		{"weekly without days", map[string]interface{}{
			"title": "X", "start_date": "2024-01-01T00:00:00Z", "end_date": "2024-01-30T00:00:00Z",
			"frequency_type": "weekly", "reading_time": "19:00",
		}},
		{"unknown frequency", map[string]interface{}{
			"title": "X", "start_date": "2024-01-01T00:00:00Z", "end_date": "2024-01-30T00:00:00Z",
			"frequency_type": "monthly", "reading_time": "19:00",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, handler, http.MethodPost, "/khatms", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
}

func TestCompleteAndSkipEndpoints(t *testing.T) {
	handler := newTestHandler(t)
	created := createTestKhatm(t, handler)

	first := created.Sessions[0]
	path := fmt.Sprintf("/khatms/%d/sessions/%d/complete", created.Khatm.ID, first.ID)
	rec := doJSON(t, handler, http.MethodPost, path, map[string]interface{}{
		"verses_read": first.VerseCount,
		"last_verse":  first.EndVerse,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var sess models.KhatmSession
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sess))
	assert.Equal(t, models.SessionCompleted, sess.Status)

	// Completing again conflicts.
	rec = doJSON(t, handler, http.MethodPost, path, map[string]interface{}{"verses_read": 1})
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Skip the second session.
	second := created.Sessions[1]
	rec = doJSON(t, handler, http.MethodPost,
		fmt.Sprintf("/khatms/%d/sessions/%d/skip", created.Khatm.ID, second.ID),
		map[string]interface{}{"reason": "traveling"})
	require.Equal(t, http.StatusOK, rec.Code)

	// Progress reflects one completed session only.
	rec = doJSON(t, handler, http.MethodGet, fmt.Sprintf("/khatms/%d/progress", created.Khatm.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var summary progress.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, 1, summary.CompletedSessions)
	assert.Equal(t, first.VerseCount, summary.CompletedVerses)
	assert.Equal(t, 1, summary.StatusCounts[models.SessionSkipped])
}

func TestResumeEndpoint(t *testing.T) {
	handler := newTestHandler(t)
	created := createTestKhatm(t, handler)
	first := created.Sessions[0]

	rec := doJSON(t, handler, http.MethodPost,
		fmt.Sprintf("/khatms/%d/sessions/%d/complete", created.Khatm.ID, first.ID),
		map[string]interface{}{"verses_read": 100, "last_verse": 100})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, handler, http.MethodGet,
		fmt.Sprintf("/khatms/%d/sessions/%d/resume", created.Khatm.ID, first.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp resumeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.CurrentVerse)
	assert.Equal(t, 100, resp.CurrentVerse.GlobalNumber)
	assert.Equal(t, 2, resp.CurrentVerse.SurahNumber)
}

func TestTodayEndpointTaggedResult(t *testing.T) {
	handler := newTestHandler(t)
	created := createTestKhatm(t, handler)

	rec := doJSON(t, handler, http.MethodGet,
		fmt.Sprintf("/khatms/%d/today?date=2024-01-05", created.Khatm.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var result models.TodaySessionResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.True(t, result.Found)
	assert.Equal(t, 5, result.Session.SessionNumber)

	rec = doJSON(t, handler, http.MethodGet,
		fmt.Sprintf("/khatms/%d/today?date=2030-01-01", created.Khatm.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	result = models.TodaySessionResult{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.False(t, result.Found)
	assert.Nil(t, result.Session)
}

func TestDeleteEndpoint(t *testing.T) {
	handler := newTestHandler(t)
	created := createTestKhatm(t, handler)

	rec := doJSON(t, handler, http.MethodDelete, fmt.Sprintf("/khatms/%d", created.Khatm.ID), nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, handler, http.MethodGet, fmt.Sprintf("/khatms/%d", created.Khatm.ID), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, handler, http.MethodDelete, fmt.Sprintf("/khatms/%d", created.Khatm.ID), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNotFoundAndBadIDs(t *testing.T) {
	handler := newTestHandler(t)

	rec := doJSON(t, handler, http.MethodGet, "/khatms/9999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, handler, http.MethodGet, "/khatms/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, handler, http.MethodPost, "/khatms/9999/sessions/1/complete",
		map[string]interface{}{"verses_read": 1})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListEndpointFiltersActive(t *testing.T) {
	handler := newTestHandler(t)
	created := createTestKhatm(t, handler)

	// Deactivate via PATCH.
	rec := doJSON(t, handler, http.MethodPatch, fmt.Sprintf("/khatms/%d", created.Khatm.ID),
		map[string]interface{}{"is_active": false})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, handler, http.MethodGet, "/khatms", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var active []khatm.Overview
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &active))
	assert.Empty(t, active)

	rec = doJSON(t, handler, http.MethodGet, "/khatms?active=false", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var all []khatm.Overview
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &all))
	require.Len(t, all, 1)
	assert.Equal(t, created.Khatm.ID, all[0].Khatm.ID)
}
