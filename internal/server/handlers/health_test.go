package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"checkbook/pkg/api"
)

func TestPing(t *testing.T) {
	h := NewHealthHandler(slog.Default())

	r := httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil)
	w := httptest.NewRecorder()

	h.Ping(w, r)

	require.Equal(t, http.StatusOK, w.Code)

	var resp api.PingResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestPing_MethodNotAllowed(t *testing.T) {
	h := NewHealthHandler(slog.Default())

	r := httptest.NewRequest(http.MethodPost, "/api/v1/ping", nil)
	w := httptest.NewRecorder()

	h.Ping(w, r)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
