package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"checkbook/pkg/api"
)

// HealthHandler обрабатывает reachability probe клиентов
type HealthHandler struct {
	logger *slog.Logger
}

// NewHealthHandler создает новый handler для ping
func NewHealthHandler(logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		logger: logger,
	}
}

// Ping обрабатывает GET /api/v1/ping
// Лёгкий endpoint для периодической проверки достижимости сервера
func (h *HealthHandler) Ping(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(api.PingResponse{Status: "ok"}); err != nil {
		h.logger.Error("Failed to encode ping response", "error", err)
	}
}
