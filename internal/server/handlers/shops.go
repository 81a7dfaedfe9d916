package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"checkbook/internal/models"
	"checkbook/pkg/api"
)

// ShopsHandler отдаёт справочник магазинов для pull на клиентах
type ShopsHandler struct {
	logger  *slog.Logger
	storage DataStorage
}

// NewShopsHandler creates a new shops handler
func NewShopsHandler(logger *slog.Logger, storage DataStorage) *ShopsHandler {
	return &ShopsHandler{
		logger:  logger,
		storage: storage,
	}
}

// HandleShops обрабатывает GET /api/v1/shops
// Возвращает полный справочник магазинов, отсортированный по имени
func (h *ShopsHandler) HandleShops(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	shops, err := h.storage.GetShops(r.Context())
	if err != nil {
		h.logger.Error("Failed to get shops", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, api.ErrCodeInternal, "internal server error")
		return
	}

	apiShops := make([]api.Shop, 0, len(shops))
	for _, shop := range shops {
		apiShops = append(apiShops, models.ShopToAPI(shop))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(apiShops); err != nil {
		h.logger.Error("Failed to encode shops response", "error", err)
	}
}
