package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"checkbook/internal/models"
	"checkbook/internal/server/storage"
	"checkbook/pkg/api"
)

// DataStorage определяет интерфейс для применения batch мутаций
type DataStorage interface {
	ApplyBatch(ctx context.Context, mutations []models.Mutation) (int, error)
	GetShops(ctx context.Context) ([]models.Shop, error)
}

// SyncHandler handles synchronization requests
type SyncHandler struct {
	logger  *slog.Logger
	storage DataStorage
}

// NewSyncHandler creates a new sync handler
func NewSyncHandler(logger *slog.Logger, storage DataStorage) *SyncHandler {
	return &SyncHandler{
		logger:  logger,
		storage: storage,
	}
}

// HandleSync обрабатывает POST /api/v1/sync
// Принимает batch мутаций клиента и применяет его атомарно
func (h *SyncHandler) HandleSync(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()

	var req api.SyncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid sync request body", "error", err)
		writeError(w, h.logger, http.StatusBadRequest, api.ErrCodeInvalidBatch, "invalid request body")
		return
	}

	mutations := make([]models.Mutation, 0, len(req.Mutations))
	for _, m := range req.Mutations {
		mutations = append(mutations, models.MutationFromAPI(m))
	}

	applied, err := h.storage.ApplyBatch(ctx, mutations)
	if err != nil {
		// Ссылка на несуществующий магазин — ошибка данных клиента,
		// сообщение уходит клиенту дословно
		if errors.Is(err, storage.ErrShopNotFound) {
			h.logger.Warn("Batch rejected", "error", err, "batch_size", len(mutations))
			writeError(w, h.logger, http.StatusUnprocessableEntity, api.ErrCodeReferenceNotFound, err.Error())
			return
		}
		if errors.Is(err, storage.ErrInvalidMutation) {
			h.logger.Warn("Batch rejected", "error", err, "batch_size", len(mutations))
			writeError(w, h.logger, http.StatusUnprocessableEntity, api.ErrCodeInvalidBatch, err.Error())
			return
		}

		h.logger.Error("Failed to apply batch", "error", err, "batch_size", len(mutations))
		writeError(w, h.logger, http.StatusInternalServerError, api.ErrCodeInternal, "internal server error")
		return
	}

	h.logger.Info("Batch applied", "mutations", applied)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(api.SyncResponse{Applied: applied}); err != nil {
		h.logger.Error("Failed to encode sync response", "error", err)
	}
}

// writeError отправляет клиенту структурированную ошибку API
func writeError(w http.ResponseWriter, logger *slog.Logger, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(api.ErrorResponse{Code: code, Message: message}); err != nil {
		logger.Error("Failed to encode error response", "error", err)
	}
}
