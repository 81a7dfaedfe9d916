package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"checkbook/internal/models"
	"checkbook/pkg/api"
)

func TestHandleShops_ReturnsCollection(t *testing.T) {
	store := &fakeStorage{
		shops: []models.Shop{
			{ID: "shop-2", Name: "Bakery"},
			{ID: "shop-1", Name: "Market"},
		},
	}
	h := NewShopsHandler(slog.Default(), store)

	r := httptest.NewRequest(http.MethodGet, "/api/v1/shops", nil)
	w := httptest.NewRecorder()

	h.HandleShops(w, r)

	require.Equal(t, http.StatusOK, w.Code)

	var shops []api.Shop
	require.NoError(t, json.NewDecoder(w.Body).Decode(&shops))
	require.Len(t, shops, 2)
	assert.Equal(t, "Bakery", shops[0].Name)
	assert.Equal(t, "Market", shops[1].Name)
}

func TestHandleShops_Empty(t *testing.T) {
	h := NewShopsHandler(slog.Default(), &fakeStorage{})

	r := httptest.NewRequest(http.MethodGet, "/api/v1/shops", nil)
	w := httptest.NewRecorder()

	h.HandleShops(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	// Пустой справочник — это [], а не null
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestHandleShops_StorageError(t *testing.T) {
	store := &fakeStorage{shopsErr: errors.New("database is locked")}
	h := NewShopsHandler(slog.Default(), store)

	r := httptest.NewRequest(http.MethodGet, "/api/v1/shops", nil)
	w := httptest.NewRecorder()

	h.HandleShops(w, r)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestHandleShops_MethodNotAllowed(t *testing.T) {
	h := NewShopsHandler(slog.Default(), &fakeStorage{})

	r := httptest.NewRequest(http.MethodPost, "/api/v1/shops", nil)
	w := httptest.NewRecorder()

	h.HandleShops(w, r)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
