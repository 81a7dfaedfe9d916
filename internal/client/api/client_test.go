package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"checkbook/pkg/api"
)

// TestNewClient проверяет создание нового клиента
func TestNewClient(t *testing.T) {
	baseURL := "http://localhost:8080"
	client := NewClient(baseURL)

	assert.NotNil(t, client)
	assert.Equal(t, baseURL, client.baseURL)
	assert.NotNil(t, client.httpClient)
	assert.Equal(t, 30*time.Second, client.httpClient.Timeout)
}

// TestClient_Sync проверяет успешную отправку batch
func TestClient_Sync(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/sync", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req api.SyncRequest
		err := json.NewDecoder(r.Body).Decode(&req)
		require.NoError(t, err)
		require.Len(t, req.Mutations, 2)

		// Порядок batch сохраняется на проводе
		assert.Equal(t, "shop", req.Mutations[0].EntityType)
		assert.Equal(t, "check", req.Mutations[1].EntityType)

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(api.SyncResponse{Applied: 2})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	ctx := context.Background()

	resp, err := client.Sync(ctx, api.SyncRequest{
		Mutations: []api.Mutation{
			{EntityType: "shop", Action: "create", Shop: &api.Shop{ID: "s1", Name: "Market"}},
			{EntityType: "check", Action: "create", Check: &api.Check{ID: "c1", ShopID: "s1"}},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, 2, resp.Applied)
}

// TestClient_Sync_BatchRejected: сообщение сервера передаётся дословно
func TestClient_Sync_BatchRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_ = json.NewEncoder(w).Encode(api.ErrorResponse{
			Code:    api.ErrCodeReferenceNotFound,
			Message: "shop not found: s-missing",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)

	_, err := client.Sync(context.Background(), api.SyncRequest{})
	require.Error(t, err)

	var serverErr *ServerError
	require.ErrorAs(t, err, &serverErr)
	assert.Equal(t, http.StatusUnprocessableEntity, serverErr.StatusCode)
	assert.Equal(t, "shop not found: s-missing", serverErr.Message)
	assert.Contains(t, err.Error(), "server error (422): shop not found: s-missing")

	// Отказ по ссылке распознаётся через errors.Is
	assert.ErrorIs(t, err, ErrReferenceNotFound)
	assert.NotErrorIs(t, err, ErrNetworkUnreachable)
}

func TestClient_Sync_PlainTextError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("Internal Server Error"))
	}))
	defer server.Close()

	client := NewClient(server.URL)

	_, err := client.Sync(context.Background(), api.SyncRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server error (500): Internal Server Error")
	assert.NotErrorIs(t, err, ErrReferenceNotFound)
}

// TestClient_Sync_NetworkUnreachable: транспортная ошибка отличима от
// отказа сервера
func TestClient_Sync_NetworkUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // закрываем сразу

	client := NewClient(server.URL)

	_, err := client.Sync(context.Background(), api.SyncRequest{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNetworkUnreachable)

	var serverErr *ServerError
	assert.False(t, errors.As(err, &serverErr))
}

// TestClient_GetShops проверяет получение коллекции магазинов
func TestClient_GetShops(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v1/shops", r.URL.Path)

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode([]api.Shop{
			{ID: "s1", Name: "Market"},
			{ID: "s2", Name: "Bakery"},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)

	shops, err := client.GetShops(context.Background())
	require.NoError(t, err)
	require.Len(t, shops, 2)
	assert.Equal(t, "Market", shops[0].Name)
}

// TestClient_Ping проверяет reachability probe
func TestClient_Ping(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/ping", r.URL.Path)
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(api.PingResponse{Status: "ok"})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	require.NoError(t, client.Ping(context.Background()))
}

func TestClient_Ping_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := NewClient(server.URL)
	err := client.Ping(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNetworkUnreachable)
}

// TestClient_ContextCancellation проверяет отмену запроса через контекст
func TestClient_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Имитируем долгий запрос
		time.Sleep(2 * time.Second)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(server.URL)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := client.Sync(ctx, api.SyncRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "context deadline exceeded")
}

// TestClient_InvalidJSON проверяет обработку невалидного JSON в ответе
func TestClient_InvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("invalid json {{{"))
	}))
	defer server.Close()

	client := NewClient(server.URL)

	_, err := client.GetShops(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode response")
}
