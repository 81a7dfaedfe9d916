package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"checkbook/pkg/api"
)

// ClientAPI определяет интерфейс HTTP клиента к серверу
type ClientAPI interface {
	// Sync отправляет batch мутаций на сервер (всё или ничего)
	Sync(ctx context.Context, req api.SyncRequest) (*api.SyncResponse, error)

	// GetShops возвращает полную серверную коллекцию магазинов
	GetShops(ctx context.Context) ([]api.Shop, error)

	// Ping проверяет достижимость сервера
	Ping(ctx context.Context) error
}

// Client представляет HTTP клиент для взаимодействия с сервером
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient создает новый API клиент
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Sync отправляет упорядоченный batch мутаций на POST /api/v1/sync
func (c *Client) Sync(ctx context.Context, req api.SyncRequest) (*api.SyncResponse, error) {
	var resp api.SyncResponse
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/sync", req, &resp); err != nil {
		return nil, fmt.Errorf("sync request failed: %w", err)
	}
	return &resp, nil
}

// GetShops запрашивает GET /api/v1/shops
func (c *Client) GetShops(ctx context.Context) ([]api.Shop, error) {
	var shops []api.Shop
	if err := c.doRequest(ctx, http.MethodGet, "/api/v1/shops", nil, &shops); err != nil {
		return nil, fmt.Errorf("get shops request failed: %w", err)
	}
	return shops, nil
}

// Ping запрашивает GET /api/v1/ping.
// Любой лёгкий endpoint c 200 подходит как reachability probe.
func (c *Client) Ping(ctx context.Context) error {
	var resp api.PingResponse
	if err := c.doRequest(ctx, http.MethodGet, "/api/v1/ping", nil, &resp); err != nil {
		return fmt.Errorf("ping request failed: %w", err)
	}
	return nil
}

// doRequest выполняет HTTP запрос
func (c *Client) doRequest(ctx context.Context, method, path string, body, result any) error {
	url := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Транспортная ошибка: ответа сервера не было
		return fmt.Errorf("%w: %v", ErrNetworkUnreachable, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	// Читаем тело ответа
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	// Проверяем статус код
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		serverErr := &ServerError{StatusCode: resp.StatusCode}

		var errResp api.ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Message != "" {
			serverErr.Code = errResp.Code
			serverErr.Message = errResp.Message
		} else {
			serverErr.Message = string(respBody)
		}

		return serverErr
	}

	// Декодируем успешный ответ
	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}
