package api

import (
	"time"

	"github.com/shopspring/decimal"
)

// Shop представляет магазин в API формате
type Shop struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CheckItem представляет позицию чека в API формате
type CheckItem struct {
	SerialNumber int             `json:"serialNumber"`
	ProductName  string          `json:"productName"`
	Price        decimal.Decimal `json:"price"`
	Count        decimal.Decimal `json:"count"`
	Unit         string          `json:"unitOfMeasure"`
	Total        decimal.Decimal `json:"total"`
}

// Check представляет чек в API формате
type Check struct {
	ID          string          `json:"id"`
	CheckNumber int             `json:"checkNumber"`
	Date        string          `json:"date"`
	ShopID      string          `json:"shopId"`
	ShopName    string          `json:"shopName"`
	Items       []CheckItem     `json:"items"`
	Total       decimal.Decimal `json:"total"`
}

// Mutation представляет одно отложенное изменение для синхронизации.
// Payload целостный: для shop заполнено поле Shop, для check — поле Check,
// в том числе для action=delete (сервер использует только id).
type Mutation struct {
	EntityType string    `json:"entityType"`
	Action     string    `json:"action"`
	Shop       *Shop     `json:"shop,omitempty"`
	Check      *Check    `json:"check,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// SyncRequest представляет запрос на синхронизацию от клиента.
// Mutations упорядочены: изменения магазинов идут раньше изменений чеков.
type SyncRequest struct {
	Mutations []Mutation `json:"mutations"`
}

// SyncResponse представляет ответ сервера на синхронизацию.
// Сервер применяет batch целиком или отклоняет целиком.
type SyncResponse struct {
	Applied int `json:"applied"` // количество применённых мутаций
}

// PingResponse представляет ответ reachability probe
type PingResponse struct {
	Status string `json:"status"`
}

// Error codes returned by the server
const (
	ErrCodeReferenceNotFound = "reference_not_found"
	ErrCodeInvalidBatch      = "invalid_batch"
	ErrCodeInternal          = "internal_error"
)

// ErrorResponse представляет ошибку API
type ErrorResponse struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}
