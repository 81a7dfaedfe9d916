package models

import "time"

// EntityType тип сущности, к которой относится мутация
type EntityType string

// Action действие над сущностью
type Action string

// Допустимые типы сущностей и действий
const (
	EntityShop  EntityType = "shop"
	EntityCheck EntityType = "check"

	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Mutation представляет одно отложенное изменение в очереди синхронизации.
// Payload — полная копия сущности на момент изменения: очередь не хранит
// дифф, update всегда замещает сущность целиком.
type Mutation struct {
	EntityType EntityType `json:"entityType"`
	Action     Action     `json:"action"`
	Shop       *Shop      `json:"shop,omitempty"`
	Check      *Check     `json:"check,omitempty"`
	Timestamp  time.Time  `json:"timestamp"` // Timestamp момент локального изменения
}

// EntityID возвращает идентификатор сущности из payload мутации
func (m Mutation) EntityID() string {
	switch m.EntityType {
	case EntityShop:
		if m.Shop != nil {
			return m.Shop.ID
		}
	case EntityCheck:
		if m.Check != nil {
			return m.Check.ID
		}
	}
	return ""
}
