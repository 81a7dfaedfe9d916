package models

// Shop представляет магазин — справочная сущность, к которой привязаны чеки.
// Источник истины для идентичности магазина — сервер; имя может меняться.
type Shop struct {
	ID   string `json:"id"`   // ID уникальный идентификатор магазина (UUID)
	Name string `json:"name"` // Name отображаемое имя магазина
}
