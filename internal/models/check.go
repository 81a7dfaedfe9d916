package models

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// UnitOfMeasure единица измерения позиции чека
type UnitOfMeasure string

// Допустимые единицы измерения
const (
	UnitPcs UnitOfMeasure = "pcs"
	UnitKg  UnitOfMeasure = "kg"
	UnitG   UnitOfMeasure = "g"
	UnitL   UnitOfMeasure = "l"
	UnitMl  UnitOfMeasure = "ml"
)

// Valid сообщает, является ли единица измерения одной из допустимых
func (u UnitOfMeasure) Valid() bool {
	switch u {
	case UnitPcs, UnitKg, UnitG, UnitL, UnitMl:
		return true
	}
	return false
}

// Validation errors for check items
var (
	ErrEmptyProductName = errors.New("product name is required")
	ErrNegativePrice    = errors.New("price must not be negative")
	ErrNonPositiveCount = errors.New("count must be greater than zero")
)

// CheckItem представляет одну позицию чека.
// Total всегда производное значение: Price × Count.
type CheckItem struct {
	SerialNumber int             `json:"serialNumber"` // SerialNumber позиция внутри чека, начиная с 1
	ProductName  string          `json:"productName"`
	Price        decimal.Decimal `json:"price"`
	Count        decimal.Decimal `json:"count"`
	Unit         UnitOfMeasure   `json:"unitOfMeasure"`
	Total        decimal.Decimal `json:"total"`
}

// NewCheckItem создает позицию чека с проверкой инвариантов.
// SerialNumber и Total проставляются позже, при вставке в чек
// (см. Check.ReplaceItems).
func NewCheckItem(productName string, price, count decimal.Decimal, unit UnitOfMeasure) (CheckItem, error) {
	if productName == "" {
		return CheckItem{}, ErrEmptyProductName
	}
	if price.IsNegative() {
		return CheckItem{}, ErrNegativePrice
	}
	if !count.IsPositive() {
		return CheckItem{}, ErrNonPositiveCount
	}
	if !unit.Valid() {
		return CheckItem{}, fmt.Errorf("unknown unit of measure: %q", unit)
	}
	return CheckItem{
		ProductName: productName,
		Price:       price,
		Count:       count,
		Unit:        unit,
	}, nil
}

// Check представляет чек — запись о покупке в одном магазине.
// ShopName — денормализованная копия имени магазина на момент создания чека;
// переименование магазина НЕ переписывает ShopName у исторических чеков.
type Check struct {
	ID          string          `json:"id"`          // ID уникальный идентификатор чека (UUID)
	CheckNumber int             `json:"checkNumber"` // CheckNumber порядковый номер чека внутри месяца
	Date        string          `json:"date"`        // Date дата покупки в формате YYYY-MM-DD
	ShopID      string          `json:"shopId"`
	ShopName    string          `json:"shopName"`
	Items       []CheckItem     `json:"items"`
	Total       decimal.Decimal `json:"total"`
}

// ReplaceItems полностью заменяет позиции чека: перенумеровывает
// serialNumber, пересчитывает total каждой позиции и итог чека.
// Инкрементального обновления позиций нет — любое изменение чека
// приходит как полный новый список позиций.
func (c *Check) ReplaceItems(items []CheckItem) {
	replaced := make([]CheckItem, len(items))
	total := decimal.Zero
	for i, item := range items {
		item.SerialNumber = i + 1
		item.Total = item.Price.Mul(item.Count)
		replaced[i] = item
		total = total.Add(item.Total)
	}
	c.Items = replaced
	c.Total = total
}

// Clone создает глубокую копию чека
func (c *Check) Clone() *Check {
	items := make([]CheckItem, len(c.Items))
	copy(items, c.Items)

	clone := *c
	clone.Items = items
	return &clone
}
