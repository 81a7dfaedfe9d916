package models

import (
	"checkbook/pkg/api"
)

// Конвертация между доменными моделями и API форматом.
// Поля копируются явно, чтобы изменение wire формата не проходило
// незамеченным мимо компилятора.

// ShopToAPI конвертирует магазин в API формат
func ShopToAPI(s Shop) api.Shop {
	return api.Shop{ID: s.ID, Name: s.Name}
}

// ShopFromAPI конвертирует магазин из API формата
func ShopFromAPI(s api.Shop) Shop {
	return Shop{ID: s.ID, Name: s.Name}
}

// CheckToAPI конвертирует чек в API формат
func CheckToAPI(c Check) api.Check {
	items := make([]api.CheckItem, len(c.Items))
	for i, item := range c.Items {
		items[i] = api.CheckItem{
			SerialNumber: item.SerialNumber,
			ProductName:  item.ProductName,
			Price:        item.Price,
			Count:        item.Count,
			Unit:         string(item.Unit),
			Total:        item.Total,
		}
	}
	return api.Check{
		ID:          c.ID,
		CheckNumber: c.CheckNumber,
		Date:        c.Date,
		ShopID:      c.ShopID,
		ShopName:    c.ShopName,
		Items:       items,
		Total:       c.Total,
	}
}

// CheckFromAPI конвертирует чек из API формата
func CheckFromAPI(c api.Check) Check {
	items := make([]CheckItem, len(c.Items))
	for i, item := range c.Items {
		items[i] = CheckItem{
			SerialNumber: item.SerialNumber,
			ProductName:  item.ProductName,
			Price:        item.Price,
			Count:        item.Count,
			Unit:         UnitOfMeasure(item.Unit),
			Total:        item.Total,
		}
	}
	return Check{
		ID:          c.ID,
		CheckNumber: c.CheckNumber,
		Date:        c.Date,
		ShopID:      c.ShopID,
		ShopName:    c.ShopName,
		Items:       items,
		Total:       c.Total,
	}
}

// MutationToAPI конвертирует мутацию в API формат
func MutationToAPI(m Mutation) api.Mutation {
	out := api.Mutation{
		EntityType: string(m.EntityType),
		Action:     string(m.Action),
		Timestamp:  m.Timestamp,
	}
	if m.Shop != nil {
		shop := ShopToAPI(*m.Shop)
		out.Shop = &shop
	}
	if m.Check != nil {
		check := CheckToAPI(*m.Check)
		out.Check = &check
	}
	return out
}

// MutationFromAPI конвертирует мутацию из API формата
func MutationFromAPI(m api.Mutation) Mutation {
	out := Mutation{
		EntityType: EntityType(m.EntityType),
		Action:     Action(m.Action),
		Timestamp:  m.Timestamp,
	}
	if m.Shop != nil {
		shop := ShopFromAPI(*m.Shop)
		out.Shop = &shop
	}
	if m.Check != nil {
		check := CheckFromAPI(*m.Check)
		out.Check = &check
	}
	return out
}
