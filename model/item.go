package model

import "time"

type RentalItem struct {
	ID                int64      `json:"id"`
	Title             string     `json:"title"`
	Description       string     `json:"description"`
	PricePerDay       float64    `json:"price_per_day"`
	Deposit           float64    `json:"deposit"`
	TotalQuantity     int64      `json:"total_quantity"`
	AvailableQuantity int64      `json:"available_quantity"`
	Available         bool       `json:"available"`
	NextAvailableDate *time.Time `json:"next_available_date,omitempty"`
}

// StockStatus mirrors what the catalog shows next to each item.
func (i *RentalItem) StockStatus() string {
	switch {
	case i.AvailableQuantity > 1:
		return "in stock"
	case i.AvailableQuantity == 1:
		return "only 1 left"
	default:
		return "out of stock"
	}
}
