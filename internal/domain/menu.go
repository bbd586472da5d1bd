package domain

import "github.com/shopspring/decimal"

type MenuItem struct {
	ItemID      string          `json:"item_id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Description *string         `json:"description"`
	Category    string          `json:"category"`
	CreatedAt   string          `json:"created_at,omitempty"`
}

// Menu item attribute names as persisted.
const (
	MenuFieldItemID      = "item_id"
	MenuFieldName        = "name"
	MenuFieldPrice       = "price"
	MenuFieldDescription = "description"
	MenuFieldCategory    = "category"
	MenuFieldCreatedAt   = "created_at"
)
