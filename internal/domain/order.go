package domain

import "github.com/shopspring/decimal"

const (
	MinQuantity = 1
	MaxQuantity = 999
)

// LineItem embeds a snapshot of the menu item taken when the order was placed.
// Later menu changes never reach existing orders.
type LineItem struct {
	Item     MenuItem `json:"item"`
	Quantity int64    `json:"quantity"`
}

type Order struct {
	OrderID     string          `json:"order_id"`
	OrderNumber string          `json:"order_number"`
	Items       []LineItem      `json:"items"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	DiscountPct decimal.Decimal `json:"discount_pct"`
	Total       decimal.Decimal `json:"total"`
	OrderDate   string          `json:"order_date"`
}

// Order attribute names as persisted.
const (
	OrderFieldOrderID     = "order_id"
	OrderFieldOrderNumber = "order_number"
	OrderFieldItems       = "items"
	OrderFieldSubtotal    = "subtotal"
	OrderFieldDiscountPct = "discount_pct"
	OrderFieldTotal       = "total"
	OrderFieldOrderDate   = "order_date"
)

// Line item attribute names as persisted.
const (
	LineFieldItem     = "item"
	LineFieldQuantity = "quantity"
)
