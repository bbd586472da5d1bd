package http

import (
	"fmt"

	"github.com/fjod/restaurant/internal/domain"
	"github.com/fjod/restaurant/internal/money"
	"github.com/fjod/restaurant/internal/service"
	"github.com/shopspring/decimal"
)

// Numeric fields are typed any: the decoder hands over json.Number or a numeric string.

type MenuItemRequestDTO struct {
	Name        *string `json:"name"`
	Price       any     `json:"price"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
}

// MenuItemSnapshotDTO is a menu item embedded in an order line. Unlike a create request it
// must name the item it was copied from.
type MenuItemSnapshotDTO struct {
	ItemID    *string `json:"item_id"`
	CreatedAt *string `json:"created_at"`
	MenuItemRequestDTO
}

type LineItemRequestDTO struct {
	Item     *MenuItemSnapshotDTO `json:"item"`
	Quantity any                  `json:"quantity"`
}

// OrderRequestDTO ignores order_id, subtotal and total: those are server-owned.
type OrderRequestDTO struct {
	OrderNumber *string               `json:"order_number"`
	Items       *[]LineItemRequestDTO `json:"items"`
	DiscountPct any                   `json:"discount_pct"`
	OrderDate   *string               `json:"order_date"`
}

type MenuItemResponse struct {
	ItemID      string  `json:"item_id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description *string `json:"description"`
	Category    string  `json:"category"`
	CreatedAt   string  `json:"created_at,omitempty"`
}

type LineItemResponse struct {
	Item     MenuItemResponse `json:"item"`
	Quantity int64            `json:"quantity"`
}

type OrderResponse struct {
	OrderID     string             `json:"order_id"`
	OrderNumber string             `json:"order_number"`
	Items       []LineItemResponse `json:"items"`
	Subtotal    float64            `json:"subtotal"`
	DiscountPct float64            `json:"discount_pct"`
	Total       float64            `json:"total"`
	OrderDate   string             `json:"order_date"`
}

func required(field string, v *string) (string, error) {
	if v == nil {
		return "", fmt.Errorf("%w: %s is required", domain.ErrValidation, field)
	}
	return *v, nil
}

func parseAmount(field string, v any) (decimal.Decimal, error) {
	if v == nil {
		return decimal.Zero, fmt.Errorf("%w: %s is required", domain.ErrValidation, field)
	}
	d, err := money.Parse(v)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w", field, err)
	}
	return d, nil
}

func parsePrice(field string, v any) (decimal.Decimal, error) {
	d, err := parseAmount(field, v)
	if err != nil {
		return d, err
	}
	if !money.HasScale(d) || !money.FitsDigits(d, money.PriceDigits) {
		return decimal.Zero, fmt.Errorf("%w: %s must fit %d digits with %d decimal places",
			domain.ErrValidation, field, money.PriceDigits, money.Scale)
	}
	return d, nil
}

func (d MenuItemRequestDTO) toItem(prefix string) (domain.MenuItem, error) {
	var (
		m   domain.MenuItem
		err error
	)
	if m.Name, err = required(prefix+"name", d.Name); err != nil {
		return m, err
	}
	if m.Category, err = required(prefix+"category", d.Category); err != nil {
		return m, err
	}
	if m.Price, err = parsePrice(prefix+"price", d.Price); err != nil {
		return m, err
	}
	m.Description = d.Description
	return m, nil
}

func (d MenuItemRequestDTO) toInput() (service.MenuItemInput, error) {
	m, err := d.toItem("")
	if err != nil {
		return service.MenuItemInput{}, err
	}
	return service.MenuItemInput{
		Name:        m.Name,
		Price:       m.Price,
		Description: m.Description,
		Category:    m.Category,
	}, nil
}

func (d MenuItemRequestDTO) toPatch() (service.MenuItemPatch, error) {
	p := service.MenuItemPatch{
		Name:        d.Name,
		Description: d.Description,
		Category:    d.Category,
	}
	if d.Price != nil {
		price, err := parsePrice("price", d.Price)
		if err != nil {
			return p, err
		}
		p.Price = &price
	}
	return p, nil
}

func toLineItems(lines []LineItemRequestDTO) ([]domain.LineItem, error) {
	items := make([]domain.LineItem, len(lines))
	for i, l := range lines {
		prefix := fmt.Sprintf("items[%d].", i)
		if l.Item == nil {
			return nil, fmt.Errorf("%w: %sitem is required", domain.ErrValidation, prefix)
		}
		itemID, err := required(prefix+"item.item_id", l.Item.ItemID)
		if err != nil {
			return nil, err
		}
		item, err := l.Item.toItem(prefix + "item.")
		if err != nil {
			return nil, err
		}
		item.ItemID = itemID
		if l.Item.CreatedAt != nil {
			item.CreatedAt = *l.Item.CreatedAt
		}
		if l.Quantity == nil {
			return nil, fmt.Errorf("%w: %squantity is required", domain.ErrValidation, prefix)
		}
		qty, err := money.ParseQuantity(l.Quantity)
		if err != nil {
			return nil, fmt.Errorf("%squantity: %w", prefix, err)
		}
		items[i] = domain.LineItem{Item: item, Quantity: qty}
	}
	return items, nil
}

func (d OrderRequestDTO) toInput() (service.OrderInput, error) {
	var in service.OrderInput
	if d.Items == nil {
		return in, domain.ErrMissingItems
	}
	items, err := toLineItems(*d.Items)
	if err != nil {
		return in, err
	}
	in.Items = items

	if d.DiscountPct != nil {
		if in.DiscountPct, err = parseAmount("discount_pct", d.DiscountPct); err != nil {
			return in, err
		}
	}
	if d.OrderNumber != nil {
		in.OrderNumber = *d.OrderNumber
	}
	if d.OrderDate != nil {
		in.OrderDate = *d.OrderDate
	}
	return in, nil
}

func (d OrderRequestDTO) toPatch() (service.OrderPatch, error) {
	p := service.OrderPatch{
		OrderNumber: d.OrderNumber,
		OrderDate:   d.OrderDate,
	}
	if d.Items != nil {
		items, err := toLineItems(*d.Items)
		if err != nil {
			return p, err
		}
		p.Items = items
	}
	if d.DiscountPct != nil {
		pct, err := parseAmount("discount_pct", d.DiscountPct)
		if err != nil {
			return p, err
		}
		p.DiscountPct = &pct
	}
	return p, nil
}

func toMenuItemResponse(m domain.MenuItem) MenuItemResponse {
	return MenuItemResponse{
		ItemID:      m.ItemID,
		Name:        m.Name,
		Price:       money.Float(m.Price),
		Description: m.Description,
		Category:    m.Category,
		CreatedAt:   m.CreatedAt,
	}
}

func toOrderResponse(o domain.Order) OrderResponse {
	items := make([]LineItemResponse, len(o.Items))
	for i, l := range o.Items {
		items[i] = LineItemResponse{Item: toMenuItemResponse(l.Item), Quantity: l.Quantity}
	}
	return OrderResponse{
		OrderID:     o.OrderID,
		OrderNumber: o.OrderNumber,
		Items:       items,
		Subtotal:    money.Float(o.Subtotal),
		DiscountPct: money.Float(o.DiscountPct),
		Total:       money.Float(o.Total),
		OrderDate:   o.OrderDate,
	}
}
