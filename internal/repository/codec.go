package repository

import (
	"fmt"

	"github.com/fjod/restaurant/internal/domain"
	"github.com/fjod/restaurant/internal/money"
)

type MenuItemCodec struct{}

func (MenuItemCodec) Encode(m domain.MenuItem) Document {
	return Document{
		domain.MenuFieldItemID:      m.ItemID,
		domain.MenuFieldName:        m.Name,
		domain.MenuFieldPrice:       m.Price,
		domain.MenuFieldDescription: optional(m.Description),
		domain.MenuFieldCategory:    m.Category,
		domain.MenuFieldCreatedAt:   m.CreatedAt,
	}
}

func (MenuItemCodec) Decode(doc Document) (domain.MenuItem, error) {
	var (
		m   domain.MenuItem
		err error
	)
	if m.ItemID, err = getString(doc, domain.MenuFieldItemID); err != nil {
		return m, err
	}
	if m.Name, err = getString(doc, domain.MenuFieldName); err != nil {
		return m, err
	}
	if m.Price, err = getDecimal(doc, domain.MenuFieldPrice); err != nil {
		return m, err
	}
	if m.Description, err = getOptionalString(doc, domain.MenuFieldDescription); err != nil {
		return m, err
	}
	if m.Category, err = getString(doc, domain.MenuFieldCategory); err != nil {
		return m, err
	}
	if m.CreatedAt, err = getString(doc, domain.MenuFieldCreatedAt); err != nil {
		return m, err
	}
	return m, nil
}

func (MenuItemCodec) SetKey(m *domain.MenuItem, key string) {
	m.ItemID = key
}

type OrderCodec struct{}

func (c OrderCodec) Encode(o domain.Order) Document {
	return Document{
		domain.OrderFieldOrderID:     o.OrderID,
		domain.OrderFieldOrderNumber: o.OrderNumber,
		domain.OrderFieldItems:       c.EncodeItems(o.Items),
		domain.OrderFieldSubtotal:    o.Subtotal,
		domain.OrderFieldDiscountPct: o.DiscountPct,
		domain.OrderFieldTotal:       o.Total,
		domain.OrderFieldOrderDate:   o.OrderDate,
	}
}

// EncodeItems renders line items as a list of embedded documents, preserving order.
func (OrderCodec) EncodeItems(items []domain.LineItem) []any {
	out := make([]any, len(items))
	for i, line := range items {
		out[i] = Document{
			domain.LineFieldItem:     MenuItemCodec{}.Encode(line.Item),
			domain.LineFieldQuantity: line.Quantity,
		}
	}
	return out
}

func (OrderCodec) Decode(doc Document) (domain.Order, error) {
	var (
		o   domain.Order
		err error
	)
	if o.OrderID, err = getString(doc, domain.OrderFieldOrderID); err != nil {
		return o, err
	}
	if o.OrderNumber, err = getString(doc, domain.OrderFieldOrderNumber); err != nil {
		return o, err
	}
	if o.Items, err = decodeItems(doc[domain.OrderFieldItems]); err != nil {
		return o, err
	}
	if o.Subtotal, err = getDecimal(doc, domain.OrderFieldSubtotal); err != nil {
		return o, err
	}
	if o.DiscountPct, err = getDecimal(doc, domain.OrderFieldDiscountPct); err != nil {
		return o, err
	}
	if o.Total, err = getDecimal(doc, domain.OrderFieldTotal); err != nil {
		return o, err
	}
	if o.OrderDate, err = getString(doc, domain.OrderFieldOrderDate); err != nil {
		return o, err
	}
	return o, nil
}

func (OrderCodec) SetKey(o *domain.Order, key string) {
	o.OrderID = key
}

func decodeItems(v any) ([]domain.LineItem, error) {
	if v == nil {
		return []domain.LineItem{}, nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("field %q: expected list, got %T", domain.OrderFieldItems, v)
	}

	items := make([]domain.LineItem, len(list))
	for i, raw := range list {
		lineDoc, err := getDocument(raw)
		if err != nil {
			return nil, fmt.Errorf("items[%d]: %w", i, err)
		}
		itemDoc, err := getDocument(lineDoc[domain.LineFieldItem])
		if err != nil {
			return nil, fmt.Errorf("items[%d].item: %w", i, err)
		}
		item, err := MenuItemCodec{}.Decode(itemDoc)
		if err != nil {
			return nil, fmt.Errorf("items[%d].item: %w", i, err)
		}
		qty, err := money.ParseQuantity(lineDoc[domain.LineFieldQuantity])
		if err != nil {
			return nil, fmt.Errorf("items[%d].quantity: %w", i, err)
		}
		items[i] = domain.LineItem{Item: item, Quantity: qty}
	}
	return items, nil
}

func optional(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
