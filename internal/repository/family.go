package repository

import "github.com/fjod/restaurant/internal/domain"

// keyPlaceholder addresses the primary-key attribute in backend expressions.
const keyPlaceholder = "pk"

// Field is an updatable attribute and the fixed token backends use to address it.
// Expressions are assembled from tokens only, never from caller-supplied names.
type Field struct {
	Name        string
	Placeholder string
}

// Family describes one record collection: where it lives, its key attribute and the
// allow-list of attributes MergeUpdate may touch.
type Family struct {
	Name   string
	Key    string
	Fields []Field
}

func (f Family) Field(name string) (Field, bool) {
	for _, field := range f.Fields {
		if field.Name == name {
			return field, true
		}
	}
	return Field{}, false
}

var MenuItems = Family{
	Name: "menu_items",
	Key:  domain.MenuFieldItemID,
	Fields: []Field{
		{Name: domain.MenuFieldName, Placeholder: "nm"},
		{Name: domain.MenuFieldPrice, Placeholder: "pr"},
		{Name: domain.MenuFieldDescription, Placeholder: "ds"},
		{Name: domain.MenuFieldCategory, Placeholder: "ct"},
		{Name: domain.MenuFieldCreatedAt, Placeholder: "ca"},
	},
}

var Orders = Family{
	Name: "orders",
	Key:  domain.OrderFieldOrderID,
	Fields: []Field{
		{Name: domain.OrderFieldOrderNumber, Placeholder: "on"},
		{Name: domain.OrderFieldItems, Placeholder: "it"},
		{Name: domain.OrderFieldSubtotal, Placeholder: "st"},
		{Name: domain.OrderFieldDiscountPct, Placeholder: "dp"},
		{Name: domain.OrderFieldTotal, Placeholder: "tt"},
		{Name: domain.OrderFieldOrderDate, Placeholder: "od"},
	},
}
