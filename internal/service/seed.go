package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

func strPtr(s string) *string {
	return &s
}

// SampleMenu is the menu inserted by the -seed flag.
var SampleMenu = []MenuItemInput{
	{
		Name:        "Margherita Pizza",
		Price:       decimal.RequireFromString("12.99"),
		Description: strPtr("Classic tomato and mozzarella pizza"),
		Category:    "Pizza",
	},
	{
		Name:        "Spaghetti Carbonara",
		Price:       decimal.RequireFromString("14.99"),
		Description: strPtr("Creamy pasta with pancetta"),
		Category:    "Pasta",
	},
	{
		Name:        "Caesar Salad",
		Price:       decimal.RequireFromString("8.99"),
		Description: strPtr("Fresh romaine lettuce with Caesar dressing"),
		Category:    "Salad",
	},
}

// Seed creates every item of SampleMenu and returns the generated keys in order.
func (s *MenuService) Seed(ctx context.Context) ([]string, error) {
	keys := make([]string, 0, len(SampleMenu))
	for _, in := range SampleMenu {
		item, err := s.Create(ctx, in)
		if err != nil {
			return keys, fmt.Errorf("seed %q: %w", in.Name, err)
		}
		keys = append(keys, item.ItemID)
	}
	return keys, nil
}
