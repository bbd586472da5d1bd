package service

import (
	"fmt"
	"strings"

	"github.com/fjod/restaurant/internal/domain"
	"github.com/fjod/restaurant/internal/money"
	"github.com/fjod/restaurant/internal/pricing"
	"github.com/shopspring/decimal"
)

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{domain.ErrValidation}, args...)...)
}

func requireText(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return validationError("%s is required", field)
	}
	return nil
}

func validatePrice(field string, price decimal.Decimal) error {
	if price.IsNegative() {
		return validationError("%s must not be negative", field)
	}
	if !money.HasScale(price) {
		return validationError("%s must have at most %d decimal places", field, money.Scale)
	}
	if !money.FitsDigits(price, money.PriceDigits) {
		return validationError("%s must have at most %d digits", field, money.PriceDigits)
	}
	return nil
}

func validateMenuItem(prefix string, m domain.MenuItem) error {
	if err := requireText(prefix+"name", m.Name); err != nil {
		return err
	}
	if err := requireText(prefix+"category", m.Category); err != nil {
		return err
	}
	return validatePrice(prefix+"price", m.Price)
}

func validateItems(items []domain.LineItem) error {
	if items == nil {
		return domain.ErrMissingItems
	}
	for i, line := range items {
		prefix := fmt.Sprintf("items[%d].", i)
		if line.Quantity < domain.MinQuantity || line.Quantity > domain.MaxQuantity {
			return validationError("%squantity must be between %d and %d", prefix, domain.MinQuantity, domain.MaxQuantity)
		}
		if err := requireText(prefix+"item.item_id", line.Item.ItemID); err != nil {
			return err
		}
		if err := validateMenuItem(prefix+"item.", line.Item); err != nil {
			return err
		}
	}
	return nil
}

func validateDiscount(pct decimal.Decimal) error {
	if err := pricing.ValidateDiscount(pct); err != nil {
		return err
	}
	if !money.HasScale(pct) {
		return fmt.Errorf("%w: at most %d decimal places", domain.ErrInvalidDiscount, money.Scale)
	}
	return nil
}
