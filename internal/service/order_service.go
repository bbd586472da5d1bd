package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/fjod/restaurant/internal/cache"
	"github.com/fjod/restaurant/internal/domain"
	"github.com/fjod/restaurant/internal/events"
	"github.com/fjod/restaurant/internal/pricing"
	"github.com/fjod/restaurant/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderInput holds the caller-writable fields of an order. Empty OrderNumber and OrderDate
// are filled in by the service.
type OrderInput struct {
	OrderNumber string
	Items       []domain.LineItem
	DiscountPct decimal.Decimal
	OrderDate   string
}

// OrderPatch marks absent fields with nil.
type OrderPatch struct {
	OrderNumber *string
	Items       []domain.LineItem
	DiscountPct *decimal.Decimal
	OrderDate   *string
}

type OrderService struct {
	rec         records[domain.Order]
	now         func() time.Time
	orderNumber func() string
}

func NewOrderService(store Store[domain.Order], c cache.RecordCache[domain.Order], pub events.Publisher, logger *slog.Logger) *OrderService {
	return &OrderService{
		rec: records[domain.Order]{
			kind:   "order",
			store:  store,
			cache:  c,
			events: pub,
			logger: logger,
		},
		now:         time.Now,
		orderNumber: newOrderNumber,
	}
}

// Create prices the order and stores it. Caller-supplied totals never reach this point.
func (s *OrderService) Create(ctx context.Context, in OrderInput) (domain.Order, error) {
	if err := validateOrderInput(in); err != nil {
		return domain.Order{}, err
	}

	order := domain.Order{
		OrderNumber: in.OrderNumber,
		Items:       in.Items,
		DiscountPct: in.DiscountPct,
		OrderDate:   in.OrderDate,
	}
	if order.OrderNumber == "" {
		order.OrderNumber = s.orderNumber()
	}
	if order.OrderDate == "" {
		order.OrderDate = domain.OrderDateStamp(s.now())
	}
	if err := pricing.Apply(&order); err != nil {
		return domain.Order{}, err
	}

	return s.rec.create(ctx, order, orderKey, events.OrderCreated)
}

func (s *OrderService) Get(ctx context.Context, orderID string) (domain.Order, error) {
	return s.rec.get(ctx, orderID)
}

func (s *OrderService) List(ctx context.Context) ([]domain.Order, error) {
	return s.rec.list(ctx)
}

// Replace re-prices and rewrites the order. The order number is kept unless one is supplied;
// the order date is refreshed unless one is supplied.
func (s *OrderService) Replace(ctx context.Context, orderID string, in OrderInput) (domain.Order, error) {
	if err := validateOrderInput(in); err != nil {
		return domain.Order{}, err
	}
	totals, err := pricing.Compute(in.Items, in.DiscountPct)
	if err != nil {
		return domain.Order{}, err
	}
	if _, err := s.rec.mustExist(ctx, orderID); err != nil {
		return domain.Order{}, err
	}

	orderDate := in.OrderDate
	if orderDate == "" {
		orderDate = domain.OrderDateStamp(s.now())
	}
	patch := repository.Patch{
		domain.OrderFieldItems:       repository.OrderCodec{}.EncodeItems(in.Items),
		domain.OrderFieldDiscountPct: in.DiscountPct,
		domain.OrderFieldSubtotal:    totals.Subtotal,
		domain.OrderFieldTotal:       totals.Total,
		domain.OrderFieldOrderDate:   orderDate,
	}
	if in.OrderNumber != "" {
		patch[domain.OrderFieldOrderNumber] = in.OrderNumber
	}
	return s.rec.merge(ctx, orderID, patch, events.OrderUpdated)
}

// Patch merges the supplied fields. When items or discount_pct change, subtotal and total are
// recomputed from the stored order combined with the patch. Read, recompute and merge are
// separate store calls, so a concurrent writer can interleave between them.
func (s *OrderService) Patch(ctx context.Context, orderID string, p OrderPatch) (domain.Order, error) {
	patch := repository.Patch{}
	if p.OrderNumber != nil {
		if err := requireText("order_number", *p.OrderNumber); err != nil {
			return domain.Order{}, err
		}
		patch[domain.OrderFieldOrderNumber] = *p.OrderNumber
	}
	if p.OrderDate != nil {
		if err := requireText("order_date", *p.OrderDate); err != nil {
			return domain.Order{}, err
		}
		patch[domain.OrderFieldOrderDate] = *p.OrderDate
	}

	if p.Items != nil || p.DiscountPct != nil {
		if p.Items != nil {
			if err := validateItems(p.Items); err != nil {
				return domain.Order{}, err
			}
		}
		if p.DiscountPct != nil {
			if err := validateDiscount(*p.DiscountPct); err != nil {
				return domain.Order{}, err
			}
		}

		current, err := s.rec.mustExist(ctx, orderID)
		if err != nil {
			return domain.Order{}, err
		}
		items, pct := current.Items, current.DiscountPct
		if p.Items != nil {
			items = p.Items
			patch[domain.OrderFieldItems] = repository.OrderCodec{}.EncodeItems(items)
		}
		if p.DiscountPct != nil {
			pct = *p.DiscountPct
			patch[domain.OrderFieldDiscountPct] = pct
		}

		totals, err := pricing.Compute(items, pct)
		if err != nil {
			return domain.Order{}, err
		}
		patch[domain.OrderFieldSubtotal] = totals.Subtotal
		patch[domain.OrderFieldTotal] = totals.Total
	}

	return s.rec.merge(ctx, orderID, patch, events.OrderUpdated)
}

func (s *OrderService) Delete(ctx context.Context, orderID string) error {
	return s.rec.remove(ctx, orderID, events.OrderDeleted)
}

func validateOrderInput(in OrderInput) error {
	if err := validateItems(in.Items); err != nil {
		return err
	}
	return validateDiscount(in.DiscountPct)
}

// newOrderNumber returns 8 upper-case hex characters.
func newOrderNumber() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

func orderKey(o domain.Order) string {
	return o.OrderID
}
