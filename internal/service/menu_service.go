package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/fjod/restaurant/internal/cache"
	"github.com/fjod/restaurant/internal/domain"
	"github.com/fjod/restaurant/internal/events"
	"github.com/fjod/restaurant/internal/repository"
	"github.com/shopspring/decimal"
)

// MenuItemInput holds the caller-writable fields of a menu item.
type MenuItemInput struct {
	Name        string
	Price       decimal.Decimal
	Description *string
	Category    string
}

// MenuItemPatch marks absent fields with nil.
type MenuItemPatch struct {
	Name        *string
	Price       *decimal.Decimal
	Description *string
	Category    *string
}

type MenuService struct {
	rec records[domain.MenuItem]
	now func() time.Time
}

func NewMenuService(store Store[domain.MenuItem], c cache.RecordCache[domain.MenuItem], pub events.Publisher, logger *slog.Logger) *MenuService {
	return &MenuService{
		rec: records[domain.MenuItem]{
			kind:   "menu item",
			store:  store,
			cache:  c,
			events: pub,
			logger: logger,
		},
		now: time.Now,
	}
}

func (s *MenuService) Create(ctx context.Context, in MenuItemInput) (domain.MenuItem, error) {
	item := in.toItem()
	if err := validateMenuItem("", item); err != nil {
		return domain.MenuItem{}, err
	}
	item.CreatedAt = domain.CreatedAtStamp(s.now())

	return s.rec.create(ctx, item, menuItemKey, events.MenuItemCreated)
}

func (s *MenuService) Get(ctx context.Context, itemID string) (domain.MenuItem, error) {
	return s.rec.get(ctx, itemID)
}

func (s *MenuService) List(ctx context.Context) ([]domain.MenuItem, error) {
	return s.rec.list(ctx)
}

// Replace rewrites every writable field. created_at is kept, and a nil description leaves
// the stored one untouched.
func (s *MenuService) Replace(ctx context.Context, itemID string, in MenuItemInput) (domain.MenuItem, error) {
	item := in.toItem()
	if err := validateMenuItem("", item); err != nil {
		return domain.MenuItem{}, err
	}
	if _, err := s.rec.mustExist(ctx, itemID); err != nil {
		return domain.MenuItem{}, err
	}

	patch := repository.Patch{
		domain.MenuFieldName:        item.Name,
		domain.MenuFieldPrice:       item.Price,
		domain.MenuFieldDescription: item.Description,
		domain.MenuFieldCategory:    item.Category,
	}
	return s.rec.merge(ctx, itemID, patch, events.MenuItemUpdated)
}

func (s *MenuService) Patch(ctx context.Context, itemID string, p MenuItemPatch) (domain.MenuItem, error) {
	patch := repository.Patch{}
	if p.Name != nil {
		if err := requireText("name", *p.Name); err != nil {
			return domain.MenuItem{}, err
		}
		patch[domain.MenuFieldName] = *p.Name
	}
	if p.Price != nil {
		if err := validatePrice("price", *p.Price); err != nil {
			return domain.MenuItem{}, err
		}
		patch[domain.MenuFieldPrice] = *p.Price
	}
	if p.Description != nil {
		patch[domain.MenuFieldDescription] = *p.Description
	}
	if p.Category != nil {
		if err := requireText("category", *p.Category); err != nil {
			return domain.MenuItem{}, err
		}
		patch[domain.MenuFieldCategory] = *p.Category
	}

	return s.rec.merge(ctx, itemID, patch, events.MenuItemUpdated)
}

func (s *MenuService) Delete(ctx context.Context, itemID string) error {
	return s.rec.remove(ctx, itemID, events.MenuItemDeleted)
}

func (in MenuItemInput) toItem() domain.MenuItem {
	return domain.MenuItem{
		Name:        in.Name,
		Price:       in.Price,
		Description: in.Description,
		Category:    in.Category,
	}
}

func menuItemKey(m domain.MenuItem) string {
	return m.ItemID
}
