package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/fjod/restaurant/internal/domain"
	"github.com/fjod/restaurant/internal/service"
	"github.com/go-chi/chi/v5"
)

type MenuService interface {
	Create(ctx context.Context, in service.MenuItemInput) (domain.MenuItem, error)
	Get(ctx context.Context, itemID string) (domain.MenuItem, error)
	List(ctx context.Context) ([]domain.MenuItem, error)
	Replace(ctx context.Context, itemID string, in service.MenuItemInput) (domain.MenuItem, error)
	Patch(ctx context.Context, itemID string, p service.MenuItemPatch) (domain.MenuItem, error)
	Delete(ctx context.Context, itemID string) error
}

type MenuHandler struct {
	menu     MenuService
	logger   *slog.Logger
	timeout  time.Duration
	maxBytes int64
}

func NewMenuHandler(menu MenuService, logger *slog.Logger, timeout time.Duration, maxBytes int64) *MenuHandler {
	return &MenuHandler{
		menu:     menu,
		logger:   logger,
		timeout:  timeout,
		maxBytes: maxBytes,
	}
}

func (h *MenuHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req MenuItemRequestDTO
	if err := decodeJSON(w, r, h.maxBytes, &req); err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	in, err := req.toInput()
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	item, err := h.menu.Create(ctx, in)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, toMenuItemResponse(item))
}

func (h *MenuHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	items, err := h.menu.List(ctx)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	resp := make([]MenuItemResponse, len(items))
	for i, item := range items {
		resp[i] = toMenuItemResponse(item)
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *MenuHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	item, err := h.menu.Get(ctx, chi.URLParam(r, "item_id"))
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, toMenuItemResponse(item))
}

func (h *MenuHandler) Replace(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req MenuItemRequestDTO
	if err := decodeJSON(w, r, h.maxBytes, &req); err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	in, err := req.toInput()
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	item, err := h.menu.Replace(ctx, chi.URLParam(r, "item_id"), in)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, toMenuItemResponse(item))
}

func (h *MenuHandler) Patch(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req MenuItemRequestDTO
	if err := decodeJSON(w, r, h.maxBytes, &req); err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	p, err := req.toPatch()
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	item, err := h.menu.Patch(ctx, chi.URLParam(r, "item_id"), p)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, toMenuItemResponse(item))
}

func (h *MenuHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.menu.Delete(ctx, chi.URLParam(r, "item_id")); err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
