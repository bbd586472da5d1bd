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

type OrderService interface {
	Create(ctx context.Context, in service.OrderInput) (domain.Order, error)
	Get(ctx context.Context, orderID string) (domain.Order, error)
	List(ctx context.Context) ([]domain.Order, error)
	Replace(ctx context.Context, orderID string, in service.OrderInput) (domain.Order, error)
	Patch(ctx context.Context, orderID string, p service.OrderPatch) (domain.Order, error)
	Delete(ctx context.Context, orderID string) error
}

type OrderHandler struct {
	orders   OrderService
	logger   *slog.Logger
	timeout  time.Duration
	maxBytes int64
}

func NewOrderHandler(orders OrderService, logger *slog.Logger, timeout time.Duration, maxBytes int64) *OrderHandler {
	return &OrderHandler{
		orders:   orders,
		logger:   logger,
		timeout:  timeout,
		maxBytes: maxBytes,
	}
}

func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req OrderRequestDTO
	if err := decodeJSON(w, r, h.maxBytes, &req); err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	in, err := req.toInput()
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	order, err := h.orders.Create(ctx, in)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, toOrderResponse(order))
}

func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	orders, err := h.orders.List(ctx)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	resp := make([]OrderResponse, len(orders))
	for i, o := range orders {
		resp[i] = toOrderResponse(o)
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	order, err := h.orders.Get(ctx, chi.URLParam(r, "order_id"))
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, toOrderResponse(order))
}

func (h *OrderHandler) Replace(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req OrderRequestDTO
	if err := decodeJSON(w, r, h.maxBytes, &req); err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	in, err := req.toInput()
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	order, err := h.orders.Replace(ctx, chi.URLParam(r, "order_id"), in)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, toOrderResponse(order))
}

func (h *OrderHandler) Patch(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req OrderRequestDTO
	if err := decodeJSON(w, r, h.maxBytes, &req); err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	p, err := req.toPatch()
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	order, err := h.orders.Patch(ctx, chi.URLParam(r, "order_id"), p)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, toOrderResponse(order))
}

func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.orders.Delete(ctx, chi.URLParam(r, "order_id")); err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
