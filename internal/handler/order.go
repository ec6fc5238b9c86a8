package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"tavola-rest-api/internal/model"
	"tavola-rest-api/internal/service"
	"tavola-rest-api/pkg/apierror"
	"tavola-rest-api/pkg/response"
)

// OrderHandler handles order HTTP requests.
type OrderHandler struct {
	orderService *service.OrderService
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(orderService *service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// OrderItemRequest is one line of an order request.
type OrderItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int64  `json:"quantity" validate:"required,min=1"`
}

// CreateOrderRequest is the body of POST /api/v1/orders.
type CreateOrderRequest struct {
	CustomerID string             `json:"customer_id" validate:"required"`
	Items      []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
	CouponCode string             `json:"coupon_code"`
	Note       string             `json:"note" validate:"max=500"`
}

// Create handles POST /api/v1/orders
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if apiErr := decodeAndValidate(r, &req); apiErr != nil {
		response.Error(w, apiErr)
		return
	}

	items := make([]service.ItemRequest, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, service.ItemRequest{ProductID: it.ProductID, Quantity: it.Quantity})
	}

	order, err := h.orderService.Create(r.Context(), req.CustomerID, items, req.CouponCode, req.Note)
	if err != nil {
		response.Error(w, mapError(err))
		return
	}
	response.Created(w, order)
}

// Get handles GET /api/v1/orders/{id}
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.Error(w, apierror.BadRequest("id is required"))
		return
	}

	order, err := h.orderService.Get(r.Context(), id)
	if err != nil {
		response.Error(w, mapError(err))
		return
	}
	response.OK(w, order)
}

// List handles GET /api/v1/orders
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	f := model.OrderFilter{
		CustomerID: r.URL.Query().Get("customer_id"),
		Status:     r.URL.Query().Get("status"),
		Page:       queryInt(r, "page", 1),
		Limit:      queryInt(r, "limit", 20),
	}
	if raw := r.URL.Query().Get("from"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			f.From = &t
		}
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			f.To = &t
		}
	}

	orders, total, err := h.orderService.List(r.Context(), f)
	if err != nil {
		response.Error(w, mapError(err))
		return
	}
	response.JSONWithMeta(w, http.StatusOK, orders, f.Page, f.Limit, total)
}

// UpdateStatusRequest is the body of PATCH /api/v1/orders/{id}/status.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending confirmed preparing out_for_delivery delivered cancelled"`
}

// UpdateStatus handles PATCH /api/v1/orders/{id}/status
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.Error(w, apierror.BadRequest("id is required"))
		return
	}

	var req UpdateStatusRequest
	if apiErr := decodeAndValidate(r, &req); apiErr != nil {
		response.Error(w, apiErr)
		return
	}

	order, err := h.orderService.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		response.Error(w, mapError(err))
		return
	}
	response.OK(w, order)
}

// Pay handles POST /api/v1/orders/{id}/pay
func (h *OrderHandler) Pay(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.Error(w, apierror.BadRequest("id is required"))
		return
	}

	if err := h.orderService.Pay(r.Context(), id); err != nil {
		response.Error(w, mapError(err))
		return
	}

	response.OK(w, map[string]interface{}{
		"id":   id,
		"paid": true,
	})
}
