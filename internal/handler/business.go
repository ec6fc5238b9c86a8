package handler

import (
	"net/http"

	"tavola-rest-api/internal/model"
	"tavola-rest-api/internal/service"
	"tavola-rest-api/pkg/response"
)

// BusinessHandler handles business-settings HTTP requests.
type BusinessHandler struct {
	businessService *service.BusinessService
}

// NewBusinessHandler creates a new business handler.
func NewBusinessHandler(businessService *service.BusinessService) *BusinessHandler {
	return &BusinessHandler{businessService: businessService}
}

// Get handles GET /api/v1/business
func (h *BusinessHandler) Get(w http.ResponseWriter, r *http.Request) {
	b, err := h.businessService.Get(r.Context())
	if err != nil {
		response.Error(w, mapError(err))
		return
	}
	response.OK(w, b)
}

// UpdateBusinessRequest is the body of PUT /api/v1/business.
type UpdateBusinessRequest struct {
	Name        string  `json:"name" validate:"required,max=120"`
	Description string  `json:"description" validate:"max=500"`
	Phone       string  `json:"phone" validate:"max=32"`
	Address     string  `json:"address" validate:"max=300"`
	Open        bool    `json:"open"`
	OpeningHour int     `json:"opening_hour" validate:"min=0,max=23"`
	ClosingHour int     `json:"closing_hour" validate:"min=0,max=24"`
	DeliveryFee float64 `json:"delivery_fee" validate:"min=0"`
	MinOrder    float64 `json:"min_order" validate:"min=0"`
}

// Update handles PUT /api/v1/business
func (h *BusinessHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateBusinessRequest
	if apiErr := decodeAndValidate(r, &req); apiErr != nil {
		response.Error(w, apiErr)
		return
	}

	b := &model.Business{
		ID:          model.BusinessID,
		Name:        req.Name,
		Description: req.Description,
		Phone:       req.Phone,
		Address:     req.Address,
		Open:        req.Open,
		OpeningHour: req.OpeningHour,
		ClosingHour: req.ClosingHour,
		DeliveryFee: req.DeliveryFee,
		MinOrder:    req.MinOrder,
	}

	if err := h.businessService.Update(r.Context(), b); err != nil {
		response.Error(w, mapError(err))
		return
	}
	response.OK(w, b)
}

// SetOpenRequest is the body of POST /api/v1/business/status.
type SetOpenRequest struct {
	Open *bool `json:"open" validate:"required"`
}

// SetOpen handles POST /api/v1/business/status
func (h *BusinessHandler) SetOpen(w http.ResponseWriter, r *http.Request) {
	var req SetOpenRequest
	if apiErr := decodeAndValidate(r, &req); apiErr != nil {
		response.Error(w, apiErr)
		return
	}

	b, err := h.businessService.SetOpen(r.Context(), *req.Open)
	if err != nil {
		response.Error(w, mapError(err))
		return
	}
	response.OK(w, b)
}
