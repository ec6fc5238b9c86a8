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

// CouponHandler handles discount-code HTTP requests.
type CouponHandler struct {
	couponService *service.CouponService
}

// NewCouponHandler creates a new coupon handler.
func NewCouponHandler(couponService *service.CouponService) *CouponHandler {
	return &CouponHandler{couponService: couponService}
}

// List handles GET /api/v1/coupons
func (h *CouponHandler) List(w http.ResponseWriter, r *http.Request) {
	f := model.CouponFilter{
		Active: queryBool(r, "active"),
		Page:   queryInt(r, "page", 1),
		Limit:  queryInt(r, "limit", 20),
	}

	page, err := h.couponService.List(r.Context(), f)
	if err != nil {
		response.Error(w, mapError(err))
		return
	}
	response.JSONWithMeta(w, http.StatusOK, page.Items, f.Page, f.Limit, page.Total)
}

// Get handles GET /api/v1/coupons/{code}
func (h *CouponHandler) Get(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if code == "" {
		response.Error(w, apierror.BadRequest("code is required"))
		return
	}

	c, err := h.couponService.Get(r.Context(), code)
	if err != nil {
		response.Error(w, mapError(err))
		return
	}
	response.OK(w, c)
}

// CouponRequest is the body of coupon create/update operations.
type CouponRequest struct {
	Code        string     `json:"code" validate:"required,alphanum,max=32"`
	Type        string     `json:"type" validate:"required,oneof=percent fixed"`
	Value       float64    `json:"value" validate:"required,gt=0"`
	MinOrder    float64    `json:"min_order" validate:"min=0"`
	MaxDiscount float64    `json:"max_discount" validate:"min=0"`
	UsageLimit  int64      `json:"usage_limit" validate:"min=0"`
	Active      bool       `json:"active"`
	ExpiresAt   *time.Time `json:"expires_at"`
}

// Create handles POST /api/v1/coupons
func (h *CouponHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CouponRequest
	if apiErr := decodeAndValidate(r, &req); apiErr != nil {
		response.Error(w, apiErr)
		return
	}

	c := &model.Coupon{
		Code:        req.Code,
		Type:        req.Type,
		Value:       req.Value,
		MinOrder:    req.MinOrder,
		MaxDiscount: req.MaxDiscount,
		UsageLimit:  req.UsageLimit,
		Active:      req.Active,
		ExpiresAt:   req.ExpiresAt,
	}

	if err := h.couponService.Create(r.Context(), c); err != nil {
		response.Error(w, mapError(err))
		return
	}
	response.Created(w, c)
}

// Update handles PUT /api/v1/coupons/{code}
func (h *CouponHandler) Update(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if code == "" {
		response.Error(w, apierror.BadRequest("code is required"))
		return
	}

	var req CouponRequest
	if apiErr := decodeAndValidate(r, &req); apiErr != nil {
		response.Error(w, apiErr)
		return
	}

	existing, err := h.couponService.Get(r.Context(), code)
	if err != nil {
		response.Error(w, mapError(err))
		return
	}

	existing.Type = req.Type
	existing.Value = req.Value
	existing.MinOrder = req.MinOrder
	existing.MaxDiscount = req.MaxDiscount
	existing.UsageLimit = req.UsageLimit
	existing.Active = req.Active
	existing.ExpiresAt = req.ExpiresAt

	if err := h.couponService.Update(r.Context(), existing); err != nil {
		response.Error(w, mapError(err))
		return
	}
	response.OK(w, existing)
}

// Delete handles DELETE /api/v1/coupons/{code}
func (h *CouponHandler) Delete(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if code == "" {
		response.Error(w, apierror.BadRequest("code is required"))
		return
	}

	if err := h.couponService.Delete(r.Context(), code); err != nil {
		response.Error(w, mapError(err))
		return
	}
	response.NoContent(w)
}

// ValidateRequest is the body of POST /api/v1/coupons/validate.
type ValidateRequest struct {
	Code     string  `json:"code" validate:"required"`
	Subtotal float64 `json:"subtotal" validate:"required,gt=0"`
}

// Validate handles POST /api/v1/coupons/validate
func (h *CouponHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var req ValidateRequest
	if apiErr := decodeAndValidate(r, &req); apiErr != nil {
		response.Error(w, apiErr)
		return
	}

	c, discount, err := h.couponService.Validate(r.Context(), req.Code, req.Subtotal)
	if err != nil {
		response.Error(w, mapError(err))
		return
	}

	response.OK(w, map[string]interface{}{
		"coupon":   c,
		"discount": discount,
	})
}
