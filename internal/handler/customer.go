package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"tavola-rest-api/internal/model"
	"tavola-rest-api/internal/service"
	"tavola-rest-api/pkg/apierror"
	"tavola-rest-api/pkg/response"
)

// CustomerHandler handles customer HTTP requests.
type CustomerHandler struct {
	customerService *service.CustomerService
}

// NewCustomerHandler creates a new customer handler.
func NewCustomerHandler(customerService *service.CustomerService) *CustomerHandler {
	return &CustomerHandler{customerService: customerService}
}

// CreateCustomerRequest is the body of POST /api/v1/customers.
type CreateCustomerRequest struct {
	Name  string `json:"name" validate:"required,max=120"`
	Email string `json:"email" validate:"omitempty,email"`
	Phone string `json:"phone" validate:"max=32"`
}

// Create handles POST /api/v1/customers
func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateCustomerRequest
	if apiErr := decodeAndValidate(r, &req); apiErr != nil {
		response.Error(w, apiErr)
		return
	}

	c := &model.Customer{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	}

	if err := h.customerService.Create(r.Context(), c); err != nil {
		response.Error(w, mapError(err))
		return
	}
	response.Created(w, c)
}

// Get handles GET /api/v1/customers/{id}
func (h *CustomerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.Error(w, apierror.BadRequest("id is required"))
		return
	}

	c, err := h.customerService.Get(r.Context(), id)
	if err != nil {
		response.Error(w, mapError(err))
		return
	}
	response.OK(w, c)
}

// Behavior handles GET /api/v1/customers/{id}/behavior
func (h *CustomerHandler) Behavior(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.Error(w, apierror.BadRequest("id is required"))
		return
	}

	c, err := h.customerService.Get(r.Context(), id)
	if err != nil {
		response.Error(w, mapError(err))
		return
	}
	response.OK(w, c.Behavior)
}
