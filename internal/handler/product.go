package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"tavola-rest-api/internal/model"
	"tavola-rest-api/internal/service"
	"tavola-rest-api/pkg/apierror"
	"tavola-rest-api/pkg/response"
)

// ProductHandler handles menu-item HTTP requests.
type ProductHandler struct {
	productService *service.ProductService
}

// NewProductHandler creates a new product handler.
func NewProductHandler(productService *service.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// List handles GET /api/v1/products
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	f := model.ProductFilter{
		Category:  r.URL.Query().Get("category"),
		Available: queryBool(r, "available"),
		Search:    r.URL.Query().Get("search"),
		SortBy:    r.URL.Query().Get("sort_by"),
		Page:      queryInt(r, "page", 1),
		Limit:     queryInt(r, "limit", 20),
	}

	page, err := h.productService.List(r.Context(), f)
	if err != nil {
		response.Error(w, mapError(err))
		return
	}
	response.JSONWithMeta(w, http.StatusOK, page.Items, f.Page, f.Limit, page.Total)
}

// Get handles GET /api/v1/products/{id}
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.Error(w, apierror.BadRequest("id is required"))
		return
	}

	p, err := h.productService.Get(r.Context(), id)
	if err != nil {
		response.Error(w, mapError(err))
		return
	}
	response.OK(w, p)
}

// ProductRequest is the body of product create/update operations.
type ProductRequest struct {
	Name        string  `json:"name" validate:"required,max=120"`
	Description string  `json:"description" validate:"max=1000"`
	Category    string  `json:"category" validate:"required,max=60"`
	Price       float64 `json:"price" validate:"required,gt=0"`
	ImageURL    string  `json:"image_url" validate:"omitempty,url"`
	Available   bool    `json:"available"`
}

// Create handles POST /api/v1/products
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if apiErr := decodeAndValidate(r, &req); apiErr != nil {
		response.Error(w, apiErr)
		return
	}

	p := &model.Product{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
		Available:   req.Available,
	}

	if err := h.productService.Create(r.Context(), p); err != nil {
		response.Error(w, mapError(err))
		return
	}
	response.Created(w, p)
}

// Update handles PUT /api/v1/products/{id}
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.Error(w, apierror.BadRequest("id is required"))
		return
	}

	var req ProductRequest
	if apiErr := decodeAndValidate(r, &req); apiErr != nil {
		response.Error(w, apiErr)
		return
	}

	existing, err := h.productService.Get(r.Context(), id)
	if err != nil {
		response.Error(w, mapError(err))
		return
	}

	existing.Name = req.Name
	existing.Description = req.Description
	existing.Category = req.Category
	existing.Price = req.Price
	existing.ImageURL = req.ImageURL
	existing.Available = req.Available

	if err := h.productService.Update(r.Context(), existing); err != nil {
		response.Error(w, mapError(err))
		return
	}
	response.OK(w, existing)
}

// Delete handles DELETE /api/v1/products/{id}
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.Error(w, apierror.BadRequest("id is required"))
		return
	}

	if err := h.productService.Delete(r.Context(), id); err != nil {
		response.Error(w, mapError(err))
		return
	}
	response.NoContent(w)
}
