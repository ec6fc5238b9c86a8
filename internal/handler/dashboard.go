package handler

import (
	"net/http"

	"tavola-rest-api/internal/service"
	"tavola-rest-api/pkg/response"
)

// DashboardHandler handles admin dashboard HTTP requests.
type DashboardHandler struct {
	dashboardService *service.DashboardService
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// Overview handles GET /api/v1/dashboard
func (h *DashboardHandler) Overview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.dashboardService.Overview(r.Context())
	if err != nil {
		response.Error(w, mapError(err))
		return
	}
	response.OK(w, overview)
}

// Today handles GET /api/v1/dashboard/today
func (h *DashboardHandler) Today(w http.ResponseWriter, r *http.Request) {
	stats, err := h.dashboardService.Today(r.Context())
	if err != nil {
		response.Error(w, mapError(err))
		return
	}
	response.OK(w, stats)
}

// WeeklyRevenue handles GET /api/v1/dashboard/revenue/weekly
func (h *DashboardHandler) WeeklyRevenue(w http.ResponseWriter, r *http.Request) {
	points, err := h.dashboardService.WeeklyRevenue(r.Context())
	if err != nil {
		response.Error(w, mapError(err))
		return
	}
	response.OK(w, points)
}

// HourlySales handles GET /api/v1/dashboard/sales/hourly
func (h *DashboardHandler) HourlySales(w http.ResponseWriter, r *http.Request) {
	points, err := h.dashboardService.HourlySales(r.Context())
	if err != nil {
		response.Error(w, mapError(err))
		return
	}
	response.OK(w, points)
}

// TopProducts handles GET /api/v1/dashboard/products/top
func (h *DashboardHandler) TopProducts(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 0)
	products, err := h.dashboardService.TopProducts(r.Context(), limit)
	if err != nil {
		response.Error(w, mapError(err))
		return
	}
	response.OK(w, products)
}

// Activity handles GET /api/v1/dashboard/activity
func (h *DashboardHandler) Activity(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 10)
	activity, err := h.dashboardService.Recent(r.Context(), limit)
	if err != nil {
		response.Error(w, mapError(err))
		return
	}
	response.OK(w, activity)
}
