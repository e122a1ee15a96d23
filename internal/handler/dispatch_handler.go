// internal/handler/dispatch_handler.go
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"print-service/internal/repository"
	"print-service/internal/service"
	"print-service/internal/utils"
)

// DispatchHandler serves order printing operations
type DispatchHandler struct {
	dispatch *service.DispatchService
	logger   *utils.ServiceLogger
}

// NewDispatchHandler creates a new dispatch handler
func NewDispatchHandler(dispatch *service.DispatchService, logger *zap.Logger) *DispatchHandler {
	return &DispatchHandler{
		dispatch: dispatch,
		logger:   utils.NewServiceLogger(logger, "dispatch-handler"),
	}
}

// RegisterRoutes registers dispatch routes
func (h *DispatchHandler) RegisterRoutes(router *gin.RouterGroup) {
	orders := router.Group("/orders")
	{
		orders.POST("/:order_id/comanda", h.PrintComandas)
		orders.POST("/:order_id/ticket", h.PrintTicket)
	}

	router.GET("/jobs", h.ListJobs)
}

// comandaRequest carries per-request print options
type comandaRequest struct {
	Priority bool `json:"priority"`
}

// PrintComandas prints production tickets for an order
// @Summary Print comandas
// @Description Print one comanda per production area with items on the order. Per-area outcomes are reported; a failing area never blocks the rest.
// @Tags Orders
// @Accept json
// @Produce json
// @Param order_id path string true "Order ID"
// @Param request body comandaRequest false "Options"
// @Success 200 {object} utils.APIResponse "Per-area results"
// @Failure 404 {object} utils.APIResponse "Order not found"
// @Router /api/v1/orders/{order_id}/comanda [post]
func (h *DispatchHandler) PrintComandas(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("order_id"))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid order id", err)
		return
	}

	var req comandaRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
			return
		}
	}

	results, err := h.dispatch.PrintComandas(c.Request.Context(), orderID, req.Priority)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			utils.ErrorResponse(c, http.StatusNotFound, "Order not found", err)
			return
		}
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to print comandas", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Comandas dispatched", results)
}

// PrintTicket prints the customer receipt for an order
// @Summary Print ticket
// @Description Print the customer receipt on the branch's general printer
// @Tags Orders
// @Produce json
// @Param order_id path string true "Order ID"
// @Success 200 {object} utils.APIResponse{data=model.PrintJob}
// @Failure 404 {object} utils.APIResponse "Order not found"
// @Router /api/v1/orders/{order_id}/ticket [post]
func (h *DispatchHandler) PrintTicket(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("order_id"))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid order id", err)
		return
	}

	job, err := h.dispatch.PrintTicket(c.Request.Context(), orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			utils.ErrorResponse(c, http.StatusNotFound, "Order not found", err)
			return
		}
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to print ticket", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Ticket dispatched", job)
}

// ListJobs returns the recent print job history
// @Summary List print jobs
// @Description Return recent print attempts, most recent first
// @Tags Jobs
// @Produce json
// @Success 200 {object} utils.APIResponse{data=[]model.PrintJob}
// @Router /api/v1/jobs [get]
func (h *DispatchHandler) ListJobs(c *gin.Context) {
	utils.SuccessResponse(c, http.StatusOK, "Jobs retrieved", h.dispatch.History())
}
