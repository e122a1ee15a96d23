// internal/handler/printer_handler.go
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"print-service/internal/config"
	"print-service/internal/model"
	"print-service/internal/repository"
	"print-service/internal/routing"
	"print-service/internal/service"
	"print-service/internal/transport"
	"print-service/internal/utils"
)

// PrinterHandler serves printer configuration and routing setup
type PrinterHandler struct {
	printers *service.PrinterService
	dispatch *service.DispatchService
	config   *config.Config
	logger   *utils.ServiceLogger
	zlog     *zap.Logger
}

// NewPrinterHandler creates a new printer handler
func NewPrinterHandler(
	printers *service.PrinterService,
	dispatch *service.DispatchService,
	cfg *config.Config,
	logger *zap.Logger,
) *PrinterHandler {
	return &PrinterHandler{
		printers: printers,
		dispatch: dispatch,
		config:   cfg,
		logger:   utils.NewServiceLogger(logger, "printer-handler"),
		zlog:     logger,
	}
}

// RegisterRoutes registers printer management routes
func (h *PrinterHandler) RegisterRoutes(router *gin.RouterGroup) {
	printers := router.Group("/printers")
	{
		printers.GET("", h.ListPrinters)
		printers.POST("", h.CreatePrinter)
		printers.GET("/:id", h.GetPrinter)
		printers.PUT("/:id", h.UpdatePrinter)
		printers.DELETE("/:id", h.DeletePrinter)
		printers.POST("/:id/test", h.TestPrinter)
	}

	router.POST("/routing/auto-configure", h.AutoConfigure)
	router.POST("/discovery/scan", h.ScanNetwork)
}

// ListPrinters lists the printers of a branch
// @Summary List printers
// @Description List the printers configured for a branch
// @Tags Printers
// @Produce json
// @Param branch_id query string false "Branch ID"
// @Success 200 {object} utils.APIResponse{data=[]model.Printer}
// @Router /api/v1/printers [get]
func (h *PrinterHandler) ListPrinters(c *gin.Context) {
	branchID := uuid.Nil
	if raw := c.Query("branch_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			utils.ErrorResponse(c, http.StatusBadRequest, "Invalid branch_id", err)
			return
		}
		branchID = parsed
	}

	printers, err := h.printers.List(c.Request.Context(), branchID)
	if err != nil {
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to list printers", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Printers retrieved", printers)
}

// CreatePrinter registers a printer
// @Summary Create printer
// @Description Register a printer for a branch
// @Tags Printers
// @Accept json
// @Produce json
// @Param printer body model.Printer true "Printer"
// @Success 201 {object} utils.APIResponse{data=model.Printer}
// @Failure 400 {object} utils.APIResponse
// @Router /api/v1/printers [post]
func (h *PrinterHandler) CreatePrinter(c *gin.Context) {
	var printer model.Printer
	if err := c.ShouldBindJSON(&printer); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid printer payload", err)
		return
	}
	printer.ID = uuid.Nil

	if err := h.printers.Save(c.Request.Context(), &printer); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Failed to create printer", err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "Printer created", printer)
}

// GetPrinter returns one printer
// @Summary Get printer
// @Tags Printers
// @Produce json
// @Param id path string true "Printer ID"
// @Success 200 {object} utils.APIResponse{data=model.Printer}
// @Failure 404 {object} utils.APIResponse
// @Router /api/v1/printers/{id} [get]
func (h *PrinterHandler) GetPrinter(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid printer id", err)
		return
	}

	printer, err := h.printers.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			utils.ErrorResponse(c, http.StatusNotFound, "Printer not found", err)
			return
		}
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to get printer", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Printer retrieved", printer)
}

// UpdatePrinter updates a printer
// @Summary Update printer
// @Tags Printers
// @Accept json
// @Produce json
// @Param id path string true "Printer ID"
// @Param printer body model.Printer true "Printer"
// @Success 200 {object} utils.APIResponse{data=model.Printer}
// @Failure 404 {object} utils.APIResponse
// @Router /api/v1/printers/{id} [put]
func (h *PrinterHandler) UpdatePrinter(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid printer id", err)
		return
	}

	var printer model.Printer
	if err := c.ShouldBindJSON(&printer); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid printer payload", err)
		return
	}
	printer.ID = id

	if err := h.printers.Save(c.Request.Context(), &printer); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			utils.ErrorResponse(c, http.StatusNotFound, "Printer not found", err)
			return
		}
		utils.ErrorResponse(c, http.StatusBadRequest, "Failed to update printer", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Printer updated", printer)
}

// DeletePrinter removes a printer
// @Summary Delete printer
// @Tags Printers
// @Produce json
// @Param id path string true "Printer ID"
// @Success 200 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Router /api/v1/printers/{id} [delete]
func (h *PrinterHandler) DeletePrinter(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid printer id", err)
		return
	}

	if err := h.printers.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			utils.ErrorResponse(c, http.StatusNotFound, "Printer not found", err)
			return
		}
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to delete printer", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Printer deleted", nil)
}

// TestPrinter prints a test page
// @Summary Test printer
// @Description Print a connectivity test page on the printer
// @Tags Printers
// @Produce json
// @Param id path string true "Printer ID"
// @Success 200 {object} utils.APIResponse{data=model.PrintJob}
// @Failure 404 {object} utils.APIResponse
// @Router /api/v1/printers/{id}/test [post]
func (h *PrinterHandler) TestPrinter(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid printer id", err)
		return
	}

	job, err := h.dispatch.TestPrinter(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			utils.ErrorResponse(c, http.StatusNotFound, "Printer not found", err)
			return
		}
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to test printer", err)
		return
	}

	// The attempt itself is the result; failures are reported in the job
	utils.SuccessResponse(c, http.StatusOK, "Test print attempted", job)
}

// autoConfigureRequest selects the branch to configure
type autoConfigureRequest struct {
	BranchID uuid.UUID `json:"branch_id" binding:"required"`
}

// AutoConfigure applies keyword-based category assignments
// @Summary Auto-configure routing
// @Description Assign each category of the branch to a printer using name heuristics
// @Tags Routing
// @Accept json
// @Produce json
// @Param request body autoConfigureRequest true "Branch"
// @Success 200 {object} utils.APIResponse{data=routing.Plan}
// @Failure 409 {object} utils.APIResponse "No printers configured"
// @Router /api/v1/routing/auto-configure [post]
func (h *PrinterHandler) AutoConfigure(c *gin.Context) {
	var req autoConfigureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request", err)
		return
	}

	plan, err := h.printers.AutoConfigure(c.Request.Context(), req.BranchID)
	if err != nil {
		if errors.Is(err, routing.ErrNoPrinters) {
			utils.ErrorResponse(c, http.StatusConflict, "No printers configured for branch", err)
			return
		}
		utils.ErrorResponse(c, http.StatusInternalServerError, "Auto-configure failed", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Routing configured", plan)
}

// scanRequest selects the subnet to probe
type scanRequest struct {
	Subnet string `json:"subnet" binding:"required"`
	Port   int    `json:"port"`
}

// ScanNetwork probes a subnet for raw-printing hosts
// @Summary Scan for printers
// @Description Probe a /24 subnet for hosts listening on the raw printing port
// @Tags Discovery
// @Accept json
// @Produce json
// @Param request body scanRequest true "Scan parameters"
// @Success 200 {object} utils.APIResponse{data=[]transport.ScanResult}
// @Failure 400 {object} utils.APIResponse
// @Router /api/v1/discovery/scan [post]
func (h *PrinterHandler) ScanNetwork(c *gin.Context) {
	var req scanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request", err)
		return
	}

	port := req.Port
	if port == 0 {
		port = h.config.Printing.DefaultPort
	}

	results, err := transport.ScanNetwork(
		c.Request.Context(),
		req.Subnet,
		port,
		h.config.Printing.ScanTimeout,
		h.zlog,
	)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Scan failed", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Scan completed", results)
}
