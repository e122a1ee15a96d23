// internal/handler/print_handler.go
package handler

import (
	"encoding/base64"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"print-service/internal/config"
	"print-service/internal/escpos"
	"print-service/internal/model"
	"print-service/internal/service"
	"print-service/internal/utils"
)

// PrintHandler serves the bridge wire protocol: remote POS services post
// pre-formatted payloads here and this service puts them on the printer.
// The envelope is the flat {success, message|error} shape bridge clients
// expect, not the richer APIResponse used by the management API.
type PrintHandler struct {
	dispatch *service.DispatchService
	config   *config.Config
	logger   *utils.ServiceLogger
}

// NewPrintHandler creates a new print handler
func NewPrintHandler(dispatch *service.DispatchService, cfg *config.Config, logger *zap.Logger) *PrintHandler {
	return &PrintHandler{
		dispatch: dispatch,
		config:   cfg,
		logger:   utils.NewServiceLogger(logger, "print-handler"),
	}
}

// RegisterRoutes registers bridge protocol routes
func (h *PrintHandler) RegisterRoutes(router *gin.Engine) {
	router.POST("/print", h.Print)
	router.GET("/status", h.Status)
}

// printRequest is the bridge protocol request body
type printRequest struct {
	Type    string      `json:"type" binding:"required"`
	Data    string      `json:"data"`
	Printer printTarget `json:"printer" binding:"required"`
}

// printTarget identifies the destination printer
type printTarget struct {
	Name           string `json:"name" binding:"required"`
	ConnectionType string `json:"connection_type" binding:"required"`
	Address        string `json:"ip_address"`
	Port           int    `json:"port"`
}

// Print handles a bridge print request
// @Summary Print a payload
// @Description Deliver a base64 ESC/POS payload (type=raw) or a generated test page (type=test) to a printer
// @Tags Bridge
// @Accept json
// @Produce json
// @Param request body printRequest true "Print request"
// @Success 200 {object} object{success=bool,message=string} "Payload delivered"
// @Failure 400 {object} object{success=bool,error=string} "Malformed request or unknown type"
// @Failure 500 {object} object{success=bool,error=string} "Delivery failed"
// @Router /print [post]
func (h *PrintHandler) Print(c *gin.Context) {
	var req printRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	printer := &model.Printer{
		Name:           req.Printer.Name,
		ConnectionType: model.ConnectionType(req.Printer.ConnectionType),
		Address:        req.Printer.Address,
		Port:           req.Printer.Port,
		PaperWidth:     80,
	}

	var payload []byte
	switch req.Type {
	case "raw":
		data, err := base64.StdEncoding.DecodeString(req.Data)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid base64 data"})
			return
		}
		if len(data) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "empty payload"})
			return
		}
		payload = data

	case "test":
		payload = escpos.FormatTestPage(printer.Name, time.Now(), escpos.Settings{
			BusinessName:   h.config.Printing.BusinessName,
			FooterMessage:  h.config.Printing.FooterMessage,
			CurrencySymbol: h.config.Printing.CurrencySymbol,
			Width:          escpos.WidthForPaper(printer.PaperWidth),
		})

	default:
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "unknown print type: " + req.Type})
		return
	}

	job := h.dispatch.PrintRaw(c.Request.Context(), printer, payload)
	if !job.Success {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": job.Message})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": job.Message})
}

// Status reports bridge availability
// @Summary Bridge status
// @Description Report that the bridge is online and its version
// @Tags Bridge
// @Produce json
// @Success 200 {object} object{status=string,bridge=string} "Bridge is online"
// @Router /status [get]
func (h *PrintHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "online",
		"bridge": h.config.App.Version,
	})
}
