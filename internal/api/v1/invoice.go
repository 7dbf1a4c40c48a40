package v1

import (
	"net/http"

	"github.com/flexprice/feeledger/internal/api/dto"
	"github.com/flexprice/feeledger/internal/logger"
	"github.com/flexprice/feeledger/internal/service"
	"github.com/gin-gonic/gin"
)

type InvoiceHandler struct {
	paymentService service.PaymentService
	logger         *logger.Logger
}

func NewInvoiceHandler(paymentService service.PaymentService, logger *logger.Logger) *InvoiceHandler {
	return &InvoiceHandler{
		paymentService: paymentService,
		logger:         logger,
	}
}

// CaptureInvoice godoc
// @Summary Capture invoice payment
// @Description Record that a pending invoice was paid in full and split its amount
// @Tags Invoices
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 200 {object} dto.CaptureInvoiceResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /invoices/{id}/capture [post]
func (h *InvoiceHandler) CaptureInvoice(c *gin.Context) {
	result, err := h.paymentService.CaptureInvoicePayment(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.logger.Errorw("failed to capture invoice", "invoice_id", c.Param("id"), "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.CaptureInvoiceResponse{
		Invoice:    dto.NewInvoiceResponse(result.Invoice),
		Allocation: result.Allocation,
	})
}
