package v1

import (
	"net/http"
	"strconv"

	"github.com/flexprice/feeledger/internal/api/dto"
	ierr "github.com/flexprice/feeledger/internal/errors"
	"github.com/flexprice/feeledger/internal/logger"
	"github.com/flexprice/feeledger/internal/service"
	"github.com/flexprice/feeledger/internal/types"
	"github.com/gin-gonic/gin"
)

type AllocationHandler struct {
	balanceService service.BalanceService
	paymentService service.PaymentService
	logger         *logger.Logger
}

func NewAllocationHandler(
	balanceService service.BalanceService,
	paymentService service.PaymentService,
	logger *logger.Logger,
) *AllocationHandler {
	return &AllocationHandler{
		balanceService: balanceService,
		paymentService: paymentService,
		logger:         logger,
	}
}

func (h *AllocationHandler) bind(c *gin.Context) (*dto.AllocatePaymentRequest, bool) {
	var req dto.AllocatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Errorw("failed to bind request", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return nil, false
	}
	if err := req.Validate(); err != nil {
		c.Error(err)
		return nil, false
	}
	return &req, true
}

// PreviewAllocation godoc
// @Summary Preview a payment split
// @Description Compute how a payment would be split without changing the account
// @Tags Allocations
// @Accept json
// @Produce json
// @Param org_id path string true "Organization ID"
// @Param request body dto.AllocatePaymentRequest true "Payment amount"
// @Success 200 {object} allocation.Result
// @Failure 400 {object} middleware.ErrorResponse
// @Router /organizations/{org_id}/allocations/preview [post]
func (h *AllocationHandler) PreviewAllocation(c *gin.Context) {
	req, ok := h.bind(c)
	if !ok {
		return
	}

	result, err := h.balanceService.PreviewAllocation(c.Request.Context(), c.Param("org_id"), req.Amount)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// AllocatePayment godoc
// @Summary Allocate a payment
// @Description Split a payment and apply it to the organization's subscription account
// @Tags Allocations
// @Accept json
// @Produce json
// @Param org_id path string true "Organization ID"
// @Param request body dto.AllocatePaymentRequest true "Payment amount"
// @Success 200 {object} allocation.Result
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Router /organizations/{org_id}/allocations [post]
func (h *AllocationHandler) AllocatePayment(c *gin.Context) {
	req, ok := h.bind(c)
	if !ok {
		return
	}

	result, err := h.balanceService.AllocatePayment(c.Request.Context(), c.Param("org_id"), req.Amount)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ListAllocations godoc
// @Summary List allocations
// @Description List the recorded payment splits of an organization for a fiscal year
// @Tags Allocations
// @Produce json
// @Param org_id path string true "Organization ID"
// @Param fiscal_year query int false "Fiscal year, defaults to the current year"
// @Success 200 {object} dto.ListAllocationsResponse
// @Router /organizations/{org_id}/allocations [get]
func (h *AllocationHandler) ListAllocations(c *gin.Context) {
	year := types.CurrentFiscalYear()
	if raw := c.Query("fiscal_year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.Error(ierr.NewError("invalid fiscal year").
				WithHint("Fiscal year must be a positive number").
				WithReportableDetails(map[string]any{
					"fiscal_year": raw,
				}).
				Mark(ierr.ErrValidation))
			return
		}
		year = parsed
	}

	items, err := h.paymentService.ListAllocations(c.Request.Context(), c.Param("org_id"), year)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.NewListAllocationsResponse(items))
}
