package cron

import (
	"net/http"
	"time"

	"github.com/flexprice/feeledger/internal/api/dto"
	ierr "github.com/flexprice/feeledger/internal/errors"
	"github.com/flexprice/feeledger/internal/logger"
	"github.com/flexprice/feeledger/internal/service"
	"github.com/flexprice/feeledger/internal/validator"
	"github.com/gin-gonic/gin"
)

// RenewalHandler runs the yearly renewal for every organization
type RenewalHandler struct {
	renewalService service.RenewalService
	logger         *logger.Logger
}

func NewRenewalHandler(renewalService service.RenewalService, logger *logger.Logger) *RenewalHandler {
	return &RenewalHandler{
		renewalService: renewalService,
		logger:         logger,
	}
}

// RenewAll renews every active organization. A failing organization is
// reported in the response and never stops the others.
func (h *RenewalHandler) RenewAll(c *gin.Context) {
	h.logger.Infow("starting renewal cron job", "time", time.Now().UTC().Format(time.RFC3339))

	var req dto.RunRenewalRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.logger.Errorw("failed to parse request parameters", "error", err)
			c.Error(ierr.WithError(err).
				WithHint("Invalid request parameters").
				Mark(ierr.ErrValidation))
			return
		}
	}
	if err := validator.ValidateRequest(&req); err != nil {
		c.Error(err)
		return
	}

	result, err := h.renewalService.RunRenewalForAll(c.Request.Context(), req.TargetYear())
	if err != nil {
		h.logger.Errorw("renewal cron job failed", "error", err)
		c.Error(err)
		return
	}

	h.logger.Infow("completed renewal cron job",
		"fiscal_year", result.FiscalYear,
		"succeeded", len(result.Succeeded),
		"failed", len(result.Failed),
	)
	c.JSON(http.StatusOK, result)
}
