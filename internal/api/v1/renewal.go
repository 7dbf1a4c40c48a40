package v1

import (
	"net/http"

	"github.com/flexprice/feeledger/internal/api/dto"
	ierr "github.com/flexprice/feeledger/internal/errors"
	"github.com/flexprice/feeledger/internal/logger"
	"github.com/flexprice/feeledger/internal/service"
	"github.com/flexprice/feeledger/internal/validator"
	"github.com/gin-gonic/gin"
)

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

// RunRenewal godoc
// @Summary Run renewal
// @Description Run the yearly membership fee renewal for one organization. Safe to repeat.
// @Tags Renewals
// @Accept json
// @Produce json
// @Param org_id path string true "Organization ID"
// @Param request body dto.RunRenewalRequest false "Fiscal year"
// @Success 200 {object} service.RenewalSummary
// @Failure 400 {object} middleware.ErrorResponse
// @Router /organizations/{org_id}/renewals [post]
func (h *RenewalHandler) RunRenewal(c *gin.Context) {
	var req dto.RunRenewalRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.Error(ierr.WithError(err).
				WithHint("Invalid request format").
				Mark(ierr.ErrValidation))
			return
		}
	}
	if err := validator.ValidateRequest(&req); err != nil {
		c.Error(err)
		return
	}

	summary, err := h.renewalService.RunRenewal(c.Request.Context(), c.Param("org_id"), req.TargetYear())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, summary)
}
