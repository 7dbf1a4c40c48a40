package v1

import (
	"net/http"

	"github.com/flexprice/feeledger/internal/api/dto"
	ierr "github.com/flexprice/feeledger/internal/errors"
	"github.com/flexprice/feeledger/internal/logger"
	"github.com/flexprice/feeledger/internal/service"
	"github.com/gin-gonic/gin"
)

type AccountHandler struct {
	balanceService service.BalanceService
	logger         *logger.Logger
}

func NewAccountHandler(balanceService service.BalanceService, logger *logger.Logger) *AccountHandler {
	return &AccountHandler{
		balanceService: balanceService,
		logger:         logger,
	}
}

// GetSubscriptionAccount godoc
// @Summary Get subscription account
// @Description Get the platform subscription debt of an organization
// @Tags Accounts
// @Produce json
// @Param org_id path string true "Organization ID"
// @Success 200 {object} dto.SubscriptionAccountResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /organizations/{org_id}/subscription-account [get]
func (h *AccountHandler) GetSubscriptionAccount(c *gin.Context) {
	orgID := c.Param("org_id")
	if orgID == "" {
		c.Error(ierr.NewError("organization id is required").
			WithHint("Organization ID is required").
			Mark(ierr.ErrValidation))
		return
	}

	a, err := h.balanceService.GetAccount(c.Request.Context(), orgID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSubscriptionAccountResponse(a))
}
