package middleware

import (
	ierr "github.com/flexprice/feeledger/internal/errors"
	"github.com/gin-gonic/gin"
)

// ErrorResponse represents the standard error response structure
type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Display string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// ErrorHandler middleware renders the last error a handler attached to the context
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err

		display := ierr.DisplayMessage(err)
		if display == "" {
			display = "An unexpected error occurred"
		}

		c.JSON(ierr.HTTPStatusFromErr(err), ErrorResponse{
			Success: false,
			Error: ErrorDetail{
				Display: display,
				Details: ierr.ReportableDetails(err),
			},
		})
	}
}
