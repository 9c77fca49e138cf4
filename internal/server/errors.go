package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	billingdomain "github.com/openmotel/motel/internal/billing/domain"
	contractdomain "github.com/openmotel/motel/internal/contract/domain"
	paymentdomain "github.com/openmotel/motel/internal/payment/domain"
	readingdomain "github.com/openmotel/motel/internal/reading/domain"
	roomdomain "github.com/openmotel/motel/internal/room/domain"
	"github.com/openmotel/motel/pkg/types"
	"gorm.io/gorm"
)

var ErrInvalidRequest = errors.New("invalid_request")

type errorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, errorPayload) {
	switch {
	case isInvalidArgument(err):
		return http.StatusBadRequest, errorPayload{
			Type:    "invalid_argument",
			Message: err.Error(),
		}
	case errors.Is(err, roomdomain.ErrInvalidOwner):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, roomdomain.ErrRoomForbidden):
		// Deliberately no detail beyond "forbidden": existence of
		// another owner's data must not leak.
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case isNotFound(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case isInvalidState(err):
		// The wrapped message names the utility and the offending
		// values so an operator can correct the data entry.
		return http.StatusUnprocessableEntity, errorPayload{
			Type:    "invalid_state",
			Message: err.Error(),
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func isInvalidArgument(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, billingdomain.ErrInvalidPeriod),
		errors.Is(err, paymentdomain.ErrNonPositiveAmount),
		errors.Is(err, paymentdomain.ErrExceedsRemaining),
		errors.Is(err, readingdomain.ErrInvalidUtility),
		errors.Is(err, readingdomain.ErrNegativeValue),
		errors.Is(err, readingdomain.ErrInvalidTime),
		errors.Is(err, types.ErrInvalidBigInt):
		return true
	default:
		return false
	}
}

func isNotFound(err error) bool {
	switch {
	case errors.Is(err, contractdomain.ErrNotFound),
		errors.Is(err, contractdomain.ErrNoActiveContract),
		errors.Is(err, billingdomain.ErrBillNotFound),
		errors.Is(err, roomdomain.ErrRoomNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func isInvalidState(err error) bool {
	switch {
	case errors.Is(err, billingdomain.ErrMissingElectricityReading),
		errors.Is(err, billingdomain.ErrMissingWaterReading),
		errors.Is(err, billingdomain.ErrNonMonotonicElectricity),
		errors.Is(err, billingdomain.ErrNonMonotonicWater):
		return true
	default:
		return false
	}
}
