package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	assignmentdomain "github.com/smallgrid/enerbill/internal/assignment/domain"
	cascadedomain "github.com/smallgrid/enerbill/internal/cascade/domain"
	deliverydomain "github.com/smallgrid/enerbill/internal/delivery/domain"
	locationdomain "github.com/smallgrid/enerbill/internal/location/domain"
	meterdomain "github.com/smallgrid/enerbill/internal/meter/domain"
	"github.com/smallgrid/enerbill/internal/reading/calc"
	readingdomain "github.com/smallgrid/enerbill/internal/reading/domain"
	resourcetypedomain "github.com/smallgrid/enerbill/internal/resourcetype/domain"
	tariffdomain "github.com/smallgrid/enerbill/internal/tariff/domain"
	tenantdomain "github.com/smallgrid/enerbill/internal/tenant/domain"
	"gorm.io/gorm"
)

type errorPayload struct {
	Type    string `json:"type"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var ErrInvalidRequest = errors.New("invalid_request")

// ErrorHandlingMiddleware renders the last handler error as a JSON
// payload unless a response body was already written.
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
	case isValidationError(err):
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Code:    err.Error(),
			Message: "validation error",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Code:    err.Error(),
			Message: "not found",
		}
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Code:    err.Error(),
			Message: "conflict",
		}
	case isInvariantError(err):
		return http.StatusUnprocessableEntity, errorPayload{
			Type:    "invariant_violation",
			Code:    err.Error(),
			Message: "invariant violation",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, resourcetypedomain.ErrInvalidID),
		errors.Is(err, resourcetypedomain.ErrNameRequired),
		errors.Is(err, resourcetypedomain.ErrUnitRequired),
		errors.Is(err, tenantdomain.ErrInvalidID),
		errors.Is(err, tenantdomain.ErrNameRequired),
		errors.Is(err, locationdomain.ErrInvalidID),
		errors.Is(err, locationdomain.ErrNameRequired),
		errors.Is(err, locationdomain.ErrNegativeArea),
		errors.Is(err, meterdomain.ErrInvalidID),
		errors.Is(err, meterdomain.ErrSerialRequired),
		errors.Is(err, assignmentdomain.ErrInvalidID),
		errors.Is(err, assignmentdomain.ErrInvalidInterval),
		errors.Is(err, tariffdomain.ErrInvalidID),
		errors.Is(err, tariffdomain.ErrInvalidInterval),
		errors.Is(err, tariffdomain.ErrNonPositivePrice),
		errors.Is(err, readingdomain.ErrInvalidID),
		errors.Is(err, readingdomain.ErrInvalidCategory),
		errors.Is(err, readingdomain.ErrInvalidAreaWeight),
		errors.Is(err, deliverydomain.ErrInvalidID),
		errors.Is(err, deliverydomain.ErrNonPositiveQuantity),
		errors.Is(err, cascadedomain.ErrInvalidKind),
		errors.Is(err, cascadedomain.ErrInvalidID),
		errors.Is(err, calc.ErrUnknownMethod):
		return true
	}
	return false
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, resourcetypedomain.ErrNotFound),
		errors.Is(err, tenantdomain.ErrNotFound),
		errors.Is(err, locationdomain.ErrNotFound),
		errors.Is(err, meterdomain.ErrNotFound),
		errors.Is(err, assignmentdomain.ErrNotFound),
		errors.Is(err, tariffdomain.ErrNotFound),
		errors.Is(err, tariffdomain.ErrNoApplicableTariff),
		errors.Is(err, readingdomain.ErrNotFound),
		errors.Is(err, readingdomain.ErrAssignmentNotFound),
		errors.Is(err, readingdomain.ErrMeterNotLinked),
		errors.Is(err, deliverydomain.ErrNotFound),
		errors.Is(err, cascadedomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	}
	return false
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, resourcetypedomain.ErrNameTaken),
		errors.Is(err, tenantdomain.ErrNameTaken),
		errors.Is(err, locationdomain.ErrNameTaken),
		errors.Is(err, meterdomain.ErrSerialTaken),
		errors.Is(err, assignmentdomain.ErrOverlap),
		errors.Is(err, tariffdomain.ErrOverlappingPeriod),
		errors.Is(err, tariffdomain.ErrVersionConflict),
		errors.Is(err, readingdomain.ErrVersionConflict),
		errors.Is(err, deliverydomain.ErrDuplicateDelivery):
		return true
	}
	return false
}

func isInvariantError(err error) bool {
	switch {
	case errors.Is(err, calc.ErrNegativeConsumption),
		errors.Is(err, resourcetypedomain.ErrInactive),
		errors.Is(err, tenantdomain.ErrInactive),
		errors.Is(err, locationdomain.ErrInactive),
		errors.Is(err, meterdomain.ErrInactive),
		errors.Is(err, cascadedomain.ErrActiveParent):
		return true
	}
	return false
}
