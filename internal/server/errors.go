package server

import (
	"errors"
	"net/http"

	catalogdomain "github.com/JohnConnorCode/kivett-bednar-sub000/internal/catalog/domain"
	checkoutdomain "github.com/JohnConnorCode/kivett-bednar-sub000/internal/checkout/domain"
	fulfillmentdomain "github.com/JohnConnorCode/kivett-bednar-sub000/internal/fulfillment/domain"
	"github.com/JohnConnorCode/kivett-bednar-sub000/internal/fulfillment/gelato"
	obsctx "github.com/JohnConnorCode/kivett-bednar-sub000/internal/observability/context"
	orderdomain "github.com/JohnConnorCode/kivett-bednar-sub000/internal/order/domain"
	"github.com/gin-gonic/gin"
)

// APIError is the JSON error body returned by the admin API.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func (e *APIError) Error() string {
	return e.Message
}

var (
	ErrUnauthorized       = &APIError{Status: http.StatusUnauthorized, Code: "unauthorized", Message: "unauthorized"}
	ErrNotFound           = &APIError{Status: http.StatusNotFound, Code: "not_found", Message: "not found"}
	ErrTooManyRequests    = &APIError{Status: http.StatusTooManyRequests, Code: "too_many_requests", Message: "too many requests"}
	ErrServiceUnavailable = &APIError{Status: http.StatusServiceUnavailable, Code: "service_unavailable", Message: "service unavailable"}
)

func invalidRequestError() *APIError {
	return &APIError{Status: http.StatusBadRequest, Code: "invalid_request", Message: "invalid request"}
}

func newValidationError(field, code, message string) *APIError {
	return &APIError{Status: http.StatusBadRequest, Code: code, Message: message, Field: field}
}

// AbortWithError maps a service error onto an admin API response.
func AbortWithError(c *gin.Context, err error) {
	apiErr := toAPIError(err)
	_ = c.Error(err)
	body := gin.H{"error": apiErr}
	if requestID := obsctx.RequestIDFromGin(c); requestID != "" {
		body["request_id"] = requestID
	}
	c.AbortWithStatusJSON(apiErr.Status, body)
}

func toAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var gelatoErr *gelato.APIError
	switch {
	case errors.Is(err, orderdomain.ErrInvalidID):
		return newValidationError("id", "invalid_id", "invalid order id")
	case errors.Is(err, orderdomain.ErrInvalidStatus):
		return newValidationError("status", "invalid_status", "invalid order status")
	case errors.Is(err, orderdomain.ErrNotFound), errors.Is(err, catalogdomain.ErrProductNotFound):
		return &APIError{Status: http.StatusNotFound, Code: "not_found", Message: err.Error()}
	case errors.Is(err, orderdomain.ErrNotPending):
		return &APIError{Status: http.StatusConflict, Code: "order_not_pending", Message: "order is not pending"}
	case errors.Is(err, checkoutdomain.ErrDeliveryInProgress):
		return &APIError{Status: http.StatusConflict, Code: "in_progress", Message: "order is being processed"}
	case errors.Is(err, checkoutdomain.ErrNothingToFulfill):
		return &APIError{Status: http.StatusUnprocessableEntity, Code: "nothing_to_fulfill", Message: "no order item resolves to a fulfillable product"}
	case errors.Is(err, fulfillmentdomain.ErrMissingAPIKey):
		return ErrServiceUnavailable
	case errors.As(err, &gelatoErr):
		return &APIError{Status: http.StatusBadGateway, Code: "fulfillment_failed", Message: gelatoErr.Error()}
	default:
		return &APIError{Status: http.StatusInternalServerError, Code: "internal_error", Message: "internal error"}
	}
}
