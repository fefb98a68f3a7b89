package server

import (
	"errors"
	"io"
	"net/http"

	checkoutdomain "github.com/JohnConnorCode/kivett-bednar-sub000/internal/checkout/domain"
	paymentdomain "github.com/JohnConnorCode/kivett-bednar-sub000/internal/payment/domain"
	"github.com/gin-gonic/gin"
)

const (
	HeaderStripeSignature = "Stripe-Signature"
	maxWebhookBodyBytes   = 1 << 20
)

// StripeWebhook hands the raw body to the reconciler. Responses are plain text
// except the success acknowledgement.
func (s *Server) StripeWebhook(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBodyBytes))
	if err != nil {
		c.String(http.StatusBadRequest, "Webhook Error: unreadable body")
		return
	}

	err = s.checkoutSvc.IngestWebhook(c.Request.Context(), body, c.GetHeader(HeaderStripeSignature))
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"received": true})
	case errors.Is(err, checkoutdomain.ErrFeatureDisabled):
		c.String(http.StatusNotImplemented, "payments are disabled")
	case errors.Is(err, paymentdomain.ErrInvalidSignature), errors.Is(err, paymentdomain.ErrInvalidPayload):
		c.String(http.StatusBadRequest, "Webhook Error: "+err.Error())
	case errors.Is(err, checkoutdomain.ErrDeliveryInProgress):
		c.String(http.StatusConflict, "delivery already in progress")
	default:
		_ = c.Error(err)
		c.String(http.StatusInternalServerError, err.Error())
	}
}
