package httpserver

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/domain"
	"storefront/internal/payment"
)

// stripeWebhook records payment lifecycle events. Signature failures are
// rejected; persistence failures return 500 so the provider retries.
func (h *handlers) stripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, 1<<20))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable payload"})
		return
	}

	event, err := h.deps.Payments.VerifyEvent(payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		h.logger.Printf("api: webhook signature rejected: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signature"})
		return
	}

	ctx := c.Request.Context()
	switch event.Type {
	case payment.EventCheckoutCompleted:
		order, err := h.deps.Payments.CompletedSession(ctx, event.SessionID)
		if err != nil {
			h.logger.Printf("api: webhook fetch session %s: %v", event.SessionID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "session fetch failed"})
			return
		}
		stored, err := h.deps.Orders.CreateFromSession(ctx, *order)
		if err != nil {
			h.logger.Printf("api: webhook record order session=%s: %v", event.SessionID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "order record failed"})
			return
		}
		h.logger.Printf("api: order recorded id=%s session=%s status=%s", stored.ID, event.SessionID, stored.Status)

	case payment.EventPaymentSucceeded:
		err := h.deps.Orders.UpdateStatusByPaymentIntent(ctx, event.PaymentIntentID, domain.OrderPaid)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			h.logger.Printf("api: webhook mark paid intent=%s: %v", event.PaymentIntentID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "order update failed"})
			return
		}

	case payment.EventChargeRefunded:
		status := domain.OrderPartiallyRefunded
		if event.FullRefund {
			status = domain.OrderRefunded
		}
		err := h.deps.Orders.UpdateRefund(ctx, event.PaymentIntentID, status, event.RefundedCents)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			h.logger.Printf("api: webhook record refund intent=%s: %v", event.PaymentIntentID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "order update failed"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
