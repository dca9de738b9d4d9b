package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/service/checkout"
)

type checkoutRequest struct {
	Email   string `json:"email"`
	BuyerID string `json:"buyerId"`
}

func (h *handlers) startCheckout(c *gin.Context) {
	var req checkoutRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid body"})
			return
		}
	}

	stored := h.deps.CartStore.Load(c.Request)
	cart, err := h.deps.Carts.Hydrate(c.Request.Context(), stored)
	if err != nil {
		respondError(c, err)
		return
	}

	buyer := checkout.Buyer{ID: req.BuyerID, Email: req.Email}
	url, err := h.deps.Checkout.Start(c.Request.Context(), cart, buyer)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "url": url})
}
