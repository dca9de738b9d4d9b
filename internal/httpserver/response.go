package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/domain"
)

// cartResponse is the wire shape of a hydrated cart, with the derived
// totals clients would otherwise recompute.
type cartResponse struct {
	Success   bool                  `json:"success"`
	ID        string                `json:"id"`
	Currency  string                `json:"currency"`
	LineItems []domain.CartLineItem `json:"lineItems"`
	Subtotal  domain.Money          `json:"subtotal"`
	ItemCount int                   `json:"itemCount"`
}

func toCartResponse(cart *domain.Cart) cartResponse {
	if cart == nil {
		cart = &domain.Cart{}
	}
	items := cart.LineItems
	if items == nil {
		items = []domain.CartLineItem{}
	}
	subtotal, err := cart.Subtotal()
	if err != nil {
		subtotal = domain.Money{Currency: cart.CurrencyOrDefault()}
	}
	return cartResponse{
		Success:   true,
		ID:        cart.ID,
		Currency:  cart.CurrencyOrDefault(),
		LineItems: items,
		Subtotal:  subtotal,
		ItemCount: cart.ItemCount(),
	}
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "not found"})
	case errors.Is(err, domain.ErrEmptyCart),
		errors.Is(err, domain.ErrCurrencyMismatch),
		errors.Is(err, domain.ErrQuantityTooLarge):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "error": err.Error()})
	case errors.Is(err, domain.ErrUpstream):
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "error": "upstream unavailable"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "internal error"})
	}
}
