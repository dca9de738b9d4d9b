package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/domain"
)

type addItemRequest struct {
	PriceID  string `json:"priceId" binding:"required"`
	Quantity int    `json:"quantity"`
}

type setQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

func (h *handlers) getCart(c *gin.Context) {
	stored := h.deps.CartStore.Load(c.Request)
	cart, err := h.deps.Carts.Hydrate(c.Request.Context(), stored)
	if err != nil {
		respondError(c, err)
		return
	}
	if cart != nil && stored != nil {
		// Reconciliation may have dropped stale lines; write the healed
		// cart back so the cookie converges.
		h.persist(c, cart)
	}
	c.JSON(http.StatusOK, toCartResponse(cart))
}

func (h *handlers) addToCart(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "priceId required"})
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if req.Quantity < 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "error": "quantity must be positive"})
		return
	}

	stored := h.deps.CartStore.Load(c.Request)
	cart, err := h.deps.Carts.Add(c.Request.Context(), stored, req.PriceID, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	h.persist(c, cart)
	c.JSON(http.StatusOK, toCartResponse(cart))
}

func (h *handlers) setCartQuantity(c *gin.Context) {
	var req setQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "quantity required"})
		return
	}

	stored := h.deps.CartStore.Load(c.Request)
	cart, err := h.deps.Carts.SetQuantity(c.Request.Context(), stored, c.Param("variantId"), *req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	if cart != nil {
		h.persist(c, cart)
	}
	c.JSON(http.StatusOK, toCartResponse(cart))
}

func (h *handlers) removeFromCart(c *gin.Context) {
	stored := h.deps.CartStore.Load(c.Request)
	cart, err := h.deps.Carts.Remove(c.Request.Context(), stored, c.Param("variantId"))
	if err != nil {
		respondError(c, err)
		return
	}
	if cart != nil {
		h.persist(c, cart)
	}
	c.JSON(http.StatusOK, toCartResponse(cart))
}

func (h *handlers) clearCart(c *gin.Context) {
	h.deps.CartStore.Drop(c.Writer)
	c.JSON(http.StatusOK, toCartResponse(nil))
}

func (h *handlers) persist(c *gin.Context, cart *domain.Cart) {
	if cart == nil {
		return
	}
	if err := h.deps.CartStore.Save(c.Writer, cart.ToStored()); err != nil {
		h.logger.Printf("api: persist cart id=%s: %v", cart.ID, err)
	}
}
