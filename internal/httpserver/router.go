package httpserver

import (
	"context"
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront/internal/domain"
	"storefront/internal/payment"
	cartrepo "storefront/internal/repository/cart"
	orderrepo "storefront/internal/repository/order"
	"storefront/internal/service/checkout"
)

// CartService reconciles stored carts against the catalog and applies
// cart mutations.
type CartService interface {
	Hydrate(ctx context.Context, stored *domain.StoredCart) (*domain.Cart, error)
	Add(ctx context.Context, stored *domain.StoredCart, variantID string, quantity int) (*domain.Cart, error)
	SetQuantity(ctx context.Context, stored *domain.StoredCart, variantID string, quantity int) (*domain.Cart, error)
	Remove(ctx context.Context, stored *domain.StoredCart, variantID string) (*domain.Cart, error)
}

// CheckoutService opens payment sessions for validated carts.
type CheckoutService interface {
	Start(ctx context.Context, cart *domain.Cart, buyer checkout.Buyer) (string, error)
}

// ProductService serves the public catalog.
type ProductService interface {
	List(ctx context.Context) ([]domain.Product, error)
	Get(ctx context.Context, slug string) (*domain.Product, error)
	ListCollections(ctx context.Context) ([]domain.Collection, error)
	GetCollection(ctx context.Context, slug string) (*domain.Collection, error)
}

// PaymentProvider is the webhook-facing slice of the payment client.
type PaymentProvider interface {
	VerifyEvent(payload []byte, signature string) (payment.WebhookEvent, error)
	CompletedSession(ctx context.Context, sessionID string) (*domain.Order, error)
}

// Deps collects everything the router wires into handlers.
type Deps struct {
	Carts     CartService
	Checkout  CheckoutService
	Products  ProductService
	Orders    orderrepo.Repository
	CartStore cartrepo.Repository
	Payments  PaymentProvider
}

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps, allowedOrigins []string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowOrigins = allowedOrigins
	corsCfg.AllowCredentials = true
	corsCfg.AllowMethods = []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsCfg))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	h := &handlers{deps: deps, logger: logger}

	router.GET("/cart", h.getCart)
	router.POST("/cart/items", h.addToCart)
	router.PATCH("/cart/items/:variantId", h.setCartQuantity)
	router.DELETE("/cart/items/:variantId", h.removeFromCart)
	router.DELETE("/cart", h.clearCart)

	router.POST("/checkout", h.startCheckout)

	router.GET("/products", h.listProducts)
	router.GET("/products/:slug", h.getProduct)
	router.GET("/collections", h.listCollections)
	router.GET("/collections/:slug", h.getCollection)

	router.GET("/orders", h.listOrders)
	router.GET("/orders/:id", h.getOrder)
	router.POST("/webhooks/stripe", h.stripeWebhook)

	return router
}

type handlers struct {
	deps   Deps
	logger *log.Logger
}
