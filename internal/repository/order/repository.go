package order

import (
	"context"

	"storefront/internal/domain"
)

// Repository stores orders recorded from payment provider webhooks.
type Repository interface {
	// CreateFromSession persists the order unless one already exists for
	// its payment session id; either way it returns the stored order, so
	// webhook redelivery is harmless.
	CreateFromSession(ctx context.Context, in domain.Order) (*domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	// ListByEmail returns the buyer's orders, newest first, with items.
	ListByEmail(ctx context.Context, email string) ([]domain.Order, error)
	UpdateStatusByPaymentIntent(ctx context.Context, paymentIntentID string, status domain.OrderStatus) error
	UpdateRefund(ctx context.Context, paymentIntentID string, status domain.OrderStatus, refundedCents int64) error
}
