// Package checkout validates a hydrated cart and hands it off to the
// payment provider.
package checkout

import (
	"context"
	"fmt"
	"log"

	"storefront/internal/domain"
	"storefront/internal/payment"
)

type sessionCreator interface {
	CreateCheckoutSession(ctx context.Context, in payment.SessionInput) (*payment.Session, error)
}

type Service struct {
	payments   sessionCreator
	successURL string
	cancelURL  string
	logger     *log.Logger
}

func New(payments sessionCreator, successURL, cancelURL string, logger *log.Logger) *Service {
	return &Service{payments: payments, successURL: successURL, cancelURL: cancelURL, logger: logger}
}

// Buyer identifies who is checking out. Both fields are optional.
type Buyer struct {
	ID    string
	Email string
}

// Start validates the cart and opens a payment session, returning the
// redirect URL. Validation failures never reach the provider.
func (s *Service) Start(ctx context.Context, cart *domain.Cart, buyer Buyer) (string, error) {
	if cart == nil || len(cart.LineItems) == 0 {
		return "", domain.ErrEmptyCart
	}
	currency := cart.CurrencyOrDefault()
	if !domain.ValidCurrency(currency) {
		return "", fmt.Errorf("invalid cart currency %q", currency)
	}

	lines := make([]payment.SessionLine, 0, len(cart.LineItems))
	for _, line := range cart.LineItems {
		if line.Variant.Price.Currency != currency {
			return "", fmt.Errorf("%w: cart is %s, line %s is %s",
				domain.ErrCurrencyMismatch, currency, line.Variant.ID, line.Variant.Price.Currency)
		}
		lines = append(lines, payment.SessionLine{PriceID: line.Variant.ID, Quantity: line.Quantity})
	}

	sess, err := s.payments.CreateCheckoutSession(ctx, payment.SessionInput{
		Lines:             lines,
		SuccessURL:        s.successURL,
		CancelURL:         s.cancelURL,
		CustomerEmail:     buyer.Email,
		ClientReferenceID: buyer.ID,
		CartID:            cart.ID,
		Currency:          currency,
	})
	if err != nil {
		return "", fmt.Errorf("%w: create checkout session: %v", domain.ErrUpstream, err)
	}
	s.logger.Printf("checkout service: session created id=%s cart=%s items=%d", sess.ID, cart.ID, cart.ItemCount())
	return sess.URL, nil
}
