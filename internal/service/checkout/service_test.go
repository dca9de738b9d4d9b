package checkout

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"

	"storefront/internal/domain"
	"storefront/internal/payment"
)

type stubPayments struct {
	lastInput *payment.SessionInput
	err       error
}

func (s *stubPayments) CreateCheckoutSession(ctx context.Context, in payment.SessionInput) (*payment.Session, error) {
	s.lastInput = &in
	if s.err != nil {
		return nil, s.err
	}
	return &payment.Session{ID: "cs_test_1", URL: "https://pay.example/cs_test_1"}, nil
}

func testCart() *domain.Cart {
	return &domain.Cart{
		ID:       "cart-1",
		Currency: "USD",
		LineItems: []domain.CartLineItem{
			{Quantity: 2, Variant: domain.ProductVariant{ID: "price_1", Price: domain.Money{Amount: 1999, Currency: "USD"}}},
			{Quantity: 1, Variant: domain.ProductVariant{ID: "price_2", Price: domain.Money{Amount: 4500, Currency: "USD"}}},
		},
	}
}

func newService(payments *stubPayments) *Service {
	return New(payments, "https://shop.example/success", "https://shop.example/cancel", log.New(io.Discard, "", 0))
}

func TestStartCreatesSession(t *testing.T) {
	payments := &stubPayments{}
	svc := newService(payments)

	url, err := svc.Start(context.Background(), testCart(), Buyer{ID: "user-1", Email: "a@example.com"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if url != "https://pay.example/cs_test_1" {
		t.Fatalf("url = %q", url)
	}
	in := payments.lastInput
	if in == nil {
		t.Fatal("provider never called")
	}
	if len(in.Lines) != 2 || in.Lines[0].PriceID != "price_1" || in.Lines[0].Quantity != 2 {
		t.Fatalf("unexpected lines: %+v", in.Lines)
	}
	if in.CartID != "cart-1" || in.Currency != "USD" || in.CustomerEmail != "a@example.com" {
		t.Fatalf("unexpected input: %+v", in)
	}
}

func TestStartRejectsEmptyCart(t *testing.T) {
	payments := &stubPayments{}
	svc := newService(payments)

	for _, cart := range []*domain.Cart{nil, {ID: "cart-1", Currency: "USD"}} {
		_, err := svc.Start(context.Background(), cart, Buyer{})
		if !errors.Is(err, domain.ErrEmptyCart) {
			t.Fatalf("expected ErrEmptyCart, got %v", err)
		}
	}
	if payments.lastInput != nil {
		t.Fatal("provider called for an empty cart")
	}
}

func TestStartRejectsMixedCurrency(t *testing.T) {
	payments := &stubPayments{}
	svc := newService(payments)

	cart := testCart()
	cart.LineItems[1].Variant.Price.Currency = "EUR"
	_, err := svc.Start(context.Background(), cart, Buyer{})
	if !errors.Is(err, domain.ErrCurrencyMismatch) {
		t.Fatalf("expected ErrCurrencyMismatch, got %v", err)
	}
	if payments.lastInput != nil {
		t.Fatal("provider called with an inconsistent cart")
	}
}

func TestStartRejectsInvalidCurrency(t *testing.T) {
	svc := newService(&stubPayments{})

	cart := testCart()
	cart.Currency = "usd"
	if _, err := svc.Start(context.Background(), cart, Buyer{}); err == nil {
		t.Fatal("expected error for invalid currency code")
	}
}

func TestStartWrapsProviderFailure(t *testing.T) {
	payments := &stubPayments{err: errors.New("stripe unavailable")}
	svc := newService(payments)

	_, err := svc.Start(context.Background(), testCart(), Buyer{})
	if !errors.Is(err, domain.ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
}
