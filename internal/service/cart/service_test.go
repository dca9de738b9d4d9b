package cart

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"
	"time"

	"storefront/internal/domain"
)

type stubCatalog struct {
	variants map[string]domain.VariantWithProduct
	err      error
	slow     map[string]bool
}

func (s *stubCatalog) GetVariantWithProduct(ctx context.Context, variantID string) (*domain.VariantWithProduct, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.slow[variantID] {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	vp, ok := s.variants[variantID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &vp, nil
}

func variant(id string, cents int64, currency string) domain.VariantWithProduct {
	return domain.VariantWithProduct{
		Product: domain.ProductSummary{ID: "p-" + id, Name: "Product " + id, Slug: "product-" + id},
		Variant: domain.ProductVariant{ID: id, Price: domain.Money{Amount: cents, Currency: currency}},
	}
}

func newService(catalog *stubCatalog) *Service {
	return New(catalog, 50*time.Millisecond, log.New(io.Discard, "", 0))
}

func TestHydrateNilStoredCart(t *testing.T) {
	svc := newService(&stubCatalog{})
	cart, err := svc.Hydrate(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cart != nil {
		t.Fatalf("expected nil cart, got %+v", cart)
	}
}

func TestHydrateResolvesItems(t *testing.T) {
	catalog := &stubCatalog{variants: map[string]domain.VariantWithProduct{
		"price_1": variant("price_1", 1999, "USD"),
		"price_2": variant("price_2", 4500, "USD"),
	}}
	svc := newService(catalog)

	stored := &domain.StoredCart{
		ID:       "cart-1",
		Currency: "USD",
		Items: []domain.StoredItem{
			{VariantID: "price_1", Quantity: 2},
			{VariantID: "price_2", Quantity: 1},
		},
	}
	cart, err := svc.Hydrate(context.Background(), stored)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cart.ID != "cart-1" || len(cart.LineItems) != 2 {
		t.Fatalf("unexpected cart: %+v", cart)
	}
	if cart.LineItems[0].Variant.ID != "price_1" || cart.LineItems[1].Variant.ID != "price_2" {
		t.Fatalf("order not preserved: %+v", cart.LineItems)
	}
	sub, err := cart.Subtotal()
	if err != nil {
		t.Fatalf("subtotal: %v", err)
	}
	if sub.Amount != 2*1999+4500 {
		t.Fatalf("subtotal = %d", sub.Amount)
	}
}

func TestHydrateDropsUnknownVariants(t *testing.T) {
	catalog := &stubCatalog{variants: map[string]domain.VariantWithProduct{
		"price_1": variant("price_1", 1999, "USD"),
	}}
	svc := newService(catalog)

	stored := &domain.StoredCart{
		ID:       "cart-1",
		Currency: "USD",
		Items: []domain.StoredItem{
			{VariantID: "price_gone", Quantity: 3},
			{VariantID: "price_1", Quantity: 1},
		},
	}
	cart, err := svc.Hydrate(context.Background(), stored)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cart.LineItems) != 1 || cart.LineItems[0].Variant.ID != "price_1" {
		t.Fatalf("expected phantom dropped, got %+v", cart.LineItems)
	}
}

func TestHydrateTimedOutLookupIsUpstreamFailure(t *testing.T) {
	catalog := &stubCatalog{
		variants: map[string]domain.VariantWithProduct{
			"price_1": variant("price_1", 1999, "USD"),
		},
		slow: map[string]bool{"price_slow": true},
	}
	svc := newService(catalog)

	stored := &domain.StoredCart{
		ID:       "cart-1",
		Currency: "USD",
		Items: []domain.StoredItem{
			{VariantID: "price_slow", Quantity: 1},
			{VariantID: "price_1", Quantity: 1},
		},
	}
	cart, err := svc.Hydrate(context.Background(), stored)
	if !errors.Is(err, domain.ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
	if cart != nil {
		t.Fatalf("expected nil cart on timeout, got %+v", cart)
	}
}

func TestHydrateHungCatalogNeverReadsEmpty(t *testing.T) {
	catalog := &stubCatalog{
		slow: map[string]bool{"price_1": true, "price_2": true},
	}
	svc := newService(catalog)

	stored := &domain.StoredCart{
		ID:       "cart-1",
		Currency: "USD",
		Items: []domain.StoredItem{
			{VariantID: "price_1", Quantity: 2},
			{VariantID: "price_2", Quantity: 1},
		},
	}
	cart, err := svc.Hydrate(context.Background(), stored)
	if !errors.Is(err, domain.ErrUpstream) {
		t.Fatalf("expected ErrUpstream from a stalled catalog, got %v", err)
	}
	if cart != nil {
		t.Fatalf("stall must not read as an empty cart, got %+v", cart)
	}
}

func TestNewNilLoggerSafe(t *testing.T) {
	catalog := &stubCatalog{variants: map[string]domain.VariantWithProduct{}}
	svc := New(catalog, time.Second, nil)

	stored := &domain.StoredCart{
		ID:    "cart-1",
		Items: []domain.StoredItem{{VariantID: "price_gone", Quantity: 1}},
	}
	cart, err := svc.Hydrate(context.Background(), stored)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cart.LineItems) != 0 {
		t.Fatalf("expected empty cart, got %+v", cart.LineItems)
	}
}

func TestHydrateUpstreamFailureIsFatal(t *testing.T) {
	catalog := &stubCatalog{err: errors.New("connection refused")}
	svc := newService(catalog)

	stored := &domain.StoredCart{
		ID:    "cart-1",
		Items: []domain.StoredItem{{VariantID: "price_1", Quantity: 1}},
	}
	cart, err := svc.Hydrate(context.Background(), stored)
	if !errors.Is(err, domain.ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
	if cart != nil {
		t.Fatalf("expected nil cart on upstream failure, got %+v", cart)
	}
}

func TestHydrateDropsCurrencyDrift(t *testing.T) {
	catalog := &stubCatalog{variants: map[string]domain.VariantWithProduct{
		"price_usd": variant("price_usd", 1999, "USD"),
		"price_eur": variant("price_eur", 1500, "EUR"),
	}}
	svc := newService(catalog)

	stored := &domain.StoredCart{
		ID:       "cart-1",
		Currency: "USD",
		Items: []domain.StoredItem{
			{VariantID: "price_usd", Quantity: 1},
			{VariantID: "price_eur", Quantity: 1},
		},
	}
	cart, err := svc.Hydrate(context.Background(), stored)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cart.LineItems) != 1 || cart.LineItems[0].Variant.ID != "price_usd" {
		t.Fatalf("expected drifted line dropped, got %+v", cart.LineItems)
	}
}

func TestHydrateCurrencyFallsBackToFirstResolved(t *testing.T) {
	catalog := &stubCatalog{variants: map[string]domain.VariantWithProduct{
		"price_eur": variant("price_eur", 1500, "EUR"),
	}}
	svc := newService(catalog)

	stored := &domain.StoredCart{
		ID:    "cart-1",
		Items: []domain.StoredItem{{VariantID: "price_eur", Quantity: 2}},
	}
	cart, err := svc.Hydrate(context.Background(), stored)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cart.Currency != "EUR" {
		t.Fatalf("currency = %q", cart.Currency)
	}
}

func TestAddToEmptyCartAssignsID(t *testing.T) {
	catalog := &stubCatalog{variants: map[string]domain.VariantWithProduct{
		"price_1": variant("price_1", 1999, "USD"),
	}}
	svc := newService(catalog)

	cart, err := svc.Add(context.Background(), nil, "price_1", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cart.ID == "" || cart.ID == domain.PendingCartID {
		t.Fatalf("expected generated id, got %q", cart.ID)
	}
	if len(cart.LineItems) != 1 || cart.LineItems[0].Quantity != 2 {
		t.Fatalf("unexpected cart: %+v", cart)
	}
}

func TestAddUnknownVariant(t *testing.T) {
	svc := newService(&stubCatalog{variants: map[string]domain.VariantWithProduct{}})

	_, err := svc.Add(context.Background(), nil, "price_nope", 1)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAddMergesExistingLine(t *testing.T) {
	catalog := &stubCatalog{variants: map[string]domain.VariantWithProduct{
		"price_1": variant("price_1", 1999, "USD"),
	}}
	svc := newService(catalog)

	stored := &domain.StoredCart{
		ID:       "cart-1",
		Currency: "USD",
		Items:    []domain.StoredItem{{VariantID: "price_1", Quantity: 1}},
	}
	cart, err := svc.Add(context.Background(), stored, "price_1", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cart.LineItems) != 1 || cart.LineItems[0].Quantity != 3 {
		t.Fatalf("expected merged quantity 3, got %+v", cart.LineItems)
	}
	if cart.ID != "cart-1" {
		t.Fatalf("id changed: %q", cart.ID)
	}
}

func TestAddCurrencyMismatch(t *testing.T) {
	catalog := &stubCatalog{variants: map[string]domain.VariantWithProduct{
		"price_usd": variant("price_usd", 1999, "USD"),
		"price_eur": variant("price_eur", 1500, "EUR"),
	}}
	svc := newService(catalog)

	stored := &domain.StoredCart{
		ID:       "cart-1",
		Currency: "USD",
		Items:    []domain.StoredItem{{VariantID: "price_usd", Quantity: 1}},
	}
	_, err := svc.Add(context.Background(), stored, "price_eur", 1)
	if !errors.Is(err, domain.ErrCurrencyMismatch) {
		t.Fatalf("expected ErrCurrencyMismatch, got %v", err)
	}
}

func TestSetQuantityRemovesAtZero(t *testing.T) {
	catalog := &stubCatalog{variants: map[string]domain.VariantWithProduct{
		"price_1": variant("price_1", 1999, "USD"),
		"price_2": variant("price_2", 4500, "USD"),
	}}
	svc := newService(catalog)

	stored := &domain.StoredCart{
		ID:       "cart-1",
		Currency: "USD",
		Items: []domain.StoredItem{
			{VariantID: "price_1", Quantity: 2},
			{VariantID: "price_2", Quantity: 1},
		},
	}
	cart, err := svc.SetQuantity(context.Background(), stored, "price_1", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cart.LineItems) != 1 || cart.LineItems[0].Variant.ID != "price_2" {
		t.Fatalf("expected price_1 removed, got %+v", cart.LineItems)
	}
}

func TestRemoveAbsentLineIsNoop(t *testing.T) {
	catalog := &stubCatalog{variants: map[string]domain.VariantWithProduct{
		"price_1": variant("price_1", 1999, "USD"),
	}}
	svc := newService(catalog)

	stored := &domain.StoredCart{
		ID:       "cart-1",
		Currency: "USD",
		Items:    []domain.StoredItem{{VariantID: "price_1", Quantity: 1}},
	}
	cart, err := svc.Remove(context.Background(), stored, "price_missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cart.LineItems) != 1 {
		t.Fatalf("expected untouched cart, got %+v", cart.LineItems)
	}
}
