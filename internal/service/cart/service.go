// Package cart reconciles stored carts against the live catalog and
// applies cart actions on the hydrated result.
package cart

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"storefront/internal/domain"
)

type catalogRepo interface {
	GetVariantWithProduct(ctx context.Context, variantID string) (*domain.VariantWithProduct, error)
}

type Service struct {
	catalog     catalogRepo
	itemTimeout time.Duration
	logger      *log.Logger
}

func New(catalog catalogRepo, itemTimeout time.Duration, logger *log.Logger) *Service {
	if itemTimeout <= 0 {
		itemTimeout = 5 * time.Second
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{catalog: catalog, itemTimeout: itemTimeout, logger: logger}
}

// Hydrate resolves a stored cart against the catalog. Items whose variant
// no longer exists are dropped; any other catalog failure, including a
// lookup deadline, aborts the whole hydration so an outage never shows up
// as an empty cart. A nil stored cart hydrates to nil.
func (s *Service) Hydrate(ctx context.Context, stored *domain.StoredCart) (*domain.Cart, error) {
	if stored == nil {
		return nil, nil
	}
	norm := stored.Normalize()

	resolved := make([]*domain.VariantWithProduct, len(norm.Items))
	g, gctx := errgroup.WithContext(ctx)
	for i, item := range norm.Items {
		g.Go(func() error {
			itemCtx, cancel := context.WithTimeout(gctx, s.itemTimeout)
			defer cancel()
			vp, err := s.catalog.GetVariantWithProduct(itemCtx, item.VariantID)
			switch {
			case err == nil:
				resolved[i] = vp
				return nil
			case errors.Is(err, domain.ErrNotFound):
				s.logger.Printf("cart service: dropping unknown variant id=%s cart=%s", item.VariantID, norm.ID)
				return nil
			default:
				// A timed-out lookup lands here too: a stalled catalog is
				// an outage, not a missing variant.
				return fmt.Errorf("%w: resolve variant %s: %v", domain.ErrUpstream, item.VariantID, err)
			}
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	currency := norm.Currency
	if currency == "" {
		for _, vp := range resolved {
			if vp != nil {
				currency = vp.Variant.Price.Currency
				break
			}
		}
	}
	if currency == "" {
		currency = domain.DefaultCurrency
	}

	cart := domain.Cart{ID: norm.ID, Currency: currency}
	for i, vp := range resolved {
		if vp == nil {
			continue
		}
		if vp.Variant.Price.Currency != currency {
			s.logger.Printf("cart service: dropping variant id=%s, currency %s does not match cart %s",
				vp.Variant.ID, vp.Variant.Price.Currency, currency)
			continue
		}
		next, err := cart.AddItem(domain.CartLineItem{
			Quantity: norm.Items[i].Quantity,
			Variant:  vp.Variant,
			Product:  vp.Product,
		})
		if err != nil {
			return nil, err
		}
		next.ID = norm.ID
		cart = next
	}
	return &cart, nil
}

// Add resolves the variant and applies an add action to the hydrated
// cart. Unknown variants surface ErrNotFound; a fresh cart gets a
// generated id.
func (s *Service) Add(ctx context.Context, stored *domain.StoredCart, variantID string, quantity int) (*domain.Cart, error) {
	vp, err := s.catalog.GetVariantWithProduct(ctx, variantID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: resolve variant %s: %v", domain.ErrUpstream, variantID, err)
	}

	cart, err := s.Hydrate(ctx, stored)
	if err != nil {
		return nil, err
	}

	next, err := domain.Reduce(cart, domain.Action{
		Type: domain.ActionAddItem,
		Item: &domain.CartLineItem{Quantity: quantity, Variant: vp.Variant, Product: vp.Product},
	})
	if err != nil {
		return nil, err
	}
	s.ensureID(next)
	return next, nil
}

// SetQuantity replaces a line's quantity on the hydrated cart. Zero or
// negative removes the line.
func (s *Service) SetQuantity(ctx context.Context, stored *domain.StoredCart, variantID string, quantity int) (*domain.Cart, error) {
	cart, err := s.Hydrate(ctx, stored)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, nil
	}
	next, err := cart.SetQuantity(variantID, quantity)
	if err != nil {
		return nil, err
	}
	s.ensureID(&next)
	return &next, nil
}

// Remove drops a line from the hydrated cart. Removing an absent line is
// a no-op.
func (s *Service) Remove(ctx context.Context, stored *domain.StoredCart, variantID string) (*domain.Cart, error) {
	cart, err := s.Hydrate(ctx, stored)
	if err != nil {
		return nil, err
	}
	next, err := domain.Reduce(cart, domain.Action{Type: domain.ActionRemove, VariantID: variantID})
	if err != nil {
		return nil, err
	}
	s.ensureID(next)
	return next, nil
}

func (s *Service) ensureID(cart *domain.Cart) {
	if cart != nil && (cart.ID == "" || cart.ID == domain.PendingCartID) {
		cart.ID = uuid.NewString()
	}
}
