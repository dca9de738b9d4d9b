// Package payment wraps the Stripe API behind provider-neutral types so
// the rest of the storefront never handles Stripe values directly.
package payment

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
	"github.com/stripe/stripe-go/v82/webhook"

	"storefront/internal/domain"
)

var allowedShippingCountries = []string{"US", "CA", "GB", "DE", "FR", "ES", "IT", "NL", "AU"}

// SessionLine is one payment-session line: the external price identifier
// plus a quantity. Prices themselves live with the provider.
type SessionLine struct {
	PriceID  string
	Quantity int
}

type SessionInput struct {
	Lines             []SessionLine
	SuccessURL        string
	CancelURL         string
	CustomerEmail     string
	ClientReferenceID string
	CartID            string
	Currency          string
}

// Session is the created payment session: its id and the redirect target.
type Session struct {
	ID  string
	URL string
}

// Client talks to Stripe for checkout session creation and webhook
// verification.
type Client struct {
	api            *client.API
	webhookSecret  string
	shippingRateID string
}

func NewClient(secretKey, webhookSecret, shippingRateID string) *Client {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &Client{api: api, webhookSecret: webhookSecret, shippingRateID: shippingRateID}
}

// CreateCheckoutSession opens a hosted payment session for the given cart
// lines. Tax, shipping rates and the session lifecycle are entirely the
// provider's concern.
func (c *Client) CreateCheckoutSession(ctx context.Context, in SessionInput) (*Session, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:                stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:          stripe.String(in.SuccessURL),
		CancelURL:           stripe.String(in.CancelURL),
		AllowPromotionCodes: stripe.Bool(true),
		AutomaticTax:        &stripe.CheckoutSessionAutomaticTaxParams{Enabled: stripe.Bool(true)},
		ShippingAddressCollection: &stripe.CheckoutSessionShippingAddressCollectionParams{
			AllowedCountries: stripe.StringSlice(allowedShippingCountries),
		},
	}
	params.Context = ctx

	for _, line := range in.Lines {
		params.LineItems = append(params.LineItems, &stripe.CheckoutSessionLineItemParams{
			Price:    stripe.String(line.PriceID),
			Quantity: stripe.Int64(int64(line.Quantity)),
		})
	}
	if in.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(in.CustomerEmail)
	}
	if in.ClientReferenceID != "" {
		params.ClientReferenceID = stripe.String(in.ClientReferenceID)
	}
	params.AddMetadata("cartId", in.CartID)

	if c.shippingRateID != "" {
		params.ShippingOptions = []*stripe.CheckoutSessionShippingOptionParams{
			{ShippingRate: stripe.String(c.shippingRateID)},
		}
	} else {
		params.ShippingOptions = []*stripe.CheckoutSessionShippingOptionParams{{
			ShippingRateData: &stripe.CheckoutSessionShippingOptionShippingRateDataParams{
				DisplayName: stripe.String("Standard shipping"),
				Type:        stripe.String("fixed_amount"),
				FixedAmount: &stripe.CheckoutSessionShippingOptionShippingRateDataFixedAmountParams{
					Amount:   stripe.Int64(0),
					Currency: stripe.String(strings.ToLower(in.Currency)),
				},
			},
		}}
	}

	sess, err := c.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, err
	}
	return &Session{ID: sess.ID, URL: sess.URL}, nil
}

// EventType classifies webhook events this storefront reacts to.
type EventType string

const (
	EventCheckoutCompleted EventType = "checkout_completed"
	EventPaymentSucceeded  EventType = "payment_succeeded"
	EventChargeRefunded    EventType = "charge_refunded"
	EventIgnored           EventType = "ignored"
)

// WebhookEvent is a verified, provider-neutral webhook notification.
type WebhookEvent struct {
	Type            EventType
	SessionID       string
	PaymentIntentID string
	FullRefund      bool
	RefundedCents   int64
}

// VerifyEvent checks the webhook signature and maps the payload to a
// neutral event. Unknown event types verify fine and come back as
// EventIgnored.
func (c *Client) VerifyEvent(payload []byte, signature string) (WebhookEvent, error) {
	event, err := webhook.ConstructEvent(payload, signature, c.webhookSecret)
	if err != nil {
		return WebhookEvent{}, err
	}

	switch event.Type {
	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return WebhookEvent{}, err
		}
		return WebhookEvent{Type: EventCheckoutCompleted, SessionID: sess.ID}, nil

	case "payment_intent.succeeded":
		var intent stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
			return WebhookEvent{}, err
		}
		return WebhookEvent{Type: EventPaymentSucceeded, PaymentIntentID: intent.ID}, nil

	case "charge.refunded":
		var charge stripe.Charge
		if err := json.Unmarshal(event.Data.Raw, &charge); err != nil {
			return WebhookEvent{}, err
		}
		out := WebhookEvent{
			Type:          EventChargeRefunded,
			FullRefund:    charge.Refunded && charge.AmountRefunded == charge.Amount,
			RefundedCents: charge.AmountRefunded,
		}
		if charge.PaymentIntent != nil {
			out.PaymentIntentID = charge.PaymentIntent.ID
		}
		return out, nil
	}
	return WebhookEvent{Type: EventIgnored}, nil
}

// CompletedSession retrieves a finished session with its line items and
// shapes it as the order to record. The order carries no id yet; the
// store assigns one.
func (c *Client) CompletedSession(ctx context.Context, sessionID string) (*domain.Order, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	params.AddExpand("line_items")
	params.AddExpand("payment_intent")

	sess, err := c.api.CheckoutSessions.Get(sessionID, params)
	if err != nil {
		return nil, err
	}

	order := &domain.Order{
		SessionID:     sess.ID,
		Status:        domain.OrderPending,
		SubtotalCents: sess.AmountSubtotal,
		TotalCents:    sess.AmountTotal,
		Currency:      strings.ToUpper(string(sess.Currency)),
	}
	if sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid {
		order.Status = domain.OrderPaid
	}
	if sess.PaymentIntent != nil {
		order.PaymentIntentID = sess.PaymentIntent.ID
	}
	if sess.CustomerDetails != nil {
		order.Email = sess.CustomerDetails.Email
	}
	if sess.LineItems != nil {
		for _, li := range sess.LineItems.Data {
			item := domain.OrderItem{
				ProductName:    li.Description,
				Quantity:       int(li.Quantity),
				UnitPriceCents: li.AmountSubtotal,
				Currency:       strings.ToUpper(string(li.Currency)),
			}
			if li.Price != nil {
				item.VariantID = li.Price.ID
				item.UnitPriceCents = li.Price.UnitAmount
			}
			order.Items = append(order.Items, item)
		}
	}
	return order, nil
}
