package domain

import "time"

type OrderStatus string

const (
	OrderPending           OrderStatus = "pending"
	OrderPaid              OrderStatus = "paid"
	OrderFulfilled         OrderStatus = "fulfilled"
	OrderCancelled         OrderStatus = "cancelled"
	OrderRefunded          OrderStatus = "refunded"
	OrderPartiallyRefunded OrderStatus = "partially_refunded"
)

// Order is a completed checkout recorded from the payment provider's
// webhook. Amounts are integer minor units.
type Order struct {
	ID              string      `json:"id"`
	SessionID       string      `json:"-"`
	PaymentIntentID string      `json:"-"`
	Status          OrderStatus `json:"status"`
	Email           string      `json:"email,omitempty"`
	SubtotalCents   int64       `json:"subtotalCents"`
	TotalCents      int64       `json:"totalCents"`
	Currency        string      `json:"currency"`
	RefundedCents   int64       `json:"refundedCents,omitempty"`
	CreatedAt       time.Time   `json:"createdAt"`
	Items           []OrderItem `json:"items,omitempty"`
}

type OrderItem struct {
	ID             string `json:"id"`
	OrderID        string `json:"-"`
	VariantID      string `json:"variantId"`
	ProductName    string `json:"productName"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unitPriceCents"`
	Currency       string `json:"currency"`
}
