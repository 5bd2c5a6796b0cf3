package domain

import "time"

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusSucceeded PaymentStatus = "succeeded"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusCancelled PaymentStatus = "cancelled"
)

type Payment struct {
	ID              int64         `json:"id"`
	OrderID         int64         `json:"order_id"`
	PaymentIntentID string        `json:"stripe_payment_intent_id,omitempty"`
	Amount          float64       `json:"amount"`
	Currency        string        `json:"currency"`
	Status          PaymentStatus `json:"status"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// PaymentSession is the processor-issued secret the payment widget redeems for one order.
type PaymentSession struct {
	ClientSecret string `json:"client_secret"`
	OrderID      int64  `json:"order_id"`
}
