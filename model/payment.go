package model

import "time"

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentSuccess PaymentStatus = "SUCCESS"
	PaymentFailed  PaymentStatus = "FAILED"
)

// Payment tracks one attempt to collect money for a rental order. The
// OrderRef points at the rental order row; OrderID is this record's own
// identifier in the payment series.
type Payment struct {
	ID                int64         `json:"id"`
	OrderRef          int64         `json:"order_ref"`
	OrderID           string        `json:"order_id"`
	RazorpayOrderID   *string       `json:"razorpay_order_id,omitempty"`
	RazorpayPaymentID *string       `json:"razorpay_payment_id,omitempty"`
	Status            PaymentStatus `json:"status"`
	CreatedAt         time.Time     `json:"created_at"`
}
