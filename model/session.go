package model

import "time"

type DeliveryOption string

const (
	DeliveryPickup  DeliveryOption = "pickup"
	DeliveryCourier DeliveryOption = "delivery"
)

// CheckoutSession is the scratch state accumulated across the checkout
// steps until it is committed into a RentalOrder.
type CheckoutSession struct {
	Token          string         `json:"token"`
	UserID         int64          `json:"user_id"`
	ItemID         int64          `json:"item_id"`
	StartDate      time.Time      `json:"start_date"`
	EndDate        time.Time      `json:"end_date"`
	DeliveryOption DeliveryOption `json:"delivery_option"`
	RentAmount     float64        `json:"rent_amount"`
	DeliveryCharge float64        `json:"delivery_charge"`
	OrderRef       *int64         `json:"order_ref,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

func (s *CheckoutSession) TotalAmount() float64 {
	return s.RentAmount + s.DeliveryCharge
}
