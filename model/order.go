package model

import "time"

type OrderStatus string

const (
	OrderPending  OrderStatus = "pending"
	OrderApproved OrderStatus = "approved"
	OrderRejected OrderStatus = "rejected"
)

type PaymentMethod string

const (
	PayOnline PaymentMethod = "online"
	PayCOD    PaymentMethod = "cod"
)

type RentalOrder struct {
	ID            int64         `json:"id"`
	OrderID       string        `json:"order_id"`
	UserID        int64         `json:"user_id"`
	ItemID        int64         `json:"item_id"`
	StartDate     time.Time     `json:"start_date"`
	EndDate       time.Time     `json:"end_date"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	Status        OrderStatus   `json:"status"`
	TotalAmount   float64       `json:"total_amount"`
	ReminderSent  bool          `json:"reminder_sent"`
	OverdueSent   bool          `json:"overdue_sent"`
	HasReceipt    bool          `json:"has_receipt"`
	CreatedAt     time.Time     `json:"created_at"`
}

// RentalDays is the inclusive day count of the booking, never below 1.
func (o *RentalOrder) RentalDays() int {
	days := int(o.EndDate.Sub(o.StartDate).Hours()/24) + 1
	if days < 1 {
		days = 1
	}
	return days
}

// PerDayRent derives the effective per-day charge from the committed total,
// which may include the delivery charge.
func (o *RentalOrder) PerDayRent() float64 {
	return o.TotalAmount / float64(o.RentalDays())
}
