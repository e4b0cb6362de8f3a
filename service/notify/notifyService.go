package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/vidya365/rental/model"
	orderrepo "github.com/vidya365/rental/repository/order"
)

const dateLayout = "2006-01-02"

// Orders is the slice of the order repository the notifier needs.
type Orders interface {
	DueForReminder(ctx context.Context, now time.Time) ([]orderrepo.NotificationRow, error)
	Overdue(ctx context.Context, now time.Time) ([]orderrepo.NotificationRow, error)
	MarkReminderSent(ctx context.Context, id int64) error
	MarkOverdueSent(ctx context.Context, id int64) error
}

type Service interface {
	// Sweep sends end-of-rental reminders (one day before the end date) and
	// overdue notices (after it) for approved orders, setting each order's
	// one-shot flag only after a successful send.
	Sweep(ctx context.Context, now time.Time) error

	BookingConfirmedOnline(to, name, itemTitle string, o *model.RentalOrder, gwPaymentID string)
	BookingConfirmedCOD(to, name, itemTitle string, total float64)
}

type service struct {
	or     Orders
	sender Sender
	log    *slog.Logger
}

func New(or Orders, sender Sender, log *slog.Logger) Service {
	return &service{or: or, sender: sender, log: log}
}

func (s *service) Sweep(ctx context.Context, now time.Time) error {
	due, err := s.or.DueForReminder(ctx, now)
	if err != nil {
		return err
	}
	for _, row := range due {
		body := fmt.Sprintf(
			"Dear %s,\n\n"+
				"A quick reminder that your rental of %q (order %s) ends tomorrow, %s. "+
				"Please arrange the return or contact us to extend.\n\n"+
				"Thank you,\nQuickNest Team",
			row.UserName, row.ItemTitle, row.OrderID, row.EndDate.Format(dateLayout))
		if err := s.sender.Send(row.UserEmail, "Reminder: Your Rental Ends Tomorrow - QuickNest", body); err != nil {
			s.log.Error("reminder mail failed", "order", row.OrderID, "err", err)
			continue
		}
		if err := s.or.MarkReminderSent(ctx, row.OrderRef); err != nil {
			s.log.Error("mark reminder sent failed", "order", row.OrderID, "err", err)
		}
	}

	over, err := s.or.Overdue(ctx, now)
	if err != nil {
		return err
	}
	for _, row := range over {
		body := fmt.Sprintf(
			"Dear %s,\n\n"+
				"Your rental of %q (order %s) was due on %s and is now overdue. "+
				"Please return the item as soon as possible or contact us if you need assistance.\n\n"+
				"Thank you,\nQuickNest Team",
			row.UserName, row.ItemTitle, row.OrderID, row.EndDate.Format(dateLayout))
		if err := s.sender.Send(row.UserEmail, "Rental Overdue Notice - QuickNest", body); err != nil {
			s.log.Error("overdue mail failed", "order", row.OrderID, "err", err)
			continue
		}
		if err := s.or.MarkOverdueSent(ctx, row.OrderRef); err != nil {
			s.log.Error("mark overdue sent failed", "order", row.OrderID, "err", err)
		}
	}
	return nil
}

func (s *service) BookingConfirmedOnline(to, name, itemTitle string, o *model.RentalOrder, gwPaymentID string) {
	if to == "" {
		return
	}
	body := fmt.Sprintf(
		"Dear %s,\n\n"+
			"Thank you for your booking with QuickNest!\n\n"+
			"Item: %s\n"+
			"Rental Duration: %s to %s\n"+
			"Order ID: %s\n"+
			"Payment ID: %s\n\n"+
			"Your booking has been confirmed. You can collect the item or wait for delivery as scheduled.\n\n"+
			"Regards,\nQuickNest Team",
		name, itemTitle,
		o.StartDate.Format(dateLayout), o.EndDate.Format(dateLayout),
		o.OrderID, gwPaymentID)
	if err := s.sender.Send(to, "QuickNest Booking Confirmed", body); err != nil {
		s.log.Error("confirmation mail failed", "order", o.OrderID, "err", err)
	}
}

func (s *service) BookingConfirmedCOD(to, name, itemTitle string, total float64) {
	if to == "" {
		return
	}
	body := fmt.Sprintf(
		"Dear %s,\n\n"+
			"Your booking has been confirmed!\n\n"+
			"Item: %s\n"+
			"Total Amount: Rs. %.2f\n"+
			"Payment Method: Cash on Delivery\n\n"+
			"Please come and collect your item from our service center.\n\n"+
			"Thank you for choosing QuickNest!",
		name, itemTitle, total)
	if err := s.sender.Send(to, "Booking Confirmed - Cash on Delivery", body); err != nil {
		s.log.Error("cod confirmation mail failed", "err", err)
	}
}
