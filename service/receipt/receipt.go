// Package receipt renders the PDF attached to an approved rental order.
// Rendering is a pure function of its inputs: the same order, user and
// profile always produce byte-identical output (the PDF creation date is
// pinned so the container metadata cannot drift).
package receipt

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/vidya365/rental/model"
)

const dateLayout = "2006-01-02"

// creationDate pins the PDF metadata so output is reproducible.
var creationDate = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

// Render produces the receipt document for an order. profile may be nil;
// the receipt then carries a "details not found" block instead of failing.
func Render(o *model.RentalOrder, itemTitle string, u *model.User, profile *model.UserProfile) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCreationDate(creationDate)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, "Rental Order Receipt", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 12)
	line := func(s string) { pdf.CellFormat(0, 8, tr(s), "", 1, "L", false, 0, "") }

	line(fmt.Sprintf("Order ID: %s", o.OrderID))
	line(fmt.Sprintf("User: %s", u.Username))
	line(fmt.Sprintf("Email: %s", u.Email))
	line(fmt.Sprintf("Item: %s", itemTitle))
	line(fmt.Sprintf("Start Date: %s", o.StartDate.Format(dateLayout)))
	line(fmt.Sprintf("End Date: %s", o.EndDate.Format(dateLayout)))
	line(fmt.Sprintf("Rental Days: %d", o.RentalDays()))
	line(fmt.Sprintf("Per Day Rent: Rs. %.2f", o.PerDayRent()))
	line(fmt.Sprintf("Total Amount: Rs. %.2f", o.TotalAmount))
	line(fmt.Sprintf("Payment Method: %s", o.PaymentMethod))
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 14)
	if profile == nil {
		line("User Details Not Found")
	} else {
		line("User Details")
		pdf.SetFont("Helvetica", "", 12)
		line(fmt.Sprintf("Phone: %s", orDash(profile.Phone)))
		line(fmt.Sprintf("Address: %s, %s", orDash(profile.AddressLine1), orDash(profile.City)))
		line(fmt.Sprintf("State: %s, Pincode: %s", orDash(profile.State), orDash(profile.Pincode)))
		line(fmt.Sprintf("Aadhar: %s", orDash(profile.Aadhar)))
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}
