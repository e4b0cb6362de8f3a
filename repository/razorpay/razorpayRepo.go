package razorpayrepo

// CreateOrderReq asks the gateway for an order to collect Amount (in the
// currency's smallest unit, paise for INR) against our receipt reference.
type CreateOrderReq struct {
	Amount   int64
	Currency string
	Receipt  string
}

type CreateOrderResp struct {
	OrderID string
}

type Repo interface {
	CreateOrder(req CreateOrderReq) (*CreateOrderResp, error)

	// VerifySignature checks the HMAC the gateway sends with a payment
	// confirmation against the gateway order and payment IDs it covers.
	VerifySignature(gwOrderID, gwPaymentID, signature string) error
}
