package razorpayrepo

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/vidya365/rental/util/httpx"
)

const ordersURL = "https://api.razorpay.com/v1/orders"

type httpRepo struct {
	keyID     string
	keySecret string
	client    *http.Client
}

func NewHTTP(keyID, keySecret string) Repo {
	return &httpRepo{keyID: keyID, keySecret: keySecret, client: httpx.Client()}
}

func (r *httpRepo) CreateOrder(req CreateOrderReq) (*CreateOrderResp, error) {
	body := map[string]any{
		"amount":          req.Amount,
		"currency":        req.Currency,
		"receipt":         req.Receipt,
		"payment_capture": 1,
	}
	b, _ := json.Marshal(body)
	httpReq, err := http.NewRequest(http.MethodPost, ordersURL, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	httpReq.SetBasicAuth(r.keyID, r.keySecret)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("razorpay create order failed: %s", resp.Status)
	}

	var out struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	if out.ID == "" {
		return nil, errors.New("razorpay: empty order id")
	}
	return &CreateOrderResp{OrderID: out.ID}, nil
}

// VerifySignature implements the documented check: the signature is
// HMAC-SHA256("<order_id>|<payment_id>") under the key secret, hex-encoded.
func (r *httpRepo) VerifySignature(gwOrderID, gwPaymentID, signature string) error {
	mac := hmac.New(sha256.New, []byte(r.keySecret))
	mac.Write([]byte(gwOrderID + "|" + gwPaymentID))
	want := hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(want), []byte(signature)) {
		return errors.New("razorpay: signature mismatch")
	}
	return nil
}
