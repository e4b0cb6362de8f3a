package checkoutsvc

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vidya365/rental/model"
	paymentsvc "github.com/vidya365/rental/service/payment"
)

type sessionsMock struct {
	insertFn      func(ctx context.Context, s *model.CheckoutSession) error
	getFn         func(ctx context.Context, token string, userID int64) (*model.CheckoutSession, error)
	setDeliveryFn func(ctx context.Context, token string, userID int64, opt model.DeliveryOption, charge float64) error
	setOrderRefFn func(ctx context.Context, token string, userID int64, orderRef int64) error
}

func (m *sessionsMock) Insert(ctx context.Context, s *model.CheckoutSession) error {
	return m.insertFn(ctx, s)
}
func (m *sessionsMock) Get(ctx context.Context, token string, userID int64) (*model.CheckoutSession, error) {
	return m.getFn(ctx, token, userID)
}
func (m *sessionsMock) SetDelivery(ctx context.Context, token string, userID int64, opt model.DeliveryOption, charge float64) error {
	return m.setDeliveryFn(ctx, token, userID, opt, charge)
}
func (m *sessionsMock) SetOrderRef(ctx context.Context, token string, userID int64, orderRef int64) error {
	return m.setOrderRefFn(ctx, token, userID, orderRef)
}

type itemsMock struct {
	detailFn func(ctx context.Context, id int64) (*model.RentalItem, error)
}

func (m *itemsMock) Detail(ctx context.Context, id int64) (*model.RentalItem, error) {
	return m.detailFn(ctx, id)
}

type usersMock struct {
	upsertFn func(ctx context.Context, p *model.UserProfile) error
}

func (m *usersMock) UpsertProfile(ctx context.Context, p *model.UserProfile) error {
	return m.upsertFn(ctx, p)
}

type orderSvcMock struct {
	createFn func(ctx context.Context, userID, itemID int64, start, end time.Time, method model.PaymentMethod, total float64) (*model.RentalOrder, error)
	getFn    func(ctx context.Context, orderRef int64) (*model.RentalOrder, error)
}

func (m *orderSvcMock) Create(ctx context.Context, userID, itemID int64, start, end time.Time, method model.PaymentMethod, total float64) (*model.RentalOrder, error) {
	return m.createFn(ctx, userID, itemID, start, end, method, total)
}
func (m *orderSvcMock) Approve(ctx context.Context, orderRef int64) error { panic("not used") }
func (m *orderSvcMock) Reject(ctx context.Context, orderRef int64) error  { panic("not used") }
func (m *orderSvcMock) Get(ctx context.Context, orderRef int64) (*model.RentalOrder, error) {
	return m.getFn(ctx, orderRef)
}
func (m *orderSvcMock) MyOrders(ctx context.Context, userID int64) ([]model.RentalOrder, error) {
	panic("not used")
}
func (m *orderSvcMock) ReceiptPDF(ctx context.Context, orderRef, userID int64) ([]byte, error) {
	panic("not used")
}

type paymentSvcMock struct {
	startFn func(ctx context.Context, userID, orderRef int64, method model.PaymentMethod) (*paymentsvc.Started, error)
}

func (m *paymentSvcMock) Start(ctx context.Context, userID, orderRef int64, method model.PaymentMethod) (*paymentsvc.Started, error) {
	return m.startFn(ctx, userID, orderRef, method)
}
func (m *paymentSvcMock) HandleCallback(ctx context.Context, gwOrderID, gwPaymentID, signature string) error {
	panic("not used")
}
func (m *paymentSvcMock) HandleWebhook(ctx context.Context, raw []byte) error { panic("not used") }
func (m *paymentSvcMock) ConfirmCOD(ctx context.Context, orderRef int64) error {
	panic("not used")
}

var fixedNow = time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC)

func newTestService(sr Sessions, ir Items, ur Users, orders *orderSvcMock, payments *paymentSvcMock) *service {
	return &service{
		sr: sr, ir: ir, ur: ur, orders: orders, payments: payments,
		now: func() time.Time { return fixedNow },
	}
}

func okDetails() Details {
	return Details{
		Name:    "Vidya Sharma",
		Email:   "V@Example.com",
		Phone:   "9876543210",
		Aadhar:  "123412341234",
		Address: "12 MG Road, Pune",
	}
}

// --- tests ---

func TestStartDates_InclusiveDays(t *testing.T) {
	ctx := context.Background()
	var saved *model.CheckoutSession

	sr := &sessionsMock{
		insertFn: func(ctx context.Context, s *model.CheckoutSession) error {
			saved = s
			return nil
		},
	}
	ir := &itemsMock{
		detailFn: func(ctx context.Context, id int64) (*model.RentalItem, error) {
			return &model.RentalItem{ID: id, PricePerDay: 100, Available: true}, nil
		},
	}
	s := newTestService(sr, ir, &usersMock{}, &orderSvcMock{}, &paymentSvcMock{})

	start := time.Date(2024, 6, 20, 15, 0, 0, 0, time.UTC)
	end := time.Date(2024, 6, 22, 9, 0, 0, 0, time.UTC)

	sess, err := s.StartDates(ctx, 5, 3, start, end)
	require.NoError(t, err)
	require.NotEmpty(t, sess.Token)
	// 20th through 22nd is three chargeable days regardless of time of day.
	require.Equal(t, 300.0, sess.RentAmount)
	require.Equal(t, 300.0, sess.TotalAmount())
	require.Equal(t, model.DeliveryPickup, sess.DeliveryOption)
	require.Equal(t, saved, sess)
}

func TestStartDates_SameDayIsOneDay(t *testing.T) {
	sr := &sessionsMock{
		insertFn: func(ctx context.Context, s *model.CheckoutSession) error { return nil },
	}
	ir := &itemsMock{
		detailFn: func(ctx context.Context, id int64) (*model.RentalItem, error) {
			return &model.RentalItem{ID: id, PricePerDay: 80, Available: true}, nil
		},
	}
	s := newTestService(sr, ir, &usersMock{}, &orderSvcMock{}, &paymentSvcMock{})

	day := time.Date(2024, 6, 20, 0, 0, 0, 0, time.UTC)
	sess, err := s.StartDates(context.Background(), 5, 3, day, day)
	require.NoError(t, err)
	require.Equal(t, 80.0, sess.RentAmount)
}

func TestStartDates_Validation(t *testing.T) {
	ir := &itemsMock{
		detailFn: func(ctx context.Context, id int64) (*model.RentalItem, error) {
			if id == 404 {
				return nil, sql.ErrNoRows
			}
			return &model.RentalItem{ID: id, Available: false}, nil
		},
	}
	s := newTestService(&sessionsMock{}, ir, &usersMock{}, &orderSvcMock{}, &paymentSvcMock{})
	ctx := context.Background()

	today := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	_, err := s.StartDates(ctx, 5, 3, today.AddDate(0, 0, -1), today)
	require.Equal(t, ErrBadDates, Code(err))

	_, err = s.StartDates(ctx, 5, 3, today.AddDate(0, 0, 2), today.AddDate(0, 0, 1))
	require.Equal(t, ErrBadDates, Code(err))

	_, err = s.StartDates(ctx, 5, 404, today, today)
	require.Equal(t, ErrItemNotFound, Code(err))

	_, err = s.StartDates(ctx, 5, 3, today, today)
	require.Equal(t, ErrNoStock, Code(err))
}

func TestStartDates_TodayIsAllowed(t *testing.T) {
	sr := &sessionsMock{
		insertFn: func(ctx context.Context, s *model.CheckoutSession) error { return nil },
	}
	ir := &itemsMock{
		detailFn: func(ctx context.Context, id int64) (*model.RentalItem, error) {
			return &model.RentalItem{ID: id, PricePerDay: 100, Available: true}, nil
		},
	}
	s := newTestService(sr, ir, &usersMock{}, &orderSvcMock{}, &paymentSvcMock{})

	// fixedNow is mid-morning on the 15th; starting that day must pass.
	_, err := s.StartDates(context.Background(), 5, 3, fixedNow, fixedNow)
	require.NoError(t, err)
}

func TestSelectDelivery(t *testing.T) {
	ctx := context.Background()
	var gotOpt model.DeliveryOption
	var gotCharge float64

	sr := &sessionsMock{
		setDeliveryFn: func(ctx context.Context, token string, userID int64, opt model.DeliveryOption, charge float64) error {
			gotOpt, gotCharge = opt, charge
			return nil
		},
		getFn: func(ctx context.Context, token string, userID int64) (*model.CheckoutSession, error) {
			return &model.CheckoutSession{
				Token: token, UserID: userID,
				RentAmount: 300, DeliveryOption: gotOpt, DeliveryCharge: gotCharge,
			}, nil
		},
	}
	s := newTestService(sr, &itemsMock{}, &usersMock{}, &orderSvcMock{}, &paymentSvcMock{})

	sess, err := s.SelectDelivery(ctx, 5, "tok", model.DeliveryCourier)
	require.NoError(t, err)
	require.Equal(t, 50.0, sess.DeliveryCharge)
	require.Equal(t, 350.0, sess.TotalAmount())

	sess, err = s.SelectDelivery(ctx, 5, "tok", model.DeliveryPickup)
	require.NoError(t, err)
	require.Equal(t, 0.0, sess.DeliveryCharge)
	require.Equal(t, 300.0, sess.TotalAmount())

	_, err = s.SelectDelivery(ctx, 5, "tok", model.DeliveryOption("drone"))
	require.Equal(t, ErrBadDelivery, Code(err))
}

func TestSelectDelivery_SessionMissing(t *testing.T) {
	sr := &sessionsMock{
		setDeliveryFn: func(ctx context.Context, token string, userID int64, opt model.DeliveryOption, charge float64) error {
			return sql.ErrNoRows
		},
	}
	s := newTestService(sr, &itemsMock{}, &usersMock{}, &orderSvcMock{}, &paymentSvcMock{})

	_, err := s.SelectDelivery(context.Background(), 5, "missing", model.DeliveryPickup)
	require.Equal(t, ErrSessionNotFound, Code(err))
}

func TestSubmitDetails_CreatesOrder(t *testing.T) {
	ctx := context.Background()
	var profile *model.UserProfile
	var orderRefSet int64

	sr := &sessionsMock{
		getFn: func(ctx context.Context, token string, userID int64) (*model.CheckoutSession, error) {
			return &model.CheckoutSession{
				Token: token, UserID: userID, ItemID: 3,
				StartDate:      time.Date(2024, 6, 20, 0, 0, 0, 0, time.UTC),
				EndDate:        time.Date(2024, 6, 22, 0, 0, 0, 0, time.UTC),
				RentAmount:     300,
				DeliveryCharge: 50,
			}, nil
		},
		setOrderRefFn: func(ctx context.Context, token string, userID int64, orderRef int64) error {
			orderRefSet = orderRef
			return nil
		},
	}
	ur := &usersMock{
		upsertFn: func(ctx context.Context, p *model.UserProfile) error {
			profile = p
			return nil
		},
	}
	orders := &orderSvcMock{
		createFn: func(ctx context.Context, userID, itemID int64, start, end time.Time, method model.PaymentMethod, total float64) (*model.RentalOrder, error) {
			require.Equal(t, 350.0, total)
			return &model.RentalOrder{ID: 11, OrderID: "ORD202406001", Status: model.OrderPending, TotalAmount: total}, nil
		},
	}
	s := newTestService(sr, &itemsMock{}, ur, orders, &paymentSvcMock{})

	o, err := s.SubmitDetails(ctx, 5, "tok", okDetails())
	require.NoError(t, err)
	require.Equal(t, int64(11), o.ID)
	require.Equal(t, int64(11), orderRefSet)
	require.Equal(t, "v@example.com", profile.Email)
	require.Equal(t, "9876543210", profile.Phone)
}

func TestSubmitDetails_ResumesExistingOrder(t *testing.T) {
	orderRef := int64(11)
	sr := &sessionsMock{
		getFn: func(ctx context.Context, token string, userID int64) (*model.CheckoutSession, error) {
			return &model.CheckoutSession{Token: token, UserID: userID, OrderRef: &orderRef}, nil
		},
	}
	orders := &orderSvcMock{
		getFn: func(ctx context.Context, ref int64) (*model.RentalOrder, error) {
			require.Equal(t, orderRef, ref)
			return &model.RentalOrder{ID: ref, Status: model.OrderPending}, nil
		},
	}
	// usersMock left nil-fn: a profile write would panic.
	s := newTestService(sr, &itemsMock{}, &usersMock{}, orders, &paymentSvcMock{})

	o, err := s.SubmitDetails(context.Background(), 5, "tok", okDetails())
	require.NoError(t, err)
	require.Equal(t, orderRef, o.ID)
}

func TestSubmitDetails_Validation(t *testing.T) {
	s := newTestService(&sessionsMock{}, &itemsMock{}, &usersMock{}, &orderSvcMock{}, &paymentSvcMock{})
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*Details)
	}{
		{"missing name", func(d *Details) { d.Name = "" }},
		{"missing address", func(d *Details) { d.Address = "" }},
		{"short phone", func(d *Details) { d.Phone = "12345" }},
		{"alpha phone", func(d *Details) { d.Phone = "98765abcde" }},
		{"short aadhaar", func(d *Details) { d.Aadhar = "1234" }},
	}
	for _, tc := range cases {
		d := okDetails()
		tc.mutate(&d)
		_, err := s.SubmitDetails(ctx, 5, "tok", d)
		if Code(err) != ErrBadDetails {
			t.Fatalf("%s: got %v; want BAD_DETAILS", tc.name, err)
		}
	}
}

func TestSelectPaymentMethod(t *testing.T) {
	ctx := context.Background()
	orderRef := int64(11)

	sr := &sessionsMock{
		getFn: func(ctx context.Context, token string, userID int64) (*model.CheckoutSession, error) {
			if token == "no-order" {
				return &model.CheckoutSession{Token: token, UserID: userID}, nil
			}
			return &model.CheckoutSession{Token: token, UserID: userID, OrderRef: &orderRef}, nil
		},
	}
	payments := &paymentSvcMock{
		startFn: func(ctx context.Context, userID, ref int64, method model.PaymentMethod) (*paymentsvc.Started, error) {
			require.Equal(t, orderRef, ref)
			require.Equal(t, model.PayOnline, method)
			return &paymentsvc.Started{PaymentOrderID: "ORD202406007"}, nil
		},
	}
	s := newTestService(sr, &itemsMock{}, &usersMock{}, &orderSvcMock{}, payments)

	out, err := s.SelectPaymentMethod(ctx, 5, "tok", model.PayOnline)
	require.NoError(t, err)
	require.Equal(t, "ORD202406007", out.PaymentOrderID)

	_, err = s.SelectPaymentMethod(ctx, 5, "no-order", model.PayOnline)
	require.Equal(t, ErrNoOrder, Code(err))
}
