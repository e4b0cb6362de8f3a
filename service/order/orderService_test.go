package ordersvc

import (
	"bytes"
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/vidya365/rental/model"
)

type ordersMock struct {
	insertFn        func(ctx context.Context, tx *sql.Tx, o *model.RentalOrder) error
	byIDFn          func(ctx context.Context, id int64) (*model.RentalOrder, error)
	getForUpdateFn  func(ctx context.Context, tx *sql.Tx, id int64) (*model.RentalOrder, error)
	setStatusFn     func(ctx context.Context, tx *sql.Tx, id int64, st model.OrderStatus) error
	attachReceiptFn func(ctx context.Context, tx *sql.Tx, id int64, pdf []byte) error
	receiptFn       func(ctx context.Context, id int64) (int64, []byte, error)
	listByUserFn    func(ctx context.Context, userID int64) ([]model.RentalOrder, error)
}

func (m *ordersMock) Insert(ctx context.Context, tx *sql.Tx, o *model.RentalOrder) error {
	return m.insertFn(ctx, tx, o)
}
func (m *ordersMock) ByID(ctx context.Context, id int64) (*model.RentalOrder, error) {
	return m.byIDFn(ctx, id)
}
func (m *ordersMock) GetForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*model.RentalOrder, error) {
	return m.getForUpdateFn(ctx, tx, id)
}
func (m *ordersMock) SetStatus(ctx context.Context, tx *sql.Tx, id int64, st model.OrderStatus) error {
	return m.setStatusFn(ctx, tx, id, st)
}
func (m *ordersMock) AttachReceipt(ctx context.Context, tx *sql.Tx, id int64, pdf []byte) error {
	return m.attachReceiptFn(ctx, tx, id, pdf)
}
func (m *ordersMock) Receipt(ctx context.Context, id int64) (int64, []byte, error) {
	return m.receiptFn(ctx, id)
}
func (m *ordersMock) ListByUser(ctx context.Context, userID int64) ([]model.RentalOrder, error) {
	return m.listByUserFn(ctx, userID)
}

type itemsMock struct {
	detailFn    func(ctx context.Context, id int64) (*model.RentalItem, error)
	decrementFn func(ctx context.Context, tx *sql.Tx, id int64, now time.Time) error
}

func (m *itemsMock) Detail(ctx context.Context, id int64) (*model.RentalItem, error) {
	return m.detailFn(ctx, id)
}
func (m *itemsMock) DecrementStock(ctx context.Context, tx *sql.Tx, id int64, now time.Time) error {
	return m.decrementFn(ctx, tx, id, now)
}

type usersMock struct {
	byIDFn    func(ctx context.Context, id int64) (*model.User, error)
	profileFn func(ctx context.Context, userID int64) (*model.UserProfile, error)
}

func (m *usersMock) ByID(ctx context.Context, id int64) (*model.User, error) {
	return m.byIDFn(ctx, id)
}
func (m *usersMock) ProfileByUserID(ctx context.Context, userID int64) (*model.UserProfile, error) {
	return m.profileFn(ctx, userID)
}

type seqMock struct {
	nextFn func(ctx context.Context, tx *sql.Tx, series, prefix, scopeKey string) (string, error)
}

func (m *seqMock) Next(ctx context.Context, tx *sql.Tx, series, prefix, scopeKey string) (string, error) {
	return m.nextFn(ctx, tx, series, prefix, scopeKey)
}

func newTestService(t *testing.T, or Orders, ir Items, ur Users, sq Sequences) (*service, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	fixed := time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)
	return &service{
		db: db, or: or, ir: ir, ur: ur, sq: sq,
		now: func() time.Time { return fixed },
	}, mock
}

// --- tests ---

func TestCreate_ComputesTotalAndAllocatesID(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2024, 6, 20, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 2) // 3 inclusive days

	or := &ordersMock{
		insertFn: func(ctx context.Context, tx *sql.Tx, o *model.RentalOrder) error {
			o.ID = 11
			return nil
		},
	}
	ir := &itemsMock{
		detailFn: func(ctx context.Context, id int64) (*model.RentalItem, error) {
			return &model.RentalItem{ID: id, PricePerDay: 100}, nil
		},
	}
	var gotSeries, gotScope string
	sq := &seqMock{
		nextFn: func(ctx context.Context, tx *sql.Tx, series, prefix, scopeKey string) (string, error) {
			gotSeries, gotScope = series, scopeKey
			return prefix + scopeKey + "001", nil
		},
	}

	s, mock := newTestService(t, or, ir, &usersMock{}, sq)
	mock.ExpectBegin()
	mock.ExpectCommit()

	o, err := s.Create(ctx, 5, 3, start, end, model.PayOnline, 0)
	require.NoError(t, err)
	require.Equal(t, int64(11), o.ID)
	require.Equal(t, "ORD202406001", o.OrderID)
	require.Equal(t, "rental_order", gotSeries)
	require.Equal(t, "202406", gotScope)
	require.Equal(t, 300.0, o.TotalAmount)
	require.Equal(t, model.OrderPending, o.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_KeepsGivenTotal(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2024, 6, 20, 0, 0, 0, 0, time.UTC)

	or := &ordersMock{
		insertFn: func(ctx context.Context, tx *sql.Tx, o *model.RentalOrder) error { return nil },
	}
	ir := &itemsMock{
		detailFn: func(ctx context.Context, id int64) (*model.RentalItem, error) {
			return &model.RentalItem{ID: id, PricePerDay: 100}, nil
		},
	}
	sq := &seqMock{
		nextFn: func(ctx context.Context, tx *sql.Tx, series, prefix, scopeKey string) (string, error) {
			return "ORD202406002", nil
		},
	}

	s, mock := newTestService(t, or, ir, &usersMock{}, sq)
	mock.ExpectBegin()
	mock.ExpectCommit()

	o, err := s.Create(ctx, 5, 3, start, start, model.PayCOD, 350)
	require.NoError(t, err)
	require.Equal(t, 350.0, o.TotalAmount)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_BadDates(t *testing.T) {
	s, _ := newTestService(t, &ordersMock{}, &itemsMock{}, &usersMock{}, &seqMock{})

	end := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	_, err := s.Create(context.Background(), 1, 1, end.AddDate(0, 0, 1), end, model.PayOnline, 0)
	require.Error(t, err)
	require.Equal(t, ErrBadDates, Code(err))
}

func TestCreate_ItemNotFound(t *testing.T) {
	ir := &itemsMock{
		detailFn: func(ctx context.Context, id int64) (*model.RentalItem, error) {
			return nil, sql.ErrNoRows
		},
	}
	s, _ := newTestService(t, &ordersMock{}, ir, &usersMock{}, &seqMock{})

	start := time.Date(2024, 6, 20, 0, 0, 0, 0, time.UTC)
	_, err := s.Create(context.Background(), 1, 404, start, start, model.PayOnline, 0)
	require.Error(t, err)
	require.Equal(t, ErrItemNotFound, Code(err))
}

func TestApprove_PendingOrder(t *testing.T) {
	ctx := context.Background()
	var decrements, attaches int

	or := &ordersMock{
		getForUpdateFn: func(ctx context.Context, tx *sql.Tx, id int64) (*model.RentalOrder, error) {
			return &model.RentalOrder{
				ID: id, OrderID: "ORD202406001", UserID: 5, ItemID: 3,
				StartDate: time.Date(2024, 6, 20, 0, 0, 0, 0, time.UTC),
				EndDate:   time.Date(2024, 6, 22, 0, 0, 0, 0, time.UTC),
				Status:    model.OrderPending, TotalAmount: 300,
			}, nil
		},
		setStatusFn: func(ctx context.Context, tx *sql.Tx, id int64, st model.OrderStatus) error {
			require.Equal(t, model.OrderApproved, st)
			return nil
		},
		attachReceiptFn: func(ctx context.Context, tx *sql.Tx, id int64, pdf []byte) error {
			attaches++
			require.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))
			return nil
		},
	}
	ir := &itemsMock{
		detailFn: func(ctx context.Context, id int64) (*model.RentalItem, error) {
			return &model.RentalItem{ID: id, Title: "Power Drill", PricePerDay: 100}, nil
		},
		decrementFn: func(ctx context.Context, tx *sql.Tx, id int64, now time.Time) error {
			decrements++
			return nil
		},
	}
	ur := &usersMock{
		byIDFn: func(ctx context.Context, id int64) (*model.User, error) {
			return &model.User{ID: id, FirstName: "Vidya", Email: "v@example.com"}, nil
		},
		profileFn: func(ctx context.Context, userID int64) (*model.UserProfile, error) {
			return nil, nil
		},
	}

	s, mock := newTestService(t, or, ir, ur, &seqMock{})
	mock.ExpectBegin()
	mock.ExpectCommit()

	require.NoError(t, s.Approve(ctx, 11))
	require.Equal(t, 1, decrements)
	require.Equal(t, 1, attaches)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApprove_AlreadyApprovedIsNoOp(t *testing.T) {
	or := &ordersMock{
		getForUpdateFn: func(ctx context.Context, tx *sql.Tx, id int64) (*model.RentalOrder, error) {
			return &model.RentalOrder{ID: id, Status: model.OrderApproved, HasReceipt: true}, nil
		},
		// setStatusFn and attachReceiptFn left nil: a call would panic.
	}
	ir := &itemsMock{
		// decrementFn left nil: a call would panic.
	}

	s, mock := newTestService(t, or, ir, &usersMock{}, &seqMock{})
	mock.ExpectBegin()
	mock.ExpectCommit()

	require.NoError(t, s.Approve(context.Background(), 11))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApprove_RejectedOrder(t *testing.T) {
	or := &ordersMock{
		getForUpdateFn: func(ctx context.Context, tx *sql.Tx, id int64) (*model.RentalOrder, error) {
			return &model.RentalOrder{ID: id, Status: model.OrderRejected}, nil
		},
	}

	s, mock := newTestService(t, or, &itemsMock{}, &usersMock{}, &seqMock{})
	mock.ExpectBegin()
	mock.ExpectRollback()

	err := s.Approve(context.Background(), 11)
	require.Error(t, err)
	require.Equal(t, ErrNotPending, Code(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApprove_NotFound(t *testing.T) {
	or := &ordersMock{
		getForUpdateFn: func(ctx context.Context, tx *sql.Tx, id int64) (*model.RentalOrder, error) {
			return nil, sql.ErrNoRows
		},
	}

	s, mock := newTestService(t, or, &itemsMock{}, &usersMock{}, &seqMock{})
	mock.ExpectBegin()
	mock.ExpectRollback()

	err := s.Approve(context.Background(), 404)
	require.Error(t, err)
	require.Equal(t, ErrNotFound, Code(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReject_PendingOrder(t *testing.T) {
	var set []model.OrderStatus
	or := &ordersMock{
		getForUpdateFn: func(ctx context.Context, tx *sql.Tx, id int64) (*model.RentalOrder, error) {
			return &model.RentalOrder{ID: id, Status: model.OrderPending}, nil
		},
		setStatusFn: func(ctx context.Context, tx *sql.Tx, id int64, st model.OrderStatus) error {
			set = append(set, st)
			return nil
		},
	}

	s, mock := newTestService(t, or, &itemsMock{}, &usersMock{}, &seqMock{})
	mock.ExpectBegin()
	mock.ExpectCommit()

	require.NoError(t, s.Reject(context.Background(), 11))
	require.Equal(t, []model.OrderStatus{model.OrderRejected}, set)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReject_ApprovedOrder(t *testing.T) {
	or := &ordersMock{
		getForUpdateFn: func(ctx context.Context, tx *sql.Tx, id int64) (*model.RentalOrder, error) {
			return &model.RentalOrder{ID: id, Status: model.OrderApproved}, nil
		},
	}

	s, mock := newTestService(t, or, &itemsMock{}, &usersMock{}, &seqMock{})
	mock.ExpectBegin()
	mock.ExpectRollback()

	err := s.Reject(context.Background(), 11)
	require.Error(t, err)
	require.Equal(t, ErrNotPending, Code(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReceiptPDF(t *testing.T) {
	or := &ordersMock{
		receiptFn: func(ctx context.Context, id int64) (int64, []byte, error) {
			switch id {
			case 1:
				return 5, []byte("%PDF-1.3 data"), nil
			case 2:
				return 5, nil, nil
			default:
				return 0, nil, sql.ErrNoRows
			}
		},
	}
	s, _ := newTestService(t, or, &itemsMock{}, &usersMock{}, &seqMock{})
	ctx := context.Background()

	pdf, err := s.ReceiptPDF(ctx, 1, 5)
	require.NoError(t, err)
	require.NotEmpty(t, pdf)

	_, err = s.ReceiptPDF(ctx, 1, 6)
	require.Equal(t, ErrNotOwner, Code(err))

	_, err = s.ReceiptPDF(ctx, 2, 5)
	require.Equal(t, ErrNoReceipt, Code(err))

	_, err = s.ReceiptPDF(ctx, 404, 5)
	require.Equal(t, ErrNotFound, Code(err))
}
