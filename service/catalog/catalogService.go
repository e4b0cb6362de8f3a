package catalogsvc

import (
	"context"
	"errors"

	"github.com/vidya365/rental/model"
)

type Repo interface {
	Create(ctx context.Context, it *model.RentalItem) error
	List(ctx context.Context) ([]model.RentalItem, error)
	Detail(ctx context.Context, id int64) (*model.RentalItem, error)
	AddStock(ctx context.Context, id int64, n int64) error
}

type Service interface {
	Create(ctx context.Context, title, description string, pricePerDay, deposit float64, quantity int64) (*model.RentalItem, error)
	List(ctx context.Context) ([]model.RentalItem, error)
	Detail(ctx context.Context, id int64) (*model.RentalItem, error)
	AddStock(ctx context.Context, id int64, n int64) error
}

type service struct{ r Repo }

func New(r Repo) Service { return &service{r: r} }

func (s *service) Create(ctx context.Context, title, description string, pricePerDay, deposit float64, quantity int64) (*model.RentalItem, error) {
	if title == "" || pricePerDay < 0 || deposit < 0 || quantity < 0 {
		return nil, errors.New("invalid payload")
	}
	it := &model.RentalItem{
		Title:             title,
		Description:       description,
		PricePerDay:       pricePerDay,
		Deposit:           deposit,
		TotalQuantity:     quantity,
		AvailableQuantity: quantity,
	}
	if err := s.r.Create(ctx, it); err != nil {
		return nil, err
	}
	return it, nil
}

func (s *service) List(ctx context.Context) ([]model.RentalItem, error) { return s.r.List(ctx) }

func (s *service) Detail(ctx context.Context, id int64) (*model.RentalItem, error) {
	return s.r.Detail(ctx, id)
}

func (s *service) AddStock(ctx context.Context, id int64, n int64) error {
	return s.r.AddStock(ctx, id, n)
}
