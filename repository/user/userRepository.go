package userrepo

import (
	"context"
	"database/sql"

	"github.com/vidya365/rental/model"
)

type Repo interface {
	Create(ctx context.Context, u *model.User) error
	ByEmail(ctx context.Context, email string) (*model.User, error)
	ByID(ctx context.Context, id int64) (*model.User, error)

	UpsertProfile(ctx context.Context, p *model.UserProfile) error
	ProfileByUserID(ctx context.Context, userID int64) (*model.UserProfile, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

func (r *repo) Create(ctx context.Context, u *model.User) error {
	return r.db.QueryRowContext(ctx, `
		INSERT INTO users(first_name, last_name, email, username, role, password_hash)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING id, created_at`,
		u.FirstName, u.LastName, u.Email, u.Username, u.Role, u.PasswordHash,
	).Scan(&u.ID, &u.CreatedAt)
}

func (r *repo) ByEmail(ctx context.Context, email string) (*model.User, error) {
	u := &model.User{}
	err := r.db.QueryRowContext(ctx, `
        SELECT id, first_name, last_name, email, username, role, password_hash, created_at
        FROM users
        WHERE lower(email) = lower($1)`,
		email,
	).Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Username, &u.Role, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return u, nil
}

func (r *repo) ByID(ctx context.Context, id int64) (*model.User, error) {
	u := &model.User{}
	err := r.db.QueryRowContext(ctx, `
        SELECT id, first_name, last_name, email, username, role, password_hash, created_at
        FROM users
        WHERE id = $1`,
		id,
	).Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Username, &u.Role, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *repo) UpsertProfile(ctx context.Context, p *model.UserProfile) error {
	const q = `
		INSERT INTO user_profiles (user_id, phone, email, address_line1, city, state, pincode, aadhar)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (user_id)
		DO UPDATE SET phone=$2, email=$3, address_line1=$4, city=$5, state=$6, pincode=$7, aadhar=$8`
	_, err := r.db.ExecContext(ctx, q,
		p.UserID, p.Phone, p.Email, p.AddressLine1, p.City, p.State, p.Pincode, p.Aadhar)
	return err
}

func (r *repo) ProfileByUserID(ctx context.Context, userID int64) (*model.UserProfile, error) {
	p := &model.UserProfile{}
	err := r.db.QueryRowContext(ctx, `
		SELECT user_id, phone, email, address_line1, city, state, pincode, aadhar
		FROM user_profiles
		WHERE user_id = $1`,
		userID,
	).Scan(&p.UserID, &p.Phone, &p.Email, &p.AddressLine1, &p.City, &p.State, &p.Pincode, &p.Aadhar)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}
