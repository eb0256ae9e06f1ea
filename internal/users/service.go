package users

import (
	"context"
	"errors"
	"time"

	"github.com/ariefcatur/evn-storefront/internal/apperr"
	"github.com/ariefcatur/evn-storefront/internal/validate"
	"github.com/google/uuid"
)

type Store interface {
	GetByID(ctx context.Context, id string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	Create(ctx context.Context, u User) error
	Update(ctx context.Context, u User) error
	List(ctx context.Context, q ListQuery) ([]User, int, error)
}

// Service covers the profile and address book; sign-in lives in package auth.
type Service struct {
	Store Store
	Now   func() time.Time
}

func NewService(store Store) *Service { return &Service{Store: store, Now: time.Now} }

type ProfileInput struct {
	Name  string `json:"name" validate:"required,min=2,max=80"`
	Phone string `json:"phone" validate:"omitempty,min=7,max=20"`
}

const maxAddresses = 10

func (s *Service) Get(ctx context.Context, id string) (User, error) {
	u, err := s.Store.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return User{}, apperr.NotFound("user not found")
	}
	if err != nil {
		return User{}, apperr.Internal("get user", err)
	}
	return u, nil
}

func (s *Service) UpdateProfile(ctx context.Context, id string, in ProfileInput) (User, error) {
	if msgs := validate.Struct(in); msgs != nil {
		return User{}, apperr.Validation("validation failed", msgs...)
	}
	u, err := s.Get(ctx, id)
	if err != nil {
		return User{}, err
	}
	u.Name = in.Name
	u.Phone = in.Phone
	return s.save(ctx, u)
}

func (s *Service) AddAddress(ctx context.Context, id string, a Address) (User, error) {
	if msgs := validate.Struct(a); msgs != nil {
		return User{}, apperr.Validation("validation failed", msgs...)
	}
	u, err := s.Get(ctx, id)
	if err != nil {
		return User{}, err
	}
	if len(u.Addresses) >= maxAddresses {
		return User{}, apperr.Business("address book is full (max %d)", maxAddresses)
	}
	a.ID = uuid.NewString()
	if len(u.Addresses) == 0 {
		a.IsDefault = true
	}
	if a.IsDefault {
		for i := range u.Addresses {
			u.Addresses[i].IsDefault = false
		}
	}
	u.Addresses = append(u.Addresses, a)
	return s.save(ctx, u)
}

func (s *Service) RemoveAddress(ctx context.Context, id, addressID string) (User, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return User{}, err
	}
	kept := make([]Address, 0, len(u.Addresses))
	removedDefault := false
	for _, a := range u.Addresses {
		if a.ID == addressID {
			removedDefault = a.IsDefault
			continue
		}
		kept = append(kept, a)
	}
	if len(kept) == len(u.Addresses) {
		return User{}, apperr.NotFound("address not found")
	}
	if removedDefault && len(kept) > 0 {
		kept[0].IsDefault = true
	}
	u.Addresses = kept
	return s.save(ctx, u)
}

func (s *Service) ListCustomers(ctx context.Context, q ListQuery) ([]User, int, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 || q.Limit > 100 {
		q.Limit = 20
	}
	out, total, err := s.Store.List(ctx, q)
	if err != nil {
		return nil, 0, apperr.Internal("list customers", err)
	}
	if out == nil {
		out = []User{}
	}
	return out, total, nil
}

func (s *Service) save(ctx context.Context, u User) (User, error) {
	u.UpdatedAt = s.Now().UTC()
	if err := s.Store.Update(ctx, u); err != nil {
		return User{}, apperr.Internal("save user", err)
	}
	return u, nil
}
