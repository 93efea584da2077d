package jsonfile

import (
	"context"
	"time"

	"github.com/agencia-oeste/viajes-api/internal/core/domain"
)

// userRecord is the on-disk shape of a user. Unknown legacy fields such as
// a stored role are dropped on read.
type userRecord struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Password  string    `json:"password"`
	CreatedAt time.Time `json:"createdAt"`
}

func (r userRecord) toDomain() *domain.User {
	return &domain.User{
		ID:           r.ID,
		Email:        r.Email,
		PasswordHash: r.Password,
		CreatedAt:    r.CreatedAt,
	}
}

type UserRepository struct {
	users *Collection[userRecord]
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	all, err := r.users.Load(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range all {
		if u.Email == email {
			return u.toDomain(), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

// Create appends the user unless the email is taken. The check and the
// append run as one write job.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	rec := userRecord{
		ID:        user.ID,
		Email:     user.Email,
		Password:  user.PasswordHash,
		CreatedAt: user.CreatedAt,
	}
	err := r.users.Update(ctx, func(all []userRecord) ([]userRecord, error) {
		for _, u := range all {
			if u.Email == rec.Email {
				return nil, domain.ErrUserExists
			}
		}
		return append(all, rec), nil
	})
	if err != nil {
		return nil, err
	}
	return rec.toDomain(), nil
}
