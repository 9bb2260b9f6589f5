package ports

import (
	"context"

	"github.com/swahilipot/room-booking/internal/core/domain"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// Create inserts the user and returns it with its generated ID. A
	// duplicate email yields domain.ErrEmailTaken.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	// UpsertAdmin makes sure an admin account exists for the given email with
	// the given password hash.
	UpsertAdmin(ctx context.Context, user *domain.User) error
}

// SignupInput carries the fields accepted by POST /signup.
type SignupInput struct {
	Email      string
	Password   string
	FullName   string
	Department string
}

// AuthService handles signup and login.
type AuthService interface {
	Signup(ctx context.Context, in SignupInput) (*domain.User, error)
	// Login returns a signed token and the sanitized user. Unknown email and
	// wrong password both yield domain.ErrInvalidCredentials.
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
}
