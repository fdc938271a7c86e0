package user

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("user not found")

// User credentials are compared verbatim. The password never leaves the
// process in a response body.
type User struct {
	Email    string `json:"email"`
	Password string `json:"-"`
}

type Store interface {
	Add(ctx context.Context, email, password string) (User, error)
	List(ctx context.Context) ([]User, error)
	FindByCredentials(ctx context.Context, email, password string) (User, error)
}
