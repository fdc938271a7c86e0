// Package auth implements the HTTP Basic authentication gate in front of
// protected routes. It keeps no state of its own; every decision reads the
// user store at call time.
package auth

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"

	"ShopAPI/internal/user"
)

const basicPrefix = "Basic "

var ErrUnauthenticated = errors.New("unauthenticated")

// Denial is why a request was refused. Every Denial matches
// ErrUnauthenticated with errors.Is.
type Denial struct {
	Reason  string
	Message string
}

func (d *Denial) Error() string { return d.Message }
func (d *Denial) Unwrap() error { return ErrUnauthenticated }

var (
	ErrMissingHeader  = &Denial{Reason: "missing_header", Message: "No authorization details found!"}
	ErrBadScheme      = &Denial{Reason: "bad_scheme", Message: "Invalid authorization scheme"}
	ErrMalformed      = &Denial{Reason: "malformed", Message: "Invalid authorization format"}
	ErrBadCredentials = &Denial{Reason: "bad_credentials", Message: "Incorrect Credentials"}
)

type CredentialFinder interface {
	FindByCredentials(ctx context.Context, email, password string) (user.User, error)
}

// ParseBasic extracts username and password from an Authorization header
// value. The password may itself contain colons.
func ParseBasic(header string) (username, password string, err error) {
	if header == "" {
		return "", "", ErrMissingHeader
	}

	encoded, ok := strings.CutPrefix(header, basicPrefix)
	if !ok {
		return "", "", ErrBadScheme
	}

	decoded, err := decodeBase64(strings.TrimSpace(encoded))
	if err != nil {
		return "", "", ErrMalformed
	}

	username, password, ok = strings.Cut(decoded, ":")
	if !ok {
		return "", "", ErrMalformed
	}
	return username, password, nil
}

// Authenticate returns the user whose email and password exactly match the
// header credentials.
func Authenticate(ctx context.Context, users CredentialFinder, header string) (user.User, error) {
	email, password, err := ParseBasic(header)
	if err != nil {
		return user.User{}, err
	}

	u, err := users.FindByCredentials(ctx, email, password)
	if errors.Is(err, user.ErrNotFound) {
		return user.User{}, ErrBadCredentials
	}
	if err != nil {
		return user.User{}, err
	}
	return u, nil
}

// BasicHeader builds the header value a client sends for email/password.
func BasicHeader(email, password string) string {
	return basicPrefix + base64.StdEncoding.EncodeToString([]byte(email+":"+password))
}

// decodeBase64 accepts padded and unpadded standard encoding.
func decodeBase64(s string) (string, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		b, err = base64.RawStdEncoding.DecodeString(s)
	}
	if err != nil {
		return "", err
	}
	return string(b), nil
}
