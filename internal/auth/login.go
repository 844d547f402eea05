package auth

import (
	"context"
	"errors"
	"net/url"
	"strings"
)

// MsgInvalidCredentials is the only authentication failure shown to users.
const MsgInvalidCredentials = "Invalid credentials."

// DefaultRedirect is where a successful login lands without a usable target.
const DefaultRedirect = "/dashboard"

// Authenticator checks credentials.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (*User, error)
}

// Login runs authentication and translates a credential mismatch, and only
// that, into a user-facing message. Any other error is returned unchanged.
func Login(ctx context.Context, a Authenticator, email, password string) (*User, string, error) {
	u, err := a.Authenticate(ctx, email, password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return nil, MsgInvalidCredentials, nil
		}
		return nil, "", err
	}
	return u, "", nil
}

// SafeRedirect returns target when it is a same-site absolute path and
// DefaultRedirect otherwise.
func SafeRedirect(target string) string {
	target = strings.TrimSpace(target)
	if target == "" || !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.Contains(target, `\`) {
		return DefaultRedirect
	}
	u, err := url.Parse(target)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return DefaultRedirect
	}
	return target
}
