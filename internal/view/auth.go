package view

import (
	"context"
	"errors"
	"sync"

	"whatsup/internal/api"
)

// SessionAuth is the mutating side of the session the login page needs.
type SessionAuth interface {
	Login(ctx context.Context, username, password string) error
}

// LoginView owns the login form's error state. The session manager does
// the actual credential exchange and state mutation.
type LoginView struct {
	mu     sync.Mutex
	sess   SessionAuth
	errMsg string
}

func NewLoginView(sess SessionAuth) *LoginView {
	return &LoginView{sess: sess}
}

// Submit attempts a login. Bad credentials surface the AuthError's
// user-facing message; anything else gets a fixed generic one.
func (v *LoginView) Submit(ctx context.Context, username, password string) error {
	err := v.sess.Login(ctx, username, password)
	v.mu.Lock()
	defer v.mu.Unlock()
	if err == nil {
		v.errMsg = ""
		return nil
	}
	var authErr *api.AuthError
	if errors.As(err, &authErr) {
		v.errMsg = authErr.Message
	} else {
		v.errMsg = "login failed, try again"
	}
	return err
}

func (v *LoginView) ErrorMessage() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.errMsg
}

// RegisterBackend is the slice of the API client registration uses.
type RegisterBackend interface {
	Register(ctx context.Context, username, email, password, password2 string) (string, error)
}

// RegisterView owns the registration form's error state.
type RegisterView struct {
	mu      sync.Mutex
	backend RegisterBackend
	errMsg  string
}

func NewRegisterView(backend RegisterBackend) *RegisterView {
	return &RegisterView{backend: backend}
}

// Submit creates the account. Field conflicts come back as the most
// specific known message; the new account is not logged in automatically.
func (v *RegisterView) Submit(ctx context.Context, username, email, password, password2 string) error {
	_, err := v.backend.Register(ctx, username, email, password, password2)
	v.mu.Lock()
	defer v.mu.Unlock()
	if err == nil {
		v.errMsg = ""
		return nil
	}
	var valErr *api.ValidationError
	if errors.As(err, &valErr) {
		v.errMsg = valErr.Message
	} else {
		v.errMsg = "could not create the account, try again"
	}
	return err
}

func (v *RegisterView) ErrorMessage() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.errMsg
}
