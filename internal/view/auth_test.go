package view

import (
	"context"
	"errors"
	"testing"

	"whatsup/internal/api"
)

type fakeSessionAuth struct {
	err   error
	calls int
}

func (f *fakeSessionAuth) Login(ctx context.Context, username, password string) error {
	f.calls++
	return f.err
}

type fakeRegister struct {
	err   error
	calls int
}

func (f *fakeRegister) Register(ctx context.Context, username, email, password, password2 string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return "new-token", nil
}

func TestLoginViewSuccessClearsError(t *testing.T) {
	s := &fakeSessionAuth{}
	v := NewLoginView(s)
	if err := v.Submit(context.Background(), "alice", "pw"); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if v.ErrorMessage() != "" {
		t.Fatalf("message = %q", v.ErrorMessage())
	}
}

func TestLoginViewBadCredentials(t *testing.T) {
	s := &fakeSessionAuth{err: &api.AuthError{Message: "invalid username or password"}}
	v := NewLoginView(s)
	if err := v.Submit(context.Background(), "alice", "wrong"); err == nil {
		t.Fatal("expected error")
	}
	if v.ErrorMessage() != "invalid username or password" {
		t.Fatalf("message = %q", v.ErrorMessage())
	}
}

func TestLoginViewTransportFailureGenericMessage(t *testing.T) {
	s := &fakeSessionAuth{err: errors.New("dial tcp: connection refused")}
	v := NewLoginView(s)
	if err := v.Submit(context.Background(), "alice", "pw"); err == nil {
		t.Fatal("expected error")
	}
	if v.ErrorMessage() != "login failed, try again" {
		t.Fatalf("message = %q", v.ErrorMessage())
	}
}

func TestRegisterViewFieldConflict(t *testing.T) {
	b := &fakeRegister{err: &api.ValidationError{Message: "username already taken"}}
	v := NewRegisterView(b)
	if err := v.Submit(context.Background(), "bob", "b@x.io", "pw", "pw"); err == nil {
		t.Fatal("expected error")
	}
	if v.ErrorMessage() != "username already taken" {
		t.Fatalf("message = %q", v.ErrorMessage())
	}
}

func TestRegisterViewSuccess(t *testing.T) {
	b := &fakeRegister{}
	v := NewRegisterView(b)
	if err := v.Submit(context.Background(), "bob", "b@x.io", "pw", "pw"); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if v.ErrorMessage() != "" {
		t.Fatalf("message = %q", v.ErrorMessage())
	}
	if b.calls != 1 {
		t.Fatalf("calls = %d", b.calls)
	}
}

func TestRegisterViewUnknownFailureGenericMessage(t *testing.T) {
	b := &fakeRegister{err: errors.New("boom")}
	v := NewRegisterView(b)
	if err := v.Submit(context.Background(), "bob", "b@x.io", "pw", "pw"); err == nil {
		t.Fatal("expected error")
	}
	if v.ErrorMessage() != "could not create the account, try again" {
		t.Fatalf("message = %q", v.ErrorMessage())
	}
}
