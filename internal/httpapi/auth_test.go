package httpapi

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Aeomar999/POS-sub000/internal/domain"
	"github.com/Aeomar999/POS-sub000/internal/store/memory"
)

func seedStaff(t *testing.T, repo *memory.Store, username string, password string, role domain.Role, active bool) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	if _, err := repo.CreateStaff(context.Background(), domain.StaffUser{
		Name:         username,
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
		Active:       active,
	}); err != nil {
		t.Fatalf("create staff: %v", err)
	}
}

func TestLoginAndParseTokenRoundTrip(t *testing.T) {
	repo := memory.New()
	seedStaff(t, repo, "clerk", "pass-word-1", domain.RoleSales, true)
	auth := NewAuthManager("roundtrip-secret", time.Hour, repo)

	resp, err := auth.Login(context.Background(), domain.LoginRequest{Username: "clerk", Password: "pass-word-1"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.Role != domain.RoleSales {
		t.Fatalf("expected sales role in response, got %q", resp.Role)
	}

	actor, err := auth.ParseToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if actor.Username != "clerk" || actor.Role != domain.RoleSales {
		t.Fatalf("unexpected actor %+v", actor)
	}
	if actor.StaffID == "" {
		t.Fatalf("expected staff id in actor")
	}
}

func TestLoginRejectsInactiveAccount(t *testing.T) {
	repo := memory.New()
	seedStaff(t, repo, "ghost", "pass-word-1", domain.RoleSales, false)
	auth := NewAuthManager("roundtrip-secret", time.Hour, repo)

	if _, err := auth.Login(context.Background(), domain.LoginRequest{Username: "ghost", Password: "pass-word-1"}); !errors.Is(err, ErrAccountInactive) {
		t.Fatalf("expected inactive account to be rejected, got %v", err)
	}
}

func TestLoginRejectsUnknownUserWithoutDistinguishing(t *testing.T) {
	repo := memory.New()
	auth := NewAuthManager("roundtrip-secret", time.Hour, repo)

	_, err := auth.Login(context.Background(), domain.LoginRequest{Username: "nobody", Password: "whatever"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected generic invalid credentials error, got %v", err)
	}
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	repo := memory.New()
	seedStaff(t, repo, "clerk", "pass-word-1", domain.RoleSales, true)
	signer := NewAuthManager("secret-one", time.Hour, repo)
	verifier := NewAuthManager("secret-two", time.Hour, repo)

	resp, err := signer.Login(context.Background(), domain.LoginRequest{Username: "clerk", Password: "pass-word-1"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, err := verifier.ParseToken(resp.AccessToken); err == nil {
		t.Fatalf("expected token signed with different secret to fail")
	}
}

func TestParseTokenRejectsExpiredToken(t *testing.T) {
	repo := memory.New()
	seedStaff(t, repo, "clerk", "pass-word-1", domain.RoleSales, true)
	auth := NewAuthManager("roundtrip-secret", time.Millisecond, repo)

	resp, err := auth.Login(context.Background(), domain.LoginRequest{Username: "clerk", Password: "pass-word-1"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	time.Sleep(50 * time.Millisecond)
	if _, err := auth.ParseToken(resp.AccessToken); err == nil {
		t.Fatalf("expected expired token to fail")
	}
}
