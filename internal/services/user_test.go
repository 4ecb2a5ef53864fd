package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"breadit/internal/testutil"
)

func TestUserRegisterAndAuthenticate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	svc := NewUserService(db)

	user, err := svc.Register(ctx, "Alice", "Alice@Example.com", "hunter22")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if user.Email != "alice@example.com" {
		t.Errorf("Expected normalized email, got %s", user.Email)
	}
	if user.Password == "hunter22" {
		t.Error("Password stored in plain text")
	}

	if _, err := svc.Register(ctx, "Other", "alice@example.com", "hunter22"); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("Expected ErrEmailTaken, got %v", err)
	}
	if _, err := svc.Register(ctx, "Bob", "bob@example.com", "123"); !errors.Is(err, ErrWeakPassword) {
		t.Errorf("Expected ErrWeakPassword, got %v", err)
	}

	got, err := svc.Authenticate(ctx, " alice@example.com", "hunter22")
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("Expected user %s, got %s", user.ID, got.ID)
	}
	if _, err := svc.Authenticate(ctx, "alice@example.com", "wrong"); !errors.Is(err, ErrInvalidLogin) {
		t.Errorf("Expected ErrInvalidLogin, got %v", err)
	}
	if _, err := svc.Authenticate(ctx, "nobody@example.com", "hunter22"); !errors.Is(err, ErrInvalidLogin) {
		t.Errorf("Expected ErrInvalidLogin, got %v", err)
	}
}

func TestUserRegisterPasswordLength(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  error
	}{
		{"too short", "12345", ErrWeakPassword},
		{"shortest", "123456", nil},
		{"longest", strings.Repeat("a", 72), nil},
		{"too long", strings.Repeat("a", 73), ErrWeakPassword},
		{"multibyte over limit", strings.Repeat("密", 25), ErrWeakPassword},
	}

	db := testutil.SetupTestDB(t)
	svc := NewUserService(db)
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			email := fmt.Sprintf("user%d@example.com", i)
			_, err := svc.Register(context.Background(), "User", email, tt.password)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestUserUpdateUsername(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	svc := NewUserService(db)

	alice := testutil.CreateTestUser(t, db, "alice")
	bob := testutil.CreateTestUser(t, db, "")

	if err := svc.UpdateUsername(ctx, bob.ID, "alice"); !errors.Is(err, ErrUsernameTaken) {
		t.Errorf("Expected ErrUsernameTaken, got %v", err)
	}
	if err := svc.UpdateUsername(ctx, bob.ID, "bobby"); err != nil {
		t.Fatalf("UpdateUsername failed: %v", err)
	}
	// keeping your own name is not a conflict
	if err := svc.UpdateUsername(ctx, alice.ID, "alice"); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}

	got, err := svc.Get(ctx, bob.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.DisplayName() != "bobby" {
		t.Errorf("Expected username bobby, got %q", got.DisplayName())
	}

	if err := svc.UpdateUsername(ctx, "", "x"); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("Expected ErrUnauthenticated, got %v", err)
	}
	if _, err := svc.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}
