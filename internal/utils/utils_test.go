package utils

import (
	"context"
	"testing"
	"time"
)

func TestStripTags(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"hello", "hello"},
		{"<b>bold</b> text", "bold text"},
		{"<script>alert(1)</script>", ""},
		{"  a & b  ", "a & b"},
		{"<p></p>", ""},
	}
	for _, tt := range tests {
		if got := StripTags(tt.in); got != tt.want {
			t.Errorf("StripTags(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLocalCacheExpiry(t *testing.T) {
	c := NewLocalCache(4)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Set("k", 42, time.Minute)
	if got := c.Get("k"); got != 42 {
		t.Fatalf("Expected 42, got %v", got)
	}

	now = now.Add(2 * time.Minute)
	if got := c.Get("k"); got != nil {
		t.Fatalf("Expected expired entry, got %v", got)
	}

	c.Set("k", 1, time.Minute)
	c.Delete("k")
	if got := c.Get("k"); got != nil {
		t.Fatalf("Expected deleted entry, got %v", got)
	}
}

func TestIntOr(t *testing.T) {
	if got := IntOr("", 2); got != 2 {
		t.Errorf("Expected default 2, got %d", got)
	}
	if got := IntOr("abc", 2); got != 2 {
		t.Errorf("Expected default 2, got %d", got)
	}
	if got := IntOr("-3", 2); got != 2 {
		t.Errorf("Expected default 2, got %d", got)
	}
	if got := IntOr("7", 2); got != 7 {
		t.Errorf("Expected 7, got %d", got)
	}
}

func TestTokenRoundTrip(t *testing.T) {
	secret := []byte("test-secret")
	token, err := IssueToken(secret, "user-1", time.Hour)
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}

	sub, err := ParseToken(secret, token)
	if err != nil {
		t.Fatalf("ParseToken failed: %v", err)
	}
	if sub != "user-1" {
		t.Errorf("Expected subject user-1, got %s", sub)
	}

	if _, err := ParseToken([]byte("other-secret"), token); err == nil {
		t.Error("Expected error for wrong secret")
	}

	expired, _ := IssueToken(secret, "user-1", -time.Minute)
	if _, err := ParseToken(secret, expired); err == nil {
		t.Error("Expected error for expired token")
	}
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("hunter22")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if !CheckPassword(hash, "hunter22") {
		t.Error("Expected password to match")
	}
	if CheckPassword(hash, "wrong") {
		t.Error("Expected mismatch")
	}
}

func TestRequestID(t *testing.T) {
	if got := RequestID(context.Background()); got != "-" {
		t.Errorf("Expected -, got %s", got)
	}
	ctx := WithRequestID(context.Background(), "abc")
	if got := RequestID(ctx); got != "abc" {
		t.Errorf("Expected abc, got %s", got)
	}
}
