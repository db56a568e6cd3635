package domain

import (
	"testing"
	"time"
)

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"test1@EXAMPLE.com", "test1@example.com"},
		{"Test2@Example.com", "Test2@example.com"},
		{"TEST3@EXAMPLE.COM", "TEST3@example.com"},
		{"test4@example.COM", "test4@example.com"},
		{"  padded@example.com  ", "padded@example.com"},
		{"no-at-sign", "no-at-sign"},
	}
	for _, tt := range tests {
		if got := NormalizeEmail(tt.in); got != tt.want {
			t.Errorf("NormalizeEmail(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSessionIsExpired(t *testing.T) {
	now := time.Now()
	s := &Session{ExpiresAt: now.Add(time.Hour)}
	if s.IsExpired(now) {
		t.Error("session should not be expired an hour before expiry")
	}
	if !s.IsExpired(now.Add(2 * time.Hour)) {
		t.Error("session should be expired after expiry")
	}
}

func TestEntityTouch(t *testing.T) {
	var e Entity
	e.InitTimestamps()
	if e.CreatedAt.IsZero() || e.UpdatedAt.IsZero() {
		t.Fatal("InitTimestamps should set both timestamps")
	}
	before := e.UpdatedAt
	time.Sleep(time.Millisecond)
	e.Touch()
	if !e.UpdatedAt.After(before) {
		t.Error("Touch should advance UpdatedAt")
	}
}
