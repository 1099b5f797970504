package nonce

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestIssueVerify(t *testing.T) {
	t.Parallel()

	m, err := New([]byte("secret"))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	token, err := m.Issue("save_event", "42")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if err := m.Verify(token, "save_event", "42"); err != nil {
		t.Fatalf("verify: %v", err)
	}

	other, _ := m.Issue("save_event", "42")
	if other == token {
		t.Fatalf("tokens should carry a unique id")
	}
}

func TestVerifyRejects(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 3, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	m, _ := New([]byte("secret"), WithTTL(time.Hour), WithClock(clock))
	token, err := m.Issue("save_event", "42")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	forged, _ := m.Issue("save_event", "43")
	parts := strings.Split(token, ".")
	tampered := parts[0] + "." + strings.Split(forged, ".")[1] + "." + parts[2]

	foreign, _ := New([]byte("other"), WithClock(clock))
	late, _ := New([]byte("secret"), WithClock(func() time.Time { return now.Add(2 * time.Hour) }))

	cases := []struct {
		name    string
		manager *Manager
		token   string
		action  string
		subject string
	}{
		{name: "empty", manager: m, token: " ", action: "save_event", subject: "42"},
		{name: "garbage", manager: m, token: "not.a.token", action: "save_event", subject: "42"},
		{name: "tampered", manager: m, token: tampered, action: "save_event", subject: "43"},
		{name: "wrong action", manager: m, token: token, action: "save_other", subject: "42"},
		{name: "wrong record", manager: m, token: token, action: "save_event", subject: "43"},
		{name: "wrong secret", manager: foreign, token: token, action: "save_event", subject: "42"},
		{name: "expired", manager: late, token: token, action: "save_event", subject: "42"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.manager.Verify(tc.token, tc.action, tc.subject)
			if !errors.Is(err, ErrInvalid) {
				t.Fatalf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestNewRequiresSecret(t *testing.T) {
	t.Parallel()

	if _, err := New(nil); err == nil {
		t.Fatalf("expected error for empty secret")
	}
}
