package core

import (
	"strings"
	"testing"
)

func TestNewProtocol(t *testing.T) {
	p := NewProtocol("RH", 6)
	if !strings.HasPrefix(p, "RH") {
		t.Fatalf("expected RH prefix, got %s", p)
	}
	if len(p) != 8 {
		t.Fatalf("expected prefix plus 6 digits, got %s", p)
	}
	for _, r := range p[2:] {
		if r < '0' || r > '9' {
			t.Fatalf("expected digits after prefix, got %s", p)
		}
	}
}

func TestNewMessage(t *testing.T) {
	m := NewMessage("5511999999999", "oi")
	if m.ID == "" {
		t.Error("expected generated id")
	}
	if m.Retries != 0 {
		t.Error("expected zero retries on fresh message")
	}
	if m.EnqueuedAt.IsZero() {
		t.Error("expected enqueue timestamp")
	}
}
