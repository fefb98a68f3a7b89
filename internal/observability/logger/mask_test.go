package logger

import (
	"net/http"
	"testing"
)

func TestMaskAuthorization(t *testing.T) {
	got := MaskAuthorization("Bearer abcdef1234")
	want := "Bearer ****1234"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestMaskSignature(t *testing.T) {
	got := MaskSignature("t=1700000000,v1=deadbeefcafe,v0=0123456789")
	want := "t=1700000000,v1=****cafe,v0=****6789"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestMaskEmail(t *testing.T) {
	if got := MaskEmail("buyer@example.com"); got != "b***@example.com" {
		t.Fatalf("unexpected masked email %q", got)
	}
	if got := MaskEmail("abc"); got != "****" {
		t.Fatalf("unexpected masked value %q", got)
	}
}

func TestMaskHeaders(t *testing.T) {
	headers := http.Header{}
	headers.Set("Authorization", "Bearer sk_live_abcdef")
	headers.Set("X-Api-Key", "gelato-key-9876")
	headers.Set("Content-Type", "application/json")

	masked := MaskHeaders(headers)
	if masked["Authorization"] != "Bearer ****cdef" {
		t.Fatalf("expected masked authorization, got %q", masked["Authorization"])
	}
	if masked["X-Api-Key"] != "****9876" {
		t.Fatalf("expected masked api key, got %q", masked["X-Api-Key"])
	}
	if masked["Content-Type"] != "application/json" {
		t.Fatalf("expected content type untouched, got %q", masked["Content-Type"])
	}
}
