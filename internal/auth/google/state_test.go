package google

import (
	"strings"
	"testing"
)

func TestStateRoundTrip(t *testing.T) {
	state, err := EncodeState("secret", "u1")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	userID, err := DecodeState("secret", state)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if userID != "u1" {
		t.Fatalf("expected u1, got %s", userID)
	}
}

func TestDecodeState_Invalid(t *testing.T) {
	valid, err := EncodeState("secret", "u1")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	payload, sig, _ := strings.Cut(valid, ".")

	tests := []struct {
		name  string
		state string
	}{
		{"empty", ""},
		{"no separator", "justpayload"},
		{"tampered payload", payload + "x." + sig},
		{"tampered signature", payload + "." + strings.Repeat("0", len(sig))},
		{"wrong secret", mustEncode(t, "other-secret", "u1")},
		{"raw json", `{"user_id":"u1"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeState("secret", tt.state); err == nil {
				t.Fatalf("expected decode failure for %q", tt.state)
			}
		})
	}
}

func TestEncodeState_DistinctNonces(t *testing.T) {
	a, _ := EncodeState("secret", "u1")
	b, _ := EncodeState("secret", "u1")
	if a == b {
		t.Fatalf("state tokens must not be predictable")
	}
}

func mustEncode(t *testing.T, secret, userID string) string {
	t.Helper()
	s, err := EncodeState(secret, userID)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	return s
}
