package google

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// statePayload is the value round-tripped through the OAuth redirect. It is
// the only binding between the interactive flow and the originating user.
type statePayload struct {
	UserID string `json:"user_id"`
	Nonce  string `json:"nonce"`
}

// EncodeState wraps the user id in a signed opaque token:
// base64url(json payload) + "." + hex(HMAC-SHA256(payload)).
// The signature keeps the callback binding unforgeable.
func EncodeState(secret, userID string) (string, error) {
	nonce := make([]byte, 8)
	rand.Read(nonce)

	raw, err := json.Marshal(statePayload{UserID: userID, Nonce: hex.EncodeToString(nonce)})
	if err != nil {
		return "", err
	}
	payload := base64.RawURLEncoding.EncodeToString(raw)
	return payload + "." + signState(secret, payload), nil
}

// DecodeState verifies the signature and recovers the user id.
// Any failure means the callback cannot be associated with a user.
func DecodeState(secret, state string) (string, error) {
	payload, sig, ok := strings.Cut(state, ".")
	if !ok {
		return "", fmt.Errorf("malformed state token")
	}
	if !hmac.Equal([]byte(sig), []byte(signState(secret, payload))) {
		return "", fmt.Errorf("state signature mismatch")
	}

	raw, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return "", fmt.Errorf("decoding state payload: %w", err)
	}
	var p statePayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return "", fmt.Errorf("parsing state payload: %w", err)
	}
	if p.UserID == "" {
		return "", fmt.Errorf("state carries no user id")
	}
	return p.UserID, nil
}

func signState(secret, payload string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}
