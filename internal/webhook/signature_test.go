package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/healthdash/user-sync-service/internal/apperr"
)

func signWith(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	var e *apperr.Error
	if !errors.As(err, &e) {
		t.Fatalf("expected apperr.Error, got %v", err)
	}
	return e.Status
}

func TestVerifyAcceptsCorrectSignature(t *testing.T) {
	body := []byte(`{"user":{"id":"u1"}}`)
	v := NewVerifier("topsecret")
	if err := v.Verify(body, signWith("topsecret", body)); err != nil {
		t.Fatalf("expected valid signature to pass, got %v", err)
	}
}

func TestVerifyMissingSignatureIsBadRequest(t *testing.T) {
	v := NewVerifier("topsecret")
	err := v.Verify([]byte("{}"), "")
	if err == nil {
		t.Fatal("expected error for missing signature")
	}
	if got := statusOf(t, err); got != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", got)
	}
}

func TestVerifyRejectsWrongSignature(t *testing.T) {
	body := []byte(`{"user":{"id":"u1"}}`)
	v := NewVerifier("topsecret")

	cases := map[string]string{
		"wrong secret":     signWith("othersecret", body),
		"wrong body":       signWith("topsecret", []byte(`{"user":{"id":"u2"}}`)),
		"not hex":          "zzzz",
		"truncated digest": signWith("topsecret", body)[:16],
		"padded digest":    signWith("topsecret", body) + "00",
	}
	for name, sig := range cases {
		err := v.Verify(body, sig)
		if err == nil {
			t.Fatalf("%s: expected rejection", name)
		}
		if got := statusOf(t, err); got != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", name, got)
		}
	}
}

func TestVerifySensitiveToExactBytes(t *testing.T) {
	body := []byte(`{"user":{"id":"u1"}}`)
	reserialized := []byte(`{ "user": { "id": "u1" } }`)
	v := NewVerifier("topsecret")
	if err := v.Verify(reserialized, signWith("topsecret", body)); err == nil {
		t.Fatal("signature over different serialization must not verify")
	}
}

func TestNilVerifierSkipsCheck(t *testing.T) {
	v := NewVerifier("")
	if v != nil {
		t.Fatal("empty secret should disable verification")
	}
	if err := v.Verify([]byte("anything"), ""); err != nil {
		t.Fatalf("nil verifier must pass everything, got %v", err)
	}
}

func TestSignMatchesVerify(t *testing.T) {
	body := []byte(`{"user":{"id":"u1","email":"a@example.com"}}`)
	v := NewVerifier("topsecret")
	sig := v.Sign(body)
	if sig != strings.ToLower(sig) {
		t.Fatal("signature must be lowercase hex")
	}
	if err := v.Verify(body, sig); err != nil {
		t.Fatalf("self-signed payload must verify, got %v", err)
	}
}
