package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"

	"github.com/healthdash/user-sync-service/internal/apperr"
)

// SignatureHeader carries the hex HMAC-SHA256 digest of the request body.
// Header lookup is case-insensitive per net/http canonicalization.
const SignatureHeader = "x-clerk-signature"

// Verifier checks that a payload was signed with the shared webhook secret.
// A nil Verifier (no secret configured) skips verification entirely.
type Verifier struct {
	secret []byte
}

// NewVerifier returns a Verifier for the shared secret, or nil when the
// secret is empty so callers can treat the endpoint as open.
func NewVerifier(secret string) *Verifier {
	if secret == "" {
		return nil
	}
	return &Verifier{secret: []byte(secret)}
}

// Verify computes HMAC-SHA256 over exactly the bytes received and compares it
// in constant time against the supplied hex signature. A missing signature is
// a 400, a malformed or mismatched one a 401.
func (v *Verifier) Verify(body []byte, signature string) error {
	if v == nil {
		return nil
	}
	if signature == "" {
		return apperr.Authentication(http.StatusBadRequest, "missing signature header")
	}

	supplied, err := hex.DecodeString(signature)
	if err != nil {
		return apperr.Authentication(http.StatusUnauthorized, "invalid signature")
	}

	mac := hmac.New(sha256.New, v.secret)
	mac.Write(body)
	expected := mac.Sum(nil)

	if len(supplied) != len(expected) || !hmac.Equal(supplied, expected) {
		return apperr.Authentication(http.StatusUnauthorized, "invalid signature")
	}
	return nil
}

// Sign returns the lowercase hex HMAC-SHA256 digest of body under the secret.
// Exposed for tests and for local tooling that replays webhook deliveries.
func (v *Verifier) Sign(body []byte) string {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
