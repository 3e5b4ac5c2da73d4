package telex

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// SignatureHeader is the request header the platform uses to carry the
// webhook signature.
const SignatureHeader = "X-Telex-Signature"

// VerifySignature reports whether signature is the hex-encoded HMAC-SHA256
// digest of body under secret. Comparison is constant time.
func VerifySignature(body []byte, secret, signature string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// Sign returns the hex-encoded HMAC-SHA256 digest of body under secret.
// Exposed for tests and for callers that need to produce signed payloads.
func Sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
