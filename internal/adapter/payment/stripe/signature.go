package stripe

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"panospace-ledger/pkg/apperror"
)

// SignatureVerifier implements ports.WebhookVerifier for the
// Stripe-Signature header scheme: `t=<unix>,v1=<hex hmac>`, where the
// signed payload is "<t>.<raw body>".
type SignatureVerifier struct {
	secret    string
	tolerance time.Duration
	now       func() time.Time
}

// NewSignatureVerifier creates a verifier for the given webhook secret.
func NewSignatureVerifier(secret string, tolerance time.Duration) *SignatureVerifier {
	return &SignatureVerifier{
		secret:    secret,
		tolerance: tolerance,
		now:       time.Now,
	}
}

// Verify checks the signature header against the raw payload. It must
// be called before any payload field is read. Uses constant-time
// comparison to prevent timing attacks.
func (v *SignatureVerifier) Verify(payload []byte, signatureHeader string) error {
	timestamp, signatures, err := parseSignatureHeader(signatureHeader)
	if err != nil {
		return apperror.ErrSignatureInvalid()
	}

	age := v.now().Sub(time.Unix(timestamp, 0))
	if age > v.tolerance || age < -v.tolerance {
		return apperror.ErrSignatureExpired()
	}

	expected := computeSignature(v.secret, timestamp, payload)
	for _, sig := range signatures {
		if hmac.Equal([]byte(expected), []byte(sig)) {
			return nil
		}
	}
	return apperror.ErrSignatureInvalid()
}

// Sign produces a valid header for a payload. Used by tests and the
// local webhook replay tool.
func Sign(secret string, timestamp time.Time, payload []byte) string {
	t := timestamp.Unix()
	return fmt.Sprintf("t=%d,v1=%s", t, computeSignature(secret, t, payload))
}

func computeSignature(secret string, timestamp int64, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", timestamp)
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// parseSignatureHeader splits `t=...,v1=...,v1=...` into the timestamp
// and candidate signatures. Unknown schemes are ignored, matching the
// processor's documented header format.
func parseSignatureHeader(header string) (int64, []string, error) {
	var (
		timestamp  int64
		signatures []string
		sawT       bool
	)
	for _, part := range strings.Split(header, ",") {
		k, val, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			return 0, nil, fmt.Errorf("malformed signature element %q", part)
		}
		switch k {
		case "t":
			ts, err := strconv.ParseInt(val, 10, 64)
			if err != nil {
				return 0, nil, fmt.Errorf("malformed timestamp: %w", err)
			}
			timestamp = ts
			sawT = true
		case "v1":
			signatures = append(signatures, val)
		}
	}
	if !sawT || len(signatures) == 0 {
		return 0, nil, fmt.Errorf("signature header missing t or v1")
	}
	return timestamp, signatures, nil
}
