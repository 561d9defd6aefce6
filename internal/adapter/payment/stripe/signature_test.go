package stripe

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "whsec_test_secret"

func newTestVerifier(now time.Time) *SignatureVerifier {
	v := NewSignatureVerifier(testSecret, 5*time.Minute)
	v.now = func() time.Time { return now }
	return v
}

func TestSignatureVerifier_Valid(t *testing.T) {
	now := time.Unix(1700000000, 0)
	payload := []byte(`{"type":"checkout.session.completed"}`)
	header := Sign(testSecret, now, payload)

	v := newTestVerifier(now)
	assert.NoError(t, v.Verify(payload, header))
}

func TestSignatureVerifier_WithinTolerance(t *testing.T) {
	now := time.Unix(1700000000, 0)
	payload := []byte(`{}`)
	header := Sign(testSecret, now.Add(-4*time.Minute), payload)

	v := newTestVerifier(now)
	assert.NoError(t, v.Verify(payload, header))
}

func TestSignatureVerifier_Expired(t *testing.T) {
	now := time.Unix(1700000000, 0)
	payload := []byte(`{}`)
	header := Sign(testSecret, now.Add(-6*time.Minute), payload)

	v := newTestVerifier(now)
	err := v.Verify(payload, header)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PAY_002")
}

func TestSignatureVerifier_FutureTimestamp(t *testing.T) {
	now := time.Unix(1700000000, 0)
	payload := []byte(`{}`)
	header := Sign(testSecret, now.Add(10*time.Minute), payload)

	v := newTestVerifier(now)
	assert.Error(t, v.Verify(payload, header))
}

func TestSignatureVerifier_WrongSecret(t *testing.T) {
	now := time.Unix(1700000000, 0)
	payload := []byte(`{}`)
	header := Sign("whsec_other", now, payload)

	v := newTestVerifier(now)
	err := v.Verify(payload, header)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PAY_001")
}

func TestSignatureVerifier_TamperedPayload(t *testing.T) {
	now := time.Unix(1700000000, 0)
	header := Sign(testSecret, now, []byte(`{"amount":100}`))

	v := newTestVerifier(now)
	assert.Error(t, v.Verify([]byte(`{"amount":10000}`), header))
}

func TestSignatureVerifier_MultipleV1Signatures(t *testing.T) {
	now := time.Unix(1700000000, 0)
	payload := []byte(`{}`)

	// Secret rotation: a stale v1 ahead of the valid one still verifies.
	validSig := computeSignature(testSecret, now.Unix(), payload)
	header := fmt.Sprintf("t=%d,v1=deadbeef,v1=%s", now.Unix(), validSig)

	v := newTestVerifier(now)
	assert.NoError(t, v.Verify(payload, header))
}

func TestSignatureVerifier_MalformedHeaders(t *testing.T) {
	now := time.Unix(1700000000, 0)
	v := newTestVerifier(now)
	payload := []byte(`{}`)

	headers := []string{
		"",
		"garbage",
		"t=notanumber,v1=abc",
		"t=1700000000",
		"v1=abcdef",
		"t=,v1=",
	}
	for _, h := range headers {
		assert.Error(t, v.Verify(payload, h), "header %q", h)
	}
}
