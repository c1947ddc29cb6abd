// Package signing provides HMAC-SHA256 signatures for outbound webhook
// deliveries, so receivers can verify a payload really came from the form
// runtime and was not altered in transit.
//
// Wire format: X-Formlogic-Signature: v1=<hex hmac>, computed over
// "<unix timestamp>.<body>" with the timestamp carried separately in
// X-Formlogic-Timestamp. Binding the timestamp into the signed string
// lets receivers reject replayed deliveries.
package signing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// Header names for signed webhook deliveries.
const (
	SignatureHeader = "X-Formlogic-Signature"
	TimestampHeader = "X-Formlogic-Timestamp"
)

// Sign computes the v1 signature value for a payload at a timestamp.
func Sign(secret []byte, timestamp int64, body []byte) string {
	h := hmac.New(sha256.New, secret)
	h.Write([]byte(strconv.FormatInt(timestamp, 10)))
	h.Write([]byte("."))
	h.Write(body)
	return "v1=" + hex.EncodeToString(h.Sum(nil))
}

// Verify checks a signature header value against a payload using
// constant-time comparison. Constant-time comparison prevents timing
// attacks. Provided for receiver implementations and tests.
func Verify(secret []byte, timestamp int64, body []byte, signature string) error {
	if !strings.HasPrefix(signature, "v1=") {
		return fmt.Errorf("unsupported signature version")
	}
	expected := Sign(secret, timestamp, body)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return fmt.Errorf("signature mismatch")
	}
	return nil
}
