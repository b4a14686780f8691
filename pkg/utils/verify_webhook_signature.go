package utils

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"os"
)

// VerifyWebhookSignature checks the payment provider's HMAC-SHA512 signature
// over the raw request body.
func VerifyWebhookSignature(signature string, body []byte) bool {
	secret := os.Getenv("PROVIDER_SECRET_KEY")
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(signature), []byte(expected))
}
