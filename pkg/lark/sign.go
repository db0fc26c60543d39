package lark

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strconv"
)

// Sign computes the webhook request signature for a bot configured with a
// signing secret. Lark keys the HMAC with "<timestamp>\n<secret>" and signs
// an empty message; the digest is base64 encoded.
func Sign(secret string, timestamp int64) string {
	key := strconv.FormatInt(timestamp, 10) + "\n" + secret
	mac := hmac.New(sha256.New, []byte(key))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
