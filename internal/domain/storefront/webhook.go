package storefront

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// Topic identifies the kind of webhook event delivered by the platform.
type Topic string

const (
	TopicOrderCreate    Topic = "orders/create"
	TopicOrderUpdate    Topic = "orders/updated"
	TopicOrderCancel    Topic = "orders/cancelled"
	TopicCustomerCreate Topic = "customers/create"
	TopicCustomerUpdate Topic = "customers/update"
	TopicRefundCreate   Topic = "refunds/create"
)

// IsValid checks if the topic is one the bridge processes.
func (t Topic) IsValid() bool {
	switch t {
	case TopicOrderCreate, TopicOrderUpdate, TopicOrderCancel,
		TopicCustomerCreate, TopicCustomerUpdate, TopicRefundCreate:
		return true
	}
	return false
}

// String returns the string representation of the topic.
func (t Topic) String() string {
	return string(t)
}

// VerifySignature checks a webhook delivery's authenticity. The platform
// signs the raw request body with HMAC-SHA256 over the shared secret and
// sends the base64 digest in a header; the comparison is constant time.
// Pure function: no clock, no state.
func VerifySignature(payload []byte, headerDigest, secret string) bool {
	if headerDigest == "" || secret == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(headerDigest))
}
