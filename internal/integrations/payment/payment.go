// Package payment creates payment orders and verifies completed payments.
package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Order is a payment the client must complete before a booking can be confirmed.
type Order struct {
	ID           string
	Provider     string
	AmountMinor  int64
	Currency     string
	ClientSecret string
}

// OrderRequest describes the amount to collect. Metadata is attached to the provider's record.
type OrderRequest struct {
	AmountMinor    int64
	Currency       string
	Metadata       map[string]string
	IdempotencyKey string
}

// Client is implemented by payment providers.
type Client interface {
	CreateOrder(ctx context.Context, req OrderRequest) (*Order, error)
	Verify(ctx context.Context, paymentID, orderID, signature string) (bool, error)
	Provider() string
}

// Signer computes and checks HMAC-SHA256 signatures over "orderID|paymentID", hex encoded.
type Signer struct {
	secret []byte
}

// NewSigner builds a signer keyed with secret.
func NewSigner(secret string) *Signer {
	return &Signer{secret: []byte(secret)}
}

// Sign returns the hex signature for a payment.
func (s *Signer) Sign(orderID, paymentID string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// Valid reports whether signature matches the payment. An empty secret never validates.
func (s *Signer) Valid(orderID, paymentID, signature string) bool {
	if s == nil || len(s.secret) == 0 || orderID == "" || paymentID == "" {
		return false
	}
	expected, err := hex.DecodeString(s.Sign(orderID, paymentID))
	if err != nil {
		return false
	}
	provided, err := hex.DecodeString(strings.TrimSpace(signature))
	if err != nil {
		return false
	}
	return hmac.Equal(expected, provided)
}
