package payment

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ProviderNoop names the offline provider used in development.
const ProviderNoop = "noop"

// NoopClient issues local order ids and accepts any payment carrying a valid signature.
type NoopClient struct {
	signer *Signer
}

// NewNoopClient builds an offline client.
func NewNoopClient(signingSecret string) *NoopClient {
	return &NoopClient{signer: NewSigner(signingSecret)}
}

// Provider implements Client.
func (c *NoopClient) Provider() string { return ProviderNoop }

// CreateOrder implements Client.
func (c *NoopClient) CreateOrder(_ context.Context, req OrderRequest) (*Order, error) {
	if req.AmountMinor <= 0 {
		return nil, fmt.Errorf("order amount must be positive")
	}
	return &Order{
		ID:          "order_" + strings.ReplaceAll(uuid.NewString(), "-", ""),
		Provider:    ProviderNoop,
		AmountMinor: req.AmountMinor,
		Currency:    strings.ToLower(req.Currency),
	}, nil
}

// Verify implements Client.
func (c *NoopClient) Verify(_ context.Context, paymentID, orderID, signature string) (bool, error) {
	return c.signer.Valid(orderID, paymentID, signature), nil
}
