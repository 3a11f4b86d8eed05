package payment

import (
	"context"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/paymentintent"
)

// ProviderStripe names the Stripe provider.
const ProviderStripe = "stripe"

// intentAPI is the part of the Stripe PaymentIntents client used here.
type intentAPI interface {
	New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
	Get(id string, params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}

// StripeClient collects payments with Stripe PaymentIntents. The order id is the intent id.
type StripeClient struct {
	intents intentAPI
	signer  *Signer
}

// NewStripeClient builds a client for the given secret key and signing secret.
func NewStripeClient(secretKey, signingSecret string) *StripeClient {
	api := &paymentintent.Client{B: stripe.GetBackend(stripe.APIBackend), Key: strings.TrimSpace(secretKey)}
	return &StripeClient{intents: api, signer: NewSigner(signingSecret)}
}

// Provider implements Client.
func (c *StripeClient) Provider() string { return ProviderStripe }

// CreateOrder creates a PaymentIntent for the amount and returns its client secret.
func (c *StripeClient) CreateOrder(ctx context.Context, req OrderRequest) (*Order, error) {
	if req.AmountMinor <= 0 {
		return nil, fmt.Errorf("order amount must be positive")
	}
	currency := strings.ToLower(strings.TrimSpace(req.Currency))
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(req.AmountMinor),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	for key, value := range req.Metadata {
		params.AddMetadata(key, value)
	}
	if req.IdempotencyKey != "" {
		params.IdempotencyKey = stripe.String(req.IdempotencyKey)
	}

	intent, err := c.intents.New(params)
	if err != nil {
		return nil, fmt.Errorf("create payment intent: %w", err)
	}
	return &Order{
		ID:           intent.ID,
		Provider:     ProviderStripe,
		AmountMinor:  intent.Amount,
		Currency:     string(intent.Currency),
		ClientSecret: intent.ClientSecret,
	}, nil
}

// Verify checks the signature, then confirms with Stripe that the intent succeeded and that
// paymentID is the intent itself or its latest charge.
func (c *StripeClient) Verify(ctx context.Context, paymentID, orderID, signature string) (bool, error) {
	if !c.signer.Valid(orderID, paymentID, signature) {
		return false, nil
	}
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	intent, err := c.intents.Get(orderID, params)
	if err != nil {
		return false, fmt.Errorf("fetch payment intent %s: %w", orderID, err)
	}
	if intent.Status != stripe.PaymentIntentStatusSucceeded {
		return false, nil
	}
	if paymentID == intent.ID {
		return true, nil
	}
	return intent.LatestCharge != nil && intent.LatestCharge.ID == paymentID, nil
}
