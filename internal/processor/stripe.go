package processor

import (
	"context"
	"encoding/json"
	"strings"

	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/venuebook/payment-service/internal/apperrors"
)

const (
	stripeName      = "stripe"
	StripeSigHeader = "stripe-signature"
)

// Stripe talks to the card-network processor through the official SDK:
// webhook verification/parsing and payment-intent creation.
type Stripe struct {
	secretKey     string
	webhookSecret string
	api           *client.API
}

func NewStripe(secretKey, webhookSecret string) *Stripe {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &Stripe{secretKey: secretKey, webhookSecret: webhookSecret, api: api}
}

// WithBaseURL points the client at a different API host. Used in tests.
func (s *Stripe) WithBaseURL(u string) *Stripe {
	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL: stripe.String(u),
	})
	s.api.Init(s.secretKey, &stripe.Backends{API: backend})
	return s
}

// VerifySignature validates the "t=<unix>,v1=<hex>" header with the SDK,
// which also bounds the timestamp age so a captured delivery cannot be
// replayed after the tolerance window.
func (s *Stripe) VerifySignature(body []byte, header string) bool {
	return webhook.ValidatePayload(body, header, s.webhookSecret) == nil
}

type stripeWebhook struct {
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID       string `json:"id"`
			Amount   int64  `json:"amount"`
			Currency string `json:"currency"`
			Metadata struct {
				BookingID string `json:"booking_id"`
				RequestID string `json:"request_id"`
			} `json:"metadata"`
			LastPaymentError struct {
				Message string `json:"message"`
			} `json:"last_payment_error"`
		} `json:"object"`
	} `json:"data"`
}

func (s *Stripe) ParseEvent(body []byte) (PaymentEvent, error) {
	var wh stripeWebhook
	if err := json.Unmarshal(body, &wh); err != nil {
		return PaymentEvent{}, apperrors.Validation("malformed stripe webhook body")
	}

	obj := wh.Data.Object
	ev := PaymentEvent{
		Kind:        KindIgnored,
		Processor:   stripeName,
		RequestID:   obj.Metadata.RequestID,
		BookingID:   obj.Metadata.BookingID,
		ExternalRef: obj.ID,
		AmountMinor: obj.Amount,
		Currency:    strings.ToUpper(obj.Currency),
	}

	switch wh.Type {
	case "payment_intent.succeeded":
		ev.Kind = KindSuccess
	case "payment_intent.payment_failed":
		ev.Kind = KindFailure
		ev.FailureReason = obj.LastPaymentError.Message
	}
	return ev, nil
}

// CreatePaymentIntent opens a card-network payment with the ledger metadata
// attached.
func (s *Stripe) CreatePaymentIntent(ctx context.Context, params InitiateParams) (*Initiation, error) {
	piParams := &stripe.PaymentIntentParams{
		Amount:       stripe.Int64(params.AmountMinor),
		Currency:     stripe.String(strings.ToLower(params.Currency)),
		ReceiptEmail: stripe.String(params.Email),
	}
	piParams.Context = ctx
	piParams.AddMetadata("booking_id", params.BookingID)
	piParams.AddMetadata("request_id", params.RequestID)

	pi, err := s.api.PaymentIntents.New(piParams)
	if err != nil {
		return nil, apperrors.ExternalService("stripe payment intent failed", err)
	}

	return &Initiation{
		Reference:    pi.ID,
		ClientSecret: pi.ClientSecret,
	}, nil
}
