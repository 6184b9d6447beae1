package processor

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/venuebook/payment-service/internal/apperrors"
)

const (
	paystackName       = "paystack"
	PaystackSigHeader  = "x-paystack-signature"
	defaultPaystackURL = "https://api.paystack.co"
)

// Paystack talks to the regional processor: webhook verification/parsing and
// transaction initiation.
type Paystack struct {
	secretKey     string
	webhookSecret string
	baseURL       string
	client        *http.Client
}

func NewPaystack(secretKey, webhookSecret string) *Paystack {
	return &Paystack{
		secretKey:     secretKey,
		webhookSecret: webhookSecret,
		baseURL:       defaultPaystackURL,
		client:        &http.Client{},
	}
}

// WithBaseURL points the client at a different API host. Used in tests.
func (p *Paystack) WithBaseURL(u string) *Paystack {
	p.baseURL = u
	return p
}

// VerifySignature checks the HMAC-SHA256 hex digest the processor computes
// over the raw request body.
func (p *Paystack) VerifySignature(body []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(p.webhookSecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

type paystackWebhook struct {
	Event string `json:"event"`
	Data  struct {
		Reference string `json:"reference"`
		Amount    int64  `json:"amount"`
		Currency  string `json:"currency"`
		Metadata  struct {
			BookingID string `json:"booking_id"`
			RequestID string `json:"request_id"`
		} `json:"metadata"`
		GatewayResponse string `json:"gateway_response"`
	} `json:"data"`
}

// ParseEvent maps a verified webhook body onto the internal event shape.
// Event types other than charge.success / charge.failed come back as
// KindIgnored so the handler can acknowledge them.
func (p *Paystack) ParseEvent(body []byte) (PaymentEvent, error) {
	var wh paystackWebhook
	if err := json.Unmarshal(body, &wh); err != nil {
		return PaymentEvent{}, apperrors.Validation("malformed paystack webhook body")
	}

	ev := PaymentEvent{
		Kind:        KindIgnored,
		Processor:   paystackName,
		RequestID:   wh.Data.Metadata.RequestID,
		BookingID:   wh.Data.Metadata.BookingID,
		ExternalRef: wh.Data.Reference,
		AmountMinor: wh.Data.Amount,
		Currency:    wh.Data.Currency,
	}

	switch wh.Event {
	case "charge.success":
		ev.Kind = KindSuccess
	case "charge.failed":
		ev.Kind = KindFailure
		ev.FailureReason = wh.Data.GatewayResponse
	}
	return ev, nil
}

type InitiateParams struct {
	Email       string
	AmountMinor int64
	Currency    string
	BookingID   string
	RequestID   string
	CallbackURL string
}

// Initiation is what a client needs to complete checkout: a redirect URL for
// the regional processor, or a client secret for the card network.
type Initiation struct {
	Reference        string
	AuthorizationURL string
	ClientSecret     string
}

type paystackInitResponse struct {
	Status bool `json:"status"`
	Data   struct {
		AuthorizationURL string `json:"authorization_url"`
		Reference        string `json:"reference"`
	} `json:"data"`
}

// InitializeTransaction creates a hosted checkout session, attaching the
// booking/request metadata the webhook needs to find its ledger row.
func (p *Paystack) InitializeTransaction(ctx context.Context, params InitiateParams) (*Initiation, error) {
	payload, err := json.Marshal(map[string]any{
		"email":        params.Email,
		"amount":       params.AmountMinor,
		"currency":     params.Currency,
		"callback_url": params.CallbackURL,
		"metadata": map[string]string{
			"booking_id": params.BookingID,
			"request_id": params.RequestID,
		},
	})
	if err != nil {
		return nil, apperrors.Internal("marshal paystack request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/transaction/initialize", bytes.NewReader(payload))
	if err != nil {
		return nil, apperrors.Internal("build paystack request", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, apperrors.ExternalService("paystack initialize failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.ExternalService(fmt.Sprintf("paystack initialize returned %d", resp.StatusCode), nil)
	}

	var out paystackInitResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil || !out.Status {
		return nil, apperrors.ExternalService("paystack initialize response unreadable", err)
	}

	return &Initiation{
		Reference:        out.Data.Reference,
		AuthorizationURL: out.Data.AuthorizationURL,
	}, nil
}
