package handler

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/venuebook/payment-service/internal/apperrors"
	"github.com/venuebook/payment-service/internal/metrics"
	"github.com/venuebook/payment-service/internal/processor"
	"github.com/venuebook/payment-service/internal/service"
)

// Processors retry deliveries; anything bigger than this is not a webhook.
const maxWebhookBody = 64 * 1024

// webhookSource is the processor-specific part of webhook handling: which
// header carries the signature, how to verify it, how to parse the body.
type webhookSource interface {
	VerifySignature(body []byte, signature string) bool
	ParseEvent(body []byte) (processor.PaymentEvent, error)
}

type WebhookHandler struct {
	reconciler service.ReconcileService
	paystack   webhookSource
	stripe     webhookSource
	metrics    *metrics.Metrics
}

func NewWebhookHandler(reconciler service.ReconcileService, paystack, stripe webhookSource, m *metrics.Metrics) *WebhookHandler {
	return &WebhookHandler{reconciler: reconciler, paystack: paystack, stripe: stripe, metrics: m}
}

func (h *WebhookHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/webhooks/paystack", h.HandlePaystack)
	e.POST("/webhooks/stripe", h.HandleStripe)
}

func (h *WebhookHandler) HandlePaystack(c echo.Context) error {
	return h.handle(c, "paystack", h.paystack, processor.PaystackSigHeader)
}

func (h *WebhookHandler) HandleStripe(c echo.Context) error {
	return h.handle(c, "stripe", h.stripe, processor.StripeSigHeader)
}

func (h *WebhookHandler) handle(c echo.Context, name string, src webhookSource, sigHeader string) error {
	h.count(func(m *metrics.Metrics) { m.WebhooksReceived.WithLabelValues(name).Inc() })

	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unreadable body")
	}

	// Signature is computed over the raw body; verify before any parsing.
	if !src.VerifySignature(body, c.Request().Header.Get(sigHeader)) {
		slog.Warn("webhook signature rejected", "processor", name)
		h.count(func(m *metrics.Metrics) { m.WebhooksRejected.WithLabelValues(name, "signature").Inc() })
		return apperrors.Authentication("invalid webhook signature")
	}

	ev, err := src.ParseEvent(body)
	if err != nil {
		h.count(func(m *metrics.Metrics) { m.WebhooksRejected.WithLabelValues(name, "malformed").Inc() })
		return err
	}

	if ev.Kind == processor.KindIgnored {
		return c.JSON(http.StatusOK, map[string]bool{"received": true})
	}

	if err := h.reconciler.Apply(c.Request().Context(), ev); err != nil {
		if apperrors.KindOf(err) == apperrors.KindInternal {
			// 5xx so the processor redelivers; Apply is idempotent.
			return err
		}
		h.count(func(m *metrics.Metrics) { m.WebhooksRejected.WithLabelValues(name, "unapplicable").Inc() })
		return err
	}

	h.count(func(m *metrics.Metrics) { m.EventsApplied.WithLabelValues(name, kindLabel(ev.Kind)).Inc() })
	return c.JSON(http.StatusOK, map[string]bool{"received": true})
}

func (h *WebhookHandler) count(f func(*metrics.Metrics)) {
	if h.metrics != nil {
		f(h.metrics)
	}
}

func kindLabel(k processor.EventKind) string {
	if k == processor.KindSuccess {
		return "success"
	}
	return "failure"
}
