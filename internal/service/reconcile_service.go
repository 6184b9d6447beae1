package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/venuebook/payment-service/internal/apperrors"
	"github.com/venuebook/payment-service/internal/metrics"
	"github.com/venuebook/payment-service/internal/models"
	"github.com/venuebook/payment-service/internal/processor"
	"github.com/venuebook/payment-service/internal/repository"
	"gorm.io/gorm"
)

// Routing keys on the payments exchange.
const (
	RoutingPaymentReceived  = "payment.received"
	RoutingBookingConfirmed = "booking.confirmed"
)

// EventPublisher is the outbound side of the payments exchange.
// *rabbitmq.Publisher satisfies it.
type EventPublisher interface {
	Publish(routingKey string, payload any) error
}

type PaymentReceivedEvent struct {
	BookingID      uint      `json:"booking_id"`
	RequestID      uuid.UUID `json:"request_id"`
	RequesterEmail string    `json:"requester_email"`
	RecipientEmail string    `json:"recipient_email"`
	AmountMinor    int64     `json:"amount_minor"`
	Currency       string    `json:"currency"`
	PaidAt         time.Time `json:"paid_at"`
}

type BookingConfirmedEvent struct {
	BookingID     uint      `json:"booking_id"`
	VenueID       uint      `json:"venue_id"`
	CustomerEmail string    `json:"customer_email"`
	StartsAt      time.Time `json:"starts_at"`
	QRToken       string    `json:"qr_token"`
	ConfirmedAt   time.Time `json:"confirmed_at"`
}

// ReconcileService is the sole writer of split-request and booking status
// transitions. Webhook handlers feed it normalized processor events.
type ReconcileService interface {
	Apply(ctx context.Context, ev processor.PaymentEvent) error
	// ExpireStale moves pending requests older than maxAge to expired.
	ExpireStale(ctx context.Context, maxAge time.Duration) (int64, error)
}

type reconcileService struct {
	bookingRepo      repository.BookingRepository
	splitRepo        repository.SplitRequestRepository
	notificationRepo repository.NotificationRepository
	publisher        EventPublisher
	metrics          *metrics.Metrics
	now              func() time.Time
}

func NewReconcileService(
	bookingRepo repository.BookingRepository,
	splitRepo repository.SplitRequestRepository,
	notificationRepo repository.NotificationRepository,
	publisher EventPublisher,
	m *metrics.Metrics,
) ReconcileService {
	return &reconcileService{
		bookingRepo:      bookingRepo,
		splitRepo:        splitRepo,
		notificationRepo: notificationRepo,
		publisher:        publisher,
		metrics:          m,
		now:              time.Now,
	}
}

func (s *reconcileService) Apply(ctx context.Context, ev processor.PaymentEvent) error {
	if ev.Kind == processor.KindIgnored {
		return nil
	}

	// Fail closed: without metadata there is no ledger row to update.
	if !ev.HasMetadata() {
		slog.Error("webhook event missing ledger metadata, dropping",
			"processor", ev.Processor, "external_ref", ev.ExternalRef)
		return apperrors.Validation("event metadata missing booking_id/request_id")
	}

	requestID, err := uuid.Parse(ev.RequestID)
	if err != nil {
		return apperrors.Validation("event request_id is not a valid id")
	}
	bookingID64, err := strconv.ParseUint(ev.BookingID, 10, 64)
	if err != nil {
		return apperrors.Validation("event booking_id is not a valid id")
	}
	bookingID := uint(bookingID64)

	switch ev.Kind {
	case processor.KindSuccess:
		return s.applySuccess(ctx, bookingID, requestID, ev)
	case processor.KindFailure:
		return s.applyFailure(ctx, requestID, ev)
	}
	return nil
}

func (s *reconcileService) applySuccess(ctx context.Context, bookingID uint, requestID uuid.UUID, ev processor.PaymentEvent) error {
	request, err := s.splitRepo.FindByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("split request %s not found", requestID)
		}
		return apperrors.Internal("load split request", err)
	}
	if request.BookingID != bookingID {
		return apperrors.Validation("request %s does not belong to booking %d", requestID, bookingID)
	}

	var (
		applied   bool
		confirmed bool
		booking   *models.Booking
		paidAt    = s.now().UTC()
	)

	err = s.bookingRepo.InTx(ctx, func(tx *gorm.DB) error {
		// Lock the booking row so two final webhooks cannot both count an
		// incomplete ledger.
		booking, err = s.bookingRepo.FindByIDForUpdate(ctx, tx, bookingID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("booking %d not found", bookingID)
			}
			return apperrors.Internal("lock booking", err)
		}

		applied, err = s.splitRepo.MarkPaidIfPending(ctx, tx, requestID, ev.Processor, ev.ExternalRef, paidAt)
		if err != nil {
			return apperrors.Internal("mark request paid", err)
		}
		if !applied {
			// Duplicate delivery or lost race against another terminal
			// transition. Either way the row is settled; nothing to redo.
			slog.Info("split request already terminal, skipping",
				"request_id", requestID, "external_ref", ev.ExternalRef)
			return nil
		}

		notification := &models.PaymentNotification{
			ID:             uuid.New(),
			BookingID:      bookingID,
			RequestID:      requestID,
			RecipientEmail: request.RequesterEmail,
			Message: fmt.Sprintf("%s paid their share of %s for booking #%d",
				request.RecipientEmail, formatAmount(request.AmountMinor, request.Currency), bookingID),
		}
		if err := s.notificationRepo.Create(ctx, tx, notification); err != nil {
			return apperrors.Internal("create payment notification", err)
		}

		remaining, err := s.splitRepo.CountNotPaid(ctx, tx, bookingID)
		if err != nil {
			return apperrors.Internal("count unpaid requests", err)
		}
		if remaining > 0 {
			return s.bookingRepo.UpdatePaymentStatus(ctx, tx, bookingID, models.PaymentPartiallyPaid)
		}

		confirmed, err = s.bookingRepo.ConfirmIfPending(ctx, tx, bookingID)
		if err != nil {
			return apperrors.Internal("confirm booking", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if applied {
		s.publish(RoutingPaymentReceived, PaymentReceivedEvent{
			BookingID:      bookingID,
			RequestID:      requestID,
			RequesterEmail: request.RequesterEmail,
			RecipientEmail: request.RecipientEmail,
			AmountMinor:    request.AmountMinor,
			Currency:       request.Currency,
			PaidAt:         paidAt,
		})
	}
	if confirmed {
		slog.Info("booking confirmed, all split requests paid", "booking_id", bookingID)
		if s.metrics != nil {
			s.metrics.BookingsConfirmed.Inc()
		}
		s.publish(RoutingBookingConfirmed, BookingConfirmedEvent{
			BookingID:     bookingID,
			VenueID:       booking.VenueID,
			CustomerEmail: booking.CustomerEmail,
			StartsAt:      booking.StartsAt,
			QRToken:       fmt.Sprintf("VBK-%d-%s", bookingID, uuid.New()),
			ConfirmedAt:   paidAt,
		})
	}
	return nil
}

// applyFailure marks the request failed and stops. A failed share never
// cascades to the booking; it stays pending until a new payment attempt.
func (s *reconcileService) applyFailure(ctx context.Context, requestID uuid.UUID, ev processor.PaymentEvent) error {
	db := s.bookingRepo.GetDB()
	applied, err := s.splitRepo.MarkStatusIfPending(ctx, db, requestID, models.SplitFailed)
	if err != nil {
		return apperrors.Internal("mark request failed", err)
	}
	if applied {
		slog.Warn("split payment failed",
			"request_id", requestID, "processor", ev.Processor, "reason", ev.FailureReason)
	}
	return nil
}

func (s *reconcileService) ExpireStale(ctx context.Context, maxAge time.Duration) (int64, error) {
	n, err := s.splitRepo.ExpireOlderThan(ctx, s.now().Add(-maxAge))
	if err != nil {
		return 0, apperrors.Internal("expire stale requests", err)
	}
	if n > 0 {
		slog.Info("expired stale split requests", "count", n)
	}
	return n, nil
}

func (s *reconcileService) publish(key string, payload any) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(key, payload); err != nil {
		slog.Error("publish failed", "routing_key", key, "error", err)
	}
}
