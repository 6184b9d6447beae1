package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/google/uuid"
	"github.com/venuebook/payment-service/internal/apperrors"
	"github.com/venuebook/payment-service/internal/models"
	"github.com/venuebook/payment-service/internal/repository"
	"gorm.io/gorm"
)

const searchLimit = 20

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

func validEmail(s string) bool {
	return emailPattern.MatchString(s)
}

type Participant struct {
	Email       string
	Phone       string
	AmountMinor int64
}

type LedgerService interface {
	// CreateRequests opens the split ledger for a booking: one pending
	// request per participant. The participant amounts must sum exactly to
	// the booking total; the check runs here, server-side, on every call.
	CreateRequests(ctx context.Context, bookingID uint, requesterEmail string, participants []Participant) ([]models.SplitPaymentRequest, error)
	Search(ctx context.Context, fragment, excludeEmail string) ([]models.SplitPaymentRequest, error)
}

type ledgerService struct {
	bookingRepo repository.BookingRepository
	splitRepo   repository.SplitRequestRepository
}

func NewLedgerService(bookingRepo repository.BookingRepository, splitRepo repository.SplitRequestRepository) LedgerService {
	return &ledgerService{bookingRepo: bookingRepo, splitRepo: splitRepo}
}

func (s *ledgerService) CreateRequests(ctx context.Context, bookingID uint, requesterEmail string, participants []Participant) ([]models.SplitPaymentRequest, error) {
	if len(participants) == 0 {
		return nil, apperrors.Validation("at least one participant is required")
	}

	var sum int64
	for i, p := range participants {
		if !validEmail(p.Email) {
			return nil, apperrors.Validation("participant %d: email is invalid", i+1)
		}
		if p.AmountMinor <= 0 {
			return nil, apperrors.Validation("participant %d: amount must be positive", i+1)
		}
		sum += p.AmountMinor
	}

	var created []models.SplitPaymentRequest
	err := s.bookingRepo.InTx(ctx, func(tx *gorm.DB) error {
		booking, err := s.bookingRepo.FindByIDForUpdate(ctx, tx, bookingID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("booking %d not found", bookingID)
			}
			return apperrors.Internal("load booking", err)
		}

		if booking.Status != models.BookingPending {
			return apperrors.Validation("booking %d is %s; split requests can only be opened on pending bookings", bookingID, booking.Status)
		}

		existing, err := s.splitRepo.FindByBookingID(ctx, tx, bookingID)
		if err != nil {
			return apperrors.Internal("load existing requests", err)
		}
		if len(existing) > 0 {
			return apperrors.Validation("booking %d already has a split ledger", bookingID)
		}

		if sum != booking.TotalMinor {
			return apperrors.Validation("split amounts must total %s, got %s",
				formatAmount(booking.TotalMinor, booking.Currency),
				formatAmount(sum, booking.Currency))
		}

		created = make([]models.SplitPaymentRequest, 0, len(participants))
		for _, p := range participants {
			created = append(created, models.SplitPaymentRequest{
				ID:             uuid.New(),
				BookingID:      bookingID,
				RequesterEmail: requesterEmail,
				RecipientEmail: p.Email,
				RecipientPhone: p.Phone,
				AmountMinor:    p.AmountMinor,
				Currency:       booking.Currency,
				Status:         models.SplitPending,
			})
		}
		if err := s.splitRepo.CreateBatch(ctx, tx, created); err != nil {
			return apperrors.Internal("create split requests", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *ledgerService) Search(ctx context.Context, fragment, excludeEmail string) ([]models.SplitPaymentRequest, error) {
	if len(fragment) < 3 {
		return nil, apperrors.Validation("search fragment must be at least 3 characters")
	}
	reqs, err := s.splitRepo.Search(ctx, fragment, excludeEmail, searchLimit)
	if err != nil {
		return nil, apperrors.Internal("search split requests", err)
	}
	return reqs, nil
}

// formatAmount renders a minor-unit amount for human-facing messages,
// e.g. 2000000 NGN -> "NGN 20000.00".
func formatAmount(minor int64, currency string) string {
	return fmt.Sprintf("%s %d.%02d", currency, minor/100, minor%100)
}
