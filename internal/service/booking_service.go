package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/venuebook/payment-service/internal/apperrors"
	"github.com/venuebook/payment-service/internal/models"
	"github.com/venuebook/payment-service/internal/repository"
	"gorm.io/gorm"
)

type CreateBookingInput struct {
	VenueID       uint
	CustomerEmail string
	StartsAt      time.Time
	EndsAt        time.Time
	GuestCount    int
	TotalMinor    int64
	Currency      string
}

type BookingService interface {
	CreateBooking(ctx context.Context, in CreateBookingInput) (*models.Booking, error)
	GetBooking(ctx context.Context, id uint) (*models.Booking, error)
	CancelBooking(ctx context.Context, id uint) (*models.Booking, error)
}

type bookingService struct {
	bookingRepo repository.BookingRepository
}

func NewBookingService(bookingRepo repository.BookingRepository) BookingService {
	return &bookingService{bookingRepo: bookingRepo}
}

func (s *bookingService) CreateBooking(ctx context.Context, in CreateBookingInput) (*models.Booking, error) {
	if in.VenueID == 0 {
		return nil, apperrors.Validation("venue_id is required")
	}
	if !validEmail(in.CustomerEmail) {
		return nil, apperrors.Validation("customer_email is invalid")
	}
	if !in.EndsAt.After(in.StartsAt) {
		return nil, apperrors.Validation("ends_at must be after starts_at")
	}
	if in.GuestCount <= 0 {
		return nil, apperrors.Validation("guest_count must be positive")
	}
	if in.TotalMinor <= 0 {
		return nil, apperrors.Validation("total_minor must be positive")
	}

	currency := strings.ToUpper(in.Currency)
	if currency == "" {
		currency = "NGN"
	}

	booking := &models.Booking{
		VenueID:       in.VenueID,
		CustomerEmail: in.CustomerEmail,
		StartsAt:      in.StartsAt,
		EndsAt:        in.EndsAt,
		GuestCount:    in.GuestCount,
		TotalMinor:    in.TotalMinor,
		Currency:      currency,
		Status:        models.BookingPending,
		PaymentStatus: models.PaymentUnpaid,
	}
	if err := s.bookingRepo.Create(ctx, booking); err != nil {
		return nil, apperrors.Internal("create booking", err)
	}
	return booking, nil
}

func (s *bookingService) GetBooking(ctx context.Context, id uint) (*models.Booking, error) {
	booking, err := s.bookingRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("booking %d not found", id)
		}
		return nil, apperrors.Internal("load booking", err)
	}
	return booking, nil
}

// CancelBooking cancels a pending booking. Confirmed bookings cannot be
// cancelled through this path; settled money needs a refund flow.
func (s *bookingService) CancelBooking(ctx context.Context, id uint) (*models.Booking, error) {
	cancelled, err := s.bookingRepo.CancelIfPending(ctx, id)
	if err != nil {
		return nil, apperrors.Internal("cancel booking", err)
	}
	if !cancelled {
		booking, err := s.GetBooking(ctx, id)
		if err != nil {
			return nil, err
		}
		return nil, apperrors.Validation("booking %d is %s and cannot be cancelled", id, booking.Status)
	}
	return s.GetBooking(ctx, id)
}
