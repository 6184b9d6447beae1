package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/venuebook/payment-service/internal/models"
)

type BookingResponse struct {
	ID            uint                   `json:"id"`
	VenueID       uint                   `json:"venue_id"`
	CustomerEmail string                 `json:"customer_email"`
	StartsAt      time.Time              `json:"starts_at"`
	EndsAt        time.Time              `json:"ends_at"`
	GuestCount    int                    `json:"guest_count"`
	TotalMinor    int64                  `json:"total_minor"`
	Currency      string                 `json:"currency"`
	Status        models.BookingStatus   `json:"status"`
	PaymentStatus models.PaymentStatus   `json:"payment_status"`
	SplitRequests []SplitRequestResponse `json:"split_requests,omitempty"`
	CreatedAt     time.Time              `json:"created_at"`
}

type SplitRequestResponse struct {
	ID             uuid.UUID                 `json:"id"`
	BookingID      uint                      `json:"booking_id"`
	RequesterEmail string                    `json:"requester_email"`
	RecipientEmail string                    `json:"recipient_email"`
	RecipientPhone string                    `json:"recipient_phone,omitempty"`
	AmountMinor    int64                     `json:"amount_minor"`
	Currency       string                    `json:"currency"`
	Status         models.SplitRequestStatus `json:"status"`
	ProcessorRef   *string                   `json:"processor_ref,omitempty"`
	PaidAt         *time.Time                `json:"paid_at,omitempty"`
	CreatedAt      time.Time                 `json:"created_at"`
}

type InitiatePaymentResponse struct {
	Processor        string `json:"processor"`
	Currency         string `json:"currency"`
	AmountMinor      int64  `json:"amount_minor"`
	Reference        string `json:"reference"`
	AuthorizationURL string `json:"authorization_url,omitempty"`
	ClientSecret     string `json:"client_secret,omitempty"`
}

type NotificationResponse struct {
	ID             uuid.UUID `json:"id"`
	BookingID      uint      `json:"booking_id"`
	RequestID      uuid.UUID `json:"request_id"`
	RecipientEmail string    `json:"recipient_email"`
	Message        string    `json:"message"`
	CreatedAt      time.Time `json:"created_at"`
}

type ErrorResponse struct {
	Message string `json:"message"`
}

func ToBookingResponse(b *models.Booking) BookingResponse {
	resp := BookingResponse{
		ID:            b.ID,
		VenueID:       b.VenueID,
		CustomerEmail: b.CustomerEmail,
		StartsAt:      b.StartsAt,
		EndsAt:        b.EndsAt,
		GuestCount:    b.GuestCount,
		TotalMinor:    b.TotalMinor,
		Currency:      b.Currency,
		Status:        b.Status,
		PaymentStatus: b.PaymentStatus,
		CreatedAt:     b.CreatedAt,
	}
	for i := range b.SplitRequests {
		resp.SplitRequests = append(resp.SplitRequests, ToSplitRequestResponse(&b.SplitRequests[i]))
	}
	return resp
}

func ToNotificationResponse(n *models.PaymentNotification) NotificationResponse {
	return NotificationResponse{
		ID:             n.ID,
		BookingID:      n.BookingID,
		RequestID:      n.RequestID,
		RecipientEmail: n.RecipientEmail,
		Message:        n.Message,
		CreatedAt:      n.CreatedAt,
	}
}

func ToSplitRequestResponse(r *models.SplitPaymentRequest) SplitRequestResponse {
	return SplitRequestResponse{
		ID:             r.ID,
		BookingID:      r.BookingID,
		RequesterEmail: r.RequesterEmail,
		RecipientEmail: r.RecipientEmail,
		RecipientPhone: r.RecipientPhone,
		AmountMinor:    r.AmountMinor,
		Currency:       r.Currency,
		Status:         r.Status,
		ProcessorRef:   r.ProcessorRef,
		PaidAt:         r.PaidAt,
		CreatedAt:      r.CreatedAt,
	}
}
