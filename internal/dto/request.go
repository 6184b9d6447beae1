package dto

import "time"

type CreateBookingRequest struct {
	VenueID       uint      `json:"venue_id"`
	CustomerEmail string    `json:"customer_email"`
	StartsAt      time.Time `json:"starts_at"`
	EndsAt        time.Time `json:"ends_at"`
	GuestCount    int       `json:"guest_count"`
	TotalMinor    int64     `json:"total_minor"`
	Currency      string    `json:"currency"`
}

type SplitParticipant struct {
	Email       string `json:"email"`
	Phone       string `json:"phone,omitempty"`
	AmountMinor int64  `json:"amount_minor"`
}

type CreateSplitRequestsRequest struct {
	Participants []SplitParticipant `json:"participants"`
}

type InitiatePaymentRequest struct {
	BookingID uint   `json:"booking_id"`
	RequestID string `json:"request_id"`
	Email     string `json:"email"`
	// Country overrides IP-based detection when present.
	Country string `json:"country,omitempty"`
}
