package models

import "time"

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentUnpaid        PaymentStatus = "unpaid"
	PaymentPartiallyPaid PaymentStatus = "partially_paid"
	PaymentPaid          PaymentStatus = "paid"
)

type Booking struct {
	ID            uint          `gorm:"primaryKey" json:"id"`
	VenueID       uint          `gorm:"not null" json:"venue_id"`
	CustomerEmail string        `gorm:"not null" json:"customer_email"`
	StartsAt      time.Time     `gorm:"not null" json:"starts_at"`
	EndsAt        time.Time     `gorm:"not null" json:"ends_at"`
	GuestCount    int           `gorm:"not null" json:"guest_count"`
	TotalMinor    int64         `gorm:"not null" json:"total_minor"`
	Currency      string        `gorm:"type:varchar(3);not null" json:"currency"`
	Status        BookingStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	PaymentStatus PaymentStatus `gorm:"type:varchar(20);not null;default:'unpaid'" json:"payment_status"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`

	SplitRequests []SplitPaymentRequest `gorm:"foreignKey:BookingID" json:"split_requests,omitempty"`
}
