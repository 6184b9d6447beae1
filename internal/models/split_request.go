package models

import (
	"time"

	"github.com/google/uuid"
)

type SplitRequestStatus string

const (
	SplitPending SplitRequestStatus = "pending"
	SplitPaid    SplitRequestStatus = "paid"
	SplitFailed  SplitRequestStatus = "failed"
	SplitExpired SplitRequestStatus = "expired"
)

// Terminal reports whether no further transition is allowed out of s.
func (s SplitRequestStatus) Terminal() bool {
	return s == SplitPaid || s == SplitFailed || s == SplitExpired
}

// SplitPaymentRequest is one participant's share of a booking total.
// Rows are never deleted; status only moves pending -> paid|failed|expired,
// and only through the reconciliation service.
type SplitPaymentRequest struct {
	ID             uuid.UUID          `gorm:"type:uuid;primaryKey" json:"id"`
	BookingID      uint               `gorm:"not null;index" json:"booking_id"`
	RequesterEmail string             `gorm:"not null" json:"requester_email"`
	RecipientEmail string             `gorm:"not null" json:"recipient_email"`
	RecipientPhone string             `json:"recipient_phone,omitempty"`
	AmountMinor    int64              `gorm:"not null" json:"amount_minor"`
	Currency       string             `gorm:"type:varchar(3);not null" json:"currency"`
	Status         SplitRequestStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	Processor      string             `gorm:"type:varchar(20)" json:"processor,omitempty"`
	ProcessorRef   *string            `json:"processor_ref,omitempty"`
	PaidAt         *time.Time         `json:"paid_at,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

// PaymentNotification tells the requester that a participant settled their
// share. Append-only; a unique index on request_id keeps duplicate webhook
// deliveries from producing duplicate rows.
type PaymentNotification struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	BookingID      uint      `gorm:"not null;index" json:"booking_id"`
	RequestID      uuid.UUID `gorm:"type:uuid;not null" json:"request_id"`
	RecipientEmail string    `gorm:"not null" json:"recipient_email"`
	Message        string    `gorm:"not null" json:"message"`
	CreatedAt      time.Time `json:"created_at"`
}
