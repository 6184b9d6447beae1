package repository

import (
	"context"

	"github.com/venuebook/payment-service/internal/models"
	"gorm.io/gorm"
)

type BookingRepository interface {
	Create(ctx context.Context, booking *models.Booking) error
	FindByID(ctx context.Context, id uint) (*models.Booking, error)
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Booking, error)
	// ConfirmIfPending flips a pending booking to confirmed and its payment
	// status to paid in one conditional update. Returns false when the
	// booking was already out of pending, so callers can gate one-shot side
	// effects on the transition actually happening.
	ConfirmIfPending(ctx context.Context, tx *gorm.DB, id uint) (bool, error)
	UpdatePaymentStatus(ctx context.Context, tx *gorm.DB, id uint, status models.PaymentStatus) error
	CancelIfPending(ctx context.Context, id uint) (bool, error)
	// InTx runs fn inside one database transaction.
	InTx(ctx context.Context, fn func(tx *gorm.DB) error) error
	GetDB() *gorm.DB
}

type bookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) BookingRepository {
	return &bookingRepository{db: db}
}

func (r *bookingRepository) GetDB() *gorm.DB {
	return r.db
}

func (r *bookingRepository) InTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func (r *bookingRepository) Create(ctx context.Context, booking *models.Booking) error {
	return r.db.WithContext(ctx).Create(booking).Error
}

func (r *bookingRepository) FindByID(ctx context.Context, id uint) (*models.Booking, error) {
	var booking models.Booking
	if err := r.db.WithContext(ctx).Preload("SplitRequests").First(&booking, id).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

// FindByIDForUpdate acquires a row-level lock on the booking within the given
// transaction. Serializes concurrent confirmation checks for one booking.
func (r *bookingRepository) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Booking, error) {
	var booking models.Booking
	if err := tx.WithContext(ctx).
		Set("gorm:query_option", "FOR UPDATE").
		First(&booking, id).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepository) ConfirmIfPending(ctx context.Context, tx *gorm.DB, id uint) (bool, error) {
	res := tx.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ? AND status = ?", id, models.BookingPending).
		Updates(map[string]any{
			"status":         models.BookingConfirmed,
			"payment_status": models.PaymentPaid,
		})
	return res.RowsAffected > 0, res.Error
}

func (r *bookingRepository) UpdatePaymentStatus(ctx context.Context, tx *gorm.DB, id uint, status models.PaymentStatus) error {
	return tx.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ?", id).
		Update("payment_status", status).Error
}

func (r *bookingRepository) CancelIfPending(ctx context.Context, id uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ? AND status = ?", id, models.BookingPending).
		Update("status", models.BookingCancelled)
	return res.RowsAffected > 0, res.Error
}
