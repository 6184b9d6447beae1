package repository

import (
	"context"

	"github.com/venuebook/payment-service/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type NotificationRepository interface {
	// Create inserts the notification, silently skipping the insert when one
	// already exists for the same request (the request_id unique index).
	Create(ctx context.Context, tx *gorm.DB, n *models.PaymentNotification) error
	FindByBookingID(ctx context.Context, bookingID uint) ([]models.PaymentNotification, error)
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, tx *gorm.DB, n *models.PaymentNotification) error {
	return tx.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "request_id"}},
			DoNothing: true,
		}).
		Create(n).Error
}

func (r *notificationRepository) FindByBookingID(ctx context.Context, bookingID uint) ([]models.PaymentNotification, error) {
	var ns []models.PaymentNotification
	err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("created_at ASC").
		Find(&ns).Error
	if err != nil {
		return nil, err
	}
	return ns, nil
}
