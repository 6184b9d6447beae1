package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/venuebook/payment-service/internal/models"
	"gorm.io/gorm"
)

type SplitRequestRepository interface {
	CreateBatch(ctx context.Context, tx *gorm.DB, requests []models.SplitPaymentRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.SplitPaymentRequest, error)
	FindByBookingID(ctx context.Context, tx *gorm.DB, bookingID uint) ([]models.SplitPaymentRequest, error)
	CountNotPaid(ctx context.Context, tx *gorm.DB, bookingID uint) (int64, error)
	// MarkPaidIfPending records the paid transition only when the row is
	// still pending. Returns false if the row was already terminal, which
	// makes duplicate webhook deliveries no-ops.
	MarkPaidIfPending(ctx context.Context, tx *gorm.DB, id uuid.UUID, processor, ref string, paidAt time.Time) (bool, error)
	MarkStatusIfPending(ctx context.Context, tx *gorm.DB, id uuid.UUID, status models.SplitRequestStatus) (bool, error)
	Search(ctx context.Context, fragment, excludeEmail string, limit int) ([]models.SplitPaymentRequest, error)
	ExpireOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type splitRequestRepository struct {
	db *gorm.DB
}

func NewSplitRequestRepository(db *gorm.DB) SplitRequestRepository {
	return &splitRequestRepository{db: db}
}

func (r *splitRequestRepository) CreateBatch(ctx context.Context, tx *gorm.DB, requests []models.SplitPaymentRequest) error {
	return tx.WithContext(ctx).Create(&requests).Error
}

func (r *splitRequestRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.SplitPaymentRequest, error) {
	var req models.SplitPaymentRequest
	if err := r.db.WithContext(ctx).First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *splitRequestRepository) FindByBookingID(ctx context.Context, tx *gorm.DB, bookingID uint) ([]models.SplitPaymentRequest, error) {
	var reqs []models.SplitPaymentRequest
	err := tx.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("created_at ASC").
		Find(&reqs).Error
	if err != nil {
		return nil, err
	}
	return reqs, nil
}

func (r *splitRequestRepository) CountNotPaid(ctx context.Context, tx *gorm.DB, bookingID uint) (int64, error) {
	var count int64
	err := tx.WithContext(ctx).
		Model(&models.SplitPaymentRequest{}).
		Where("booking_id = ? AND status <> ?", bookingID, models.SplitPaid).
		Count(&count).Error
	return count, err
}

func (r *splitRequestRepository) MarkPaidIfPending(ctx context.Context, tx *gorm.DB, id uuid.UUID, processor, ref string, paidAt time.Time) (bool, error) {
	res := tx.WithContext(ctx).
		Model(&models.SplitPaymentRequest{}).
		Where("id = ? AND status = ?", id, models.SplitPending).
		Updates(map[string]any{
			"status":        models.SplitPaid,
			"processor":     processor,
			"processor_ref": ref,
			"paid_at":       paidAt,
		})
	return res.RowsAffected > 0, res.Error
}

func (r *splitRequestRepository) MarkStatusIfPending(ctx context.Context, tx *gorm.DB, id uuid.UUID, status models.SplitRequestStatus) (bool, error) {
	res := tx.WithContext(ctx).
		Model(&models.SplitPaymentRequest{}).
		Where("id = ? AND status = ?", id, models.SplitPending).
		Update("status", status)
	return res.RowsAffected > 0, res.Error
}

// Search finds pending requests whose recipient email or phone contains the
// fragment, excluding rows addressed to the caller themselves.
func (r *splitRequestRepository) Search(ctx context.Context, fragment, excludeEmail string, limit int) ([]models.SplitPaymentRequest, error) {
	var reqs []models.SplitPaymentRequest
	pattern := "%" + fragment + "%"
	err := r.db.WithContext(ctx).
		Where("status = ?", models.SplitPending).
		Where("recipient_email ILIKE ? OR recipient_phone LIKE ?", pattern, pattern).
		Where("requester_email <> ?", excludeEmail).
		Order("created_at DESC").
		Limit(limit).
		Find(&reqs).Error
	if err != nil {
		return nil, err
	}
	return reqs, nil
}

func (r *splitRequestRepository) ExpireOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.SplitPaymentRequest{}).
		Where("status = ? AND created_at < ?", models.SplitPending, cutoff).
		Update("status", models.SplitExpired)
	return res.RowsAffected, res.Error
}
