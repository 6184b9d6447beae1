package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/venuebook/payment-service/internal/models"
	"gorm.io/gorm"
)

// --- Mock BookingRepository ---

type mockBookingRepo struct {
	createFn          func(ctx context.Context, b *models.Booking) error
	findByIDFn        func(ctx context.Context, id uint) (*models.Booking, error)
	findForUpdateFn   func(ctx context.Context, tx *gorm.DB, id uint) (*models.Booking, error)
	confirmFn         func(ctx context.Context, tx *gorm.DB, id uint) (bool, error)
	updatePaymentFn   func(ctx context.Context, tx *gorm.DB, id uint, status models.PaymentStatus) error
	cancelIfPendingFn func(ctx context.Context, id uint) (bool, error)
}

func (m *mockBookingRepo) Create(ctx context.Context, b *models.Booking) error {
	return m.createFn(ctx, b)
}

func (m *mockBookingRepo) FindByID(ctx context.Context, id uint) (*models.Booking, error) {
	return m.findByIDFn(ctx, id)
}

func (m *mockBookingRepo) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Booking, error) {
	return m.findForUpdateFn(ctx, tx, id)
}

func (m *mockBookingRepo) ConfirmIfPending(ctx context.Context, tx *gorm.DB, id uint) (bool, error) {
	if m.confirmFn != nil {
		return m.confirmFn(ctx, tx, id)
	}
	return false, nil
}

func (m *mockBookingRepo) UpdatePaymentStatus(ctx context.Context, tx *gorm.DB, id uint, status models.PaymentStatus) error {
	if m.updatePaymentFn != nil {
		return m.updatePaymentFn(ctx, tx, id, status)
	}
	return nil
}

func (m *mockBookingRepo) CancelIfPending(ctx context.Context, id uint) (bool, error) {
	return m.cancelIfPendingFn(ctx, id)
}

func (m *mockBookingRepo) InTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func (m *mockBookingRepo) GetDB() *gorm.DB { return nil }

// --- Mock SplitRequestRepository ---

type mockSplitRepo struct {
	createBatchFn     func(ctx context.Context, tx *gorm.DB, reqs []models.SplitPaymentRequest) error
	findByIDFn        func(ctx context.Context, id uuid.UUID) (*models.SplitPaymentRequest, error)
	findByBookingFn   func(ctx context.Context, tx *gorm.DB, bookingID uint) ([]models.SplitPaymentRequest, error)
	countNotPaidFn    func(ctx context.Context, tx *gorm.DB, bookingID uint) (int64, error)
	markPaidFn        func(ctx context.Context, tx *gorm.DB, id uuid.UUID, processor, ref string, paidAt time.Time) (bool, error)
	markStatusFn      func(ctx context.Context, tx *gorm.DB, id uuid.UUID, status models.SplitRequestStatus) (bool, error)
	searchFn          func(ctx context.Context, fragment, excludeEmail string, limit int) ([]models.SplitPaymentRequest, error)
	expireOlderThanFn func(ctx context.Context, cutoff time.Time) (int64, error)
}

func (m *mockSplitRepo) CreateBatch(ctx context.Context, tx *gorm.DB, reqs []models.SplitPaymentRequest) error {
	return m.createBatchFn(ctx, tx, reqs)
}

func (m *mockSplitRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.SplitPaymentRequest, error) {
	return m.findByIDFn(ctx, id)
}

func (m *mockSplitRepo) FindByBookingID(ctx context.Context, tx *gorm.DB, bookingID uint) ([]models.SplitPaymentRequest, error) {
	if m.findByBookingFn != nil {
		return m.findByBookingFn(ctx, tx, bookingID)
	}
	return nil, nil
}

func (m *mockSplitRepo) CountNotPaid(ctx context.Context, tx *gorm.DB, bookingID uint) (int64, error) {
	return m.countNotPaidFn(ctx, tx, bookingID)
}

func (m *mockSplitRepo) MarkPaidIfPending(ctx context.Context, tx *gorm.DB, id uuid.UUID, processor, ref string, paidAt time.Time) (bool, error) {
	return m.markPaidFn(ctx, tx, id, processor, ref, paidAt)
}

func (m *mockSplitRepo) MarkStatusIfPending(ctx context.Context, tx *gorm.DB, id uuid.UUID, status models.SplitRequestStatus) (bool, error) {
	return m.markStatusFn(ctx, tx, id, status)
}

func (m *mockSplitRepo) Search(ctx context.Context, fragment, excludeEmail string, limit int) ([]models.SplitPaymentRequest, error) {
	return m.searchFn(ctx, fragment, excludeEmail, limit)
}

func (m *mockSplitRepo) ExpireOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return m.expireOlderThanFn(ctx, cutoff)
}

// --- Mock NotificationRepository ---

type mockNotificationRepo struct {
	mu      sync.Mutex
	created []models.PaymentNotification
	err     error
}

func (m *mockNotificationRepo) Create(ctx context.Context, tx *gorm.DB, n *models.PaymentNotification) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created = append(m.created, *n)
	return nil
}

func (m *mockNotificationRepo) FindByBookingID(ctx context.Context, bookingID uint) ([]models.PaymentNotification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.created, nil
}

// --- Recording publisher ---

type publishedEvent struct {
	key     string
	payload any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *recordingPublisher) Publish(routingKey string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{key: routingKey, payload: payload})
	return nil
}

func (p *recordingPublisher) byKey(key string) []publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []publishedEvent
	for _, e := range p.events {
		if e.key == key {
			out = append(out, e)
		}
	}
	return out
}
