package database

import (
	"log"

	"github.com/venuebook/payment-service/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewPostgresDB(dsn string) *gorm.DB {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Booking{},
		&models.SplitPaymentRequest{},
		&models.PaymentNotification{},
	); err != nil {
		log.Fatalf("failed to auto-migrate: %v", err)
	}

	// One paid-notification per split request: makes duplicate webhook
	// deliveries insert nothing instead of a second row.
	db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_notification_request
		ON payment_notifications (request_id)
	`)

	// Search path: participants look up pending requests addressed to them.
	db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_split_pending_recipient
		ON split_payment_requests (recipient_email)
		WHERE status = 'pending'
	`)

	return db
}
