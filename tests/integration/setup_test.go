//go:build integration

package integration

import (
	"fmt"
	"log"
	"os"
	"testing"

	"github.com/venuebook/payment-service/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDB *gorm.DB

func TestMain(m *testing.M) {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		getEnv("TEST_DB_HOST", "localhost"),
		getEnv("TEST_DB_PORT", "5434"),
		getEnv("TEST_DB_USER", "postgres"),
		getEnv("TEST_DB_PASSWORD", "postgres"),
		getEnv("TEST_DB_NAME", "payments_test_db"),
	)

	var err error
	testDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Fatalf("failed to connect to test database: %v", err)
	}

	// Drop and recreate tables for clean state
	testDB.Exec("DROP TABLE IF EXISTS payment_notifications")
	testDB.Exec("DROP TABLE IF EXISTS split_payment_requests")
	testDB.Exec("DROP TABLE IF EXISTS bookings")

	if err := testDB.AutoMigrate(
		&models.Booking{},
		&models.SplitPaymentRequest{},
		&models.PaymentNotification{},
	); err != nil {
		log.Fatalf("failed to auto-migrate test database: %v", err)
	}

	testDB.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_notification_request
		ON payment_notifications (request_id)
	`)

	code := m.Run()

	testDB.Exec("DROP TABLE IF EXISTS payment_notifications")
	testDB.Exec("DROP TABLE IF EXISTS split_payment_requests")
	testDB.Exec("DROP TABLE IF EXISTS bookings")

	os.Exit(code)
}

func cleanTables() {
	testDB.Exec("DELETE FROM payment_notifications")
	testDB.Exec("DELETE FROM split_payment_requests")
	testDB.Exec("DELETE FROM bookings")
	testDB.Exec("ALTER SEQUENCE IF EXISTS bookings_id_seq RESTART WITH 1")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
