package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/venuebook/payment-service/internal/dto"
	"github.com/venuebook/payment-service/internal/middleware"
	"github.com/venuebook/payment-service/internal/models"
	"github.com/venuebook/payment-service/internal/processor"
	"gorm.io/gorm"
)

// --- Mock SplitRequestRepository (only FindByID is exercised here) ---

type mockSplitRepo struct {
	findByIDFn func(ctx context.Context, id uuid.UUID) (*models.SplitPaymentRequest, error)
}

func (m *mockSplitRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.SplitPaymentRequest, error) {
	return m.findByIDFn(ctx, id)
}
func (m *mockSplitRepo) CreateBatch(ctx context.Context, tx *gorm.DB, reqs []models.SplitPaymentRequest) error {
	return nil
}
func (m *mockSplitRepo) FindByBookingID(ctx context.Context, tx *gorm.DB, bookingID uint) ([]models.SplitPaymentRequest, error) {
	return nil, nil
}
func (m *mockSplitRepo) CountNotPaid(ctx context.Context, tx *gorm.DB, bookingID uint) (int64, error) {
	return 0, nil
}
func (m *mockSplitRepo) MarkPaidIfPending(ctx context.Context, tx *gorm.DB, id uuid.UUID, processor, ref string, paidAt time.Time) (bool, error) {
	return false, nil
}
func (m *mockSplitRepo) MarkStatusIfPending(ctx context.Context, tx *gorm.DB, id uuid.UUID, status models.SplitRequestStatus) (bool, error) {
	return false, nil
}
func (m *mockSplitRepo) Search(ctx context.Context, fragment, excludeEmail string, limit int) ([]models.SplitPaymentRequest, error) {
	return nil, nil
}
func (m *mockSplitRepo) ExpireOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

// --- Stub detector and processor clients ---

type stubDetector struct{ country string }

func (s stubDetector) Country(ctx context.Context, ip string) string { return s.country }

type stubRegional struct {
	params processor.InitiateParams
}

func (s *stubRegional) InitializeTransaction(ctx context.Context, params processor.InitiateParams) (*processor.Initiation, error) {
	s.params = params
	return &processor.Initiation{Reference: "ref_xyz", AuthorizationURL: "https://checkout.example/abc"}, nil
}

type stubCardNetwork struct {
	params processor.InitiateParams
}

func (s *stubCardNetwork) CreatePaymentIntent(ctx context.Context, params processor.InitiateParams) (*processor.Initiation, error) {
	s.params = params
	return &processor.Initiation{Reference: "pi_123", ClientSecret: "pi_123_secret"}, nil
}

func newPaymentServer(requestID uuid.UUID, currency, detected string) (*echo.Echo, *stubRegional, *stubCardNetwork) {
	splitRepo := &mockSplitRepo{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*models.SplitPaymentRequest, error) {
			if id != requestID {
				return nil, gorm.ErrRecordNotFound
			}
			return &models.SplitPaymentRequest{
				ID:          requestID,
				BookingID:   42,
				AmountMinor: 1000000,
				Currency:    currency,
				Status:      models.SplitPending,
			}, nil
		},
	}
	regional := &stubRegional{}
	card := &stubCardNetwork{}

	e := echo.New()
	e.HTTPErrorHandler = middleware.ErrorHandler
	h := NewPaymentHandler(splitRepo, stubDetector{country: detected}, regional, card, "https://app.example")
	e.POST("/api/v1/payments/initiate", h.Initiate)
	return e, regional, card
}

func initiate(t *testing.T, e *echo.Echo, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/initiate", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)
	return w
}

func TestInitiate_RegionalByDetectedCountry(t *testing.T) {
	requestID := uuid.New()
	e, regional, _ := newPaymentServer(requestID, "NGN", "NG")

	w := initiate(t, e, `{"booking_id":42,"request_id":"`+requestID.String()+`","email":"ade@example.com"}`)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.InitiatePaymentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "regional", resp.Processor)
	assert.Equal(t, "NGN", resp.Currency)
	assert.Equal(t, "https://checkout.example/abc", resp.AuthorizationURL)
	assert.Equal(t, "ref_xyz", resp.Reference)

	assert.Equal(t, "42", regional.params.BookingID)
	assert.Equal(t, requestID.String(), regional.params.RequestID)
	assert.Equal(t, "https://app.example/payment/callback", regional.params.CallbackURL)
}

func TestInitiate_CardNetworkByOverride(t *testing.T) {
	// A GBP-denominated share from a GB participant goes to the card network.
	requestID := uuid.New()
	e, _, card := newPaymentServer(requestID, "GBP", "NG")

	w := initiate(t, e, `{"booking_id":42,"request_id":"`+requestID.String()+`","email":"amy@example.com","country":"GB"}`)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.InitiatePaymentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "card-network", resp.Processor)
	assert.Equal(t, "GBP", resp.Currency)
	assert.Equal(t, "pi_123_secret", resp.ClientSecret)
	assert.Equal(t, "42", card.params.BookingID)
	assert.Equal(t, "GBP", card.params.Currency)
}

func TestInitiate_ForeignCountryKeepsLedgerCurrency(t *testing.T) {
	// An NGN share from a GB participant must not become a GBP charge of the
	// same minor-unit figure; it stays a kobo charge through the regional
	// processor.
	requestID := uuid.New()
	e, regional, card := newPaymentServer(requestID, "NGN", "NG")

	w := initiate(t, e, `{"booking_id":42,"request_id":"`+requestID.String()+`","email":"amy@example.com","country":"GB"}`)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.InitiatePaymentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "regional", resp.Processor)
	assert.Equal(t, "NGN", resp.Currency)
	assert.Equal(t, int64(1000000), resp.AmountMinor)

	assert.Equal(t, "NGN", regional.params.Currency)
	assert.Equal(t, int64(1000000), regional.params.AmountMinor)
	assert.Empty(t, card.params.RequestID, "card network must not be called")
}

func TestInitiate_CurrencyMismatchFailsClosed(t *testing.T) {
	// A GBP share routed to the regional processor has no safe charge
	// currency; the request is rejected instead of repriced.
	requestID := uuid.New()
	e, regional, card := newPaymentServer(requestID, "GBP", "NG")

	w := initiate(t, e, `{"booking_id":42,"request_id":"`+requestID.String()+`","email":"amy@example.com"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "GBP")
	assert.Empty(t, regional.params.RequestID)
	assert.Empty(t, card.params.RequestID)
}

func TestInitiate_UnknownRequest(t *testing.T) {
	e, _, _ := newPaymentServer(uuid.New(), "NGN", "NG")

	w := initiate(t, e, `{"booking_id":42,"request_id":"`+uuid.NewString()+`","email":"x@example.com"}`)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestInitiate_BookingMismatch(t *testing.T) {
	requestID := uuid.New()
	e, _, _ := newPaymentServer(requestID, "NGN", "NG")

	w := initiate(t, e, `{"booking_id":7,"request_id":"`+requestID.String()+`","email":"x@example.com"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInitiate_SettledRequestRejected(t *testing.T) {
	requestID := uuid.New()
	splitRepo := &mockSplitRepo{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*models.SplitPaymentRequest, error) {
			return &models.SplitPaymentRequest{
				ID:        requestID,
				BookingID: 42,
				Status:    models.SplitPaid,
			}, nil
		},
	}
	e := echo.New()
	e.HTTPErrorHandler = middleware.ErrorHandler
	h := NewPaymentHandler(splitRepo, stubDetector{country: "NG"}, &stubRegional{}, &stubCardNetwork{}, "https://app.example")
	e.POST("/api/v1/payments/initiate", h.Initiate)

	w := initiate(t, e, `{"booking_id":42,"request_id":"`+requestID.String()+`","email":"x@example.com"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "already paid")
}

func TestInitiate_MissingFields(t *testing.T) {
	e, _, _ := newPaymentServer(uuid.New(), "NGN", "NG")

	w := initiate(t, e, `{}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
