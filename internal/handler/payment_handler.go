package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/venuebook/payment-service/internal/apperrors"
	"github.com/venuebook/payment-service/internal/dto"
	"github.com/venuebook/payment-service/internal/processor"
	"github.com/venuebook/payment-service/internal/repository"
	"github.com/venuebook/payment-service/internal/route"
)

type countryDetector interface {
	Country(ctx context.Context, ip string) string
}

type regionalClient interface {
	InitializeTransaction(ctx context.Context, params processor.InitiateParams) (*processor.Initiation, error)
}

type cardNetworkClient interface {
	CreatePaymentIntent(ctx context.Context, params processor.InitiateParams) (*processor.Initiation, error)
}

type PaymentHandler struct {
	splitRepo  repository.SplitRequestRepository
	detector   countryDetector
	paystack   regionalClient
	stripe     cardNetworkClient
	appBaseURL string
}

func NewPaymentHandler(
	splitRepo repository.SplitRequestRepository,
	detector countryDetector,
	paystack regionalClient,
	stripe cardNetworkClient,
	appBaseURL string,
) *PaymentHandler {
	return &PaymentHandler{
		splitRepo:  splitRepo,
		detector:   detector,
		paystack:   paystack,
		stripe:     stripe,
		appBaseURL: appBaseURL,
	}
}

// Initiate routes a participant's payment to a processor and opens the
// checkout, attaching the ledger metadata the webhook will need.
func (h *PaymentHandler) Initiate(c echo.Context) error {
	var req dto.InitiatePaymentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.BookingID == 0 || req.RequestID == "" {
		return apperrors.Validation("booking_id and request_id are required")
	}

	requestID, err := uuid.Parse(req.RequestID)
	if err != nil {
		return apperrors.Validation("request_id is not a valid id")
	}

	ctx := c.Request().Context()

	request, err := h.splitRepo.FindByID(ctx, requestID)
	if err != nil {
		return apperrors.NotFound("split request %s not found", requestID)
	}
	if request.BookingID != req.BookingID {
		return apperrors.Validation("request %s does not belong to booking %d", requestID, req.BookingID)
	}
	if request.Status.Terminal() {
		return apperrors.Validation("request %s is already %s", requestID, request.Status)
	}

	country := req.Country
	if country == "" {
		country = h.detector.Country(ctx, c.RealIP())
	}
	decision := route.ForCountry(country)

	// The charge currency was fixed on the ledger at creation; a share is
	// never repriced. When routing disagrees, NGN shares go through the
	// regional processor (it accepts international cards); anything else
	// fails closed rather than charging the ledger amount in the wrong
	// currency.
	if decision.Currency != request.Currency {
		if request.Currency != "NGN" {
			return apperrors.Validation("request %s is denominated in %s and cannot be charged in %s",
				requestID, request.Currency, decision.Currency)
		}
		decision = route.Decision{Processor: route.Regional, Currency: "NGN"}
	}

	params := processor.InitiateParams{
		Email:       req.Email,
		AmountMinor: request.AmountMinor,
		Currency:    decision.Currency,
		BookingID:   strconv.FormatUint(uint64(req.BookingID), 10),
		RequestID:   requestID.String(),
		CallbackURL: h.appBaseURL + "/payment/callback",
	}

	var init *processor.Initiation
	if decision.Processor == route.CardNetwork {
		init, err = h.stripe.CreatePaymentIntent(ctx, params)
	} else {
		init, err = h.paystack.InitializeTransaction(ctx, params)
	}
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.InitiatePaymentResponse{
		Processor:        string(decision.Processor),
		Currency:         decision.Currency,
		AmountMinor:      request.AmountMinor,
		Reference:        init.Reference,
		AuthorizationURL: init.AuthorizationURL,
		ClientSecret:     init.ClientSecret,
	})
}
