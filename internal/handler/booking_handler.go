package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/venuebook/payment-service/internal/dto"
	"github.com/venuebook/payment-service/internal/middleware"
	"github.com/venuebook/payment-service/internal/repository"
	"github.com/venuebook/payment-service/internal/service"
	"github.com/venuebook/payment-service/pkg/auth"
)

type BookingHandler struct {
	bookings      service.BookingService
	notifications repository.NotificationRepository
	splits        *SplitHandler
	payments      *PaymentHandler
}

func NewBookingHandler(bookings service.BookingService, notifications repository.NotificationRepository, splits *SplitHandler, payments *PaymentHandler) *BookingHandler {
	return &BookingHandler{bookings: bookings, notifications: notifications, splits: splits, payments: payments}
}

func (h *BookingHandler) RegisterRoutes(e *echo.Echo, verifier *auth.Verifier) {
	api := e.Group("/api/v1", middleware.RequireAuth(verifier))

	api.POST("/bookings", h.CreateBooking)
	api.GET("/bookings/:id", h.GetBooking)
	api.DELETE("/bookings/:id", h.CancelBooking)
	api.GET("/bookings/:id/notifications", h.ListNotifications)

	api.POST("/bookings/:id/split-requests", h.splits.CreateRequests)
	api.GET("/split-requests", h.splits.Search)

	api.POST("/payments/initiate", h.payments.Initiate)
}

func (h *BookingHandler) CreateBooking(c echo.Context) error {
	var req dto.CreateBookingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.CustomerEmail == "" {
		req.CustomerEmail = middleware.CallerEmail(c)
	}

	booking, err := h.bookings.CreateBooking(c.Request().Context(), service.CreateBookingInput{
		VenueID:       req.VenueID,
		CustomerEmail: req.CustomerEmail,
		StartsAt:      req.StartsAt,
		EndsAt:        req.EndsAt,
		GuestCount:    req.GuestCount,
		TotalMinor:    req.TotalMinor,
		Currency:      req.Currency,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, dto.ToBookingResponse(booking))
}

func (h *BookingHandler) GetBooking(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid booking id")
	}

	booking, err := h.bookings.GetBooking(c.Request().Context(), uint(id))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.ToBookingResponse(booking))
}

func (h *BookingHandler) ListNotifications(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid booking id")
	}

	notifications, err := h.notifications.FindByBookingID(c.Request().Context(), uint(id))
	if err != nil {
		return err
	}

	resp := make([]dto.NotificationResponse, 0, len(notifications))
	for i := range notifications {
		resp = append(resp, dto.ToNotificationResponse(&notifications[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *BookingHandler) CancelBooking(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid booking id")
	}

	booking, err := h.bookings.CancelBooking(c.Request().Context(), uint(id))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.ToBookingResponse(booking))
}
