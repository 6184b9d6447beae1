package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/venuebook/payment-service/internal/dto"
	"github.com/venuebook/payment-service/internal/middleware"
	"github.com/venuebook/payment-service/internal/service"
)

type SplitHandler struct {
	ledger service.LedgerService
}

func NewSplitHandler(ledger service.LedgerService) *SplitHandler {
	return &SplitHandler{ledger: ledger}
}

func (h *SplitHandler) CreateRequests(c echo.Context) error {
	bookingID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid booking id")
	}

	var req dto.CreateSplitRequestsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	participants := make([]service.Participant, len(req.Participants))
	for i, p := range req.Participants {
		participants[i] = service.Participant{
			Email:       p.Email,
			Phone:       p.Phone,
			AmountMinor: p.AmountMinor,
		}
	}

	created, err := h.ledger.CreateRequests(c.Request().Context(), uint(bookingID), middleware.CallerEmail(c), participants)
	if err != nil {
		return err
	}

	resp := make([]dto.SplitRequestResponse, len(created))
	for i := range created {
		resp[i] = dto.ToSplitRequestResponse(&created[i])
	}
	return c.JSON(http.StatusCreated, resp)
}

// Search lets a participant find pending requests addressed to their email
// or phone. Results are capped; there is no pagination.
func (h *SplitHandler) Search(c echo.Context) error {
	fragment := c.QueryParam("q")

	results, err := h.ledger.Search(c.Request().Context(), fragment, middleware.CallerEmail(c))
	if err != nil {
		return err
	}

	resp := make([]dto.SplitRequestResponse, len(results))
	for i := range results {
		resp[i] = dto.ToSplitRequestResponse(&results[i])
	}
	return c.JSON(http.StatusOK, resp)
}
