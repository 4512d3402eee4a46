package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/skyfare/skyfare/internal/domain"
	"github.com/skyfare/skyfare/internal/service/booking"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

type createBookingRequest struct {
	FlightID   int64              `json:"flight_id"`
	SeatNumber int                `json:"seat_number"`
	Email      string             `json:"email"`
	Passengers []domain.Passenger `json:"passengers"`
}

type bookingResponse struct {
	Token           string             `json:"token"`
	ConfirmationID  string             `json:"confirmation_id"`
	Status          string             `json:"status"`
	PaymentStatus   string             `json:"payment_status"`
	ExpiresAt       string             `json:"expires_at"`
	FlightID        int64              `json:"flight_id"`
	SeatNumber      int                `json:"seat_number"`
	Email           string             `json:"email"`
	Passengers      []domain.Passenger `json:"passengers"`
	TotalPriceCents int64              `json:"total_price_cents"`
}

type cancelBookingResponse struct {
	bookingResponse
	RefundEligible bool `json:"refund_eligible"`
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("/", h.create)
	router.PUT("/:token", h.confirm)
	router.DELETE("/:token", h.cancel)
	router.GET("/confirmation/:id", h.getByConfirmation)
}

func toBookingResponse(b *domain.Booking) bookingResponse {
	return bookingResponse{
		Token:           b.Token,
		ConfirmationID:  b.ConfirmationID,
		Status:          string(b.Status),
		PaymentStatus:   string(b.PaymentStatus),
		ExpiresAt:       b.ExpiresAt.Format(time.RFC3339),
		FlightID:        b.FlightID,
		SeatNumber:      b.SeatNumber,
		Email:           b.Email,
		Passengers:      b.Passengers,
		TotalPriceCents: b.TotalPriceCents,
	}
}

func (h *BookingHandler) create(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.service.CreateBooking(c.Request.Context(), booking.CreateBookingInput{
		FlightID:   req.FlightID,
		SeatNumber: req.SeatNumber,
		Email:      req.Email,
		Passengers: req.Passengers,
	})
	if err != nil {
		if errors.Is(err, booking.ErrSeatLocked) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, toBookingResponse(created))
}

func (h *BookingHandler) confirm(c *gin.Context) {
	token := c.Param("token")
	confirmed, err := h.service.ConfirmBooking(c.Request.Context(), token)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, toBookingResponse(confirmed))
}

func (h *BookingHandler) cancel(c *gin.Context) {
	token := c.Param("token")
	cancelled, refund, err := h.service.CancelBooking(c.Request.Context(), token)
	if err != nil {
		if errors.Is(err, booking.ErrNotCancellable) || errors.Is(err, booking.ErrCancelInProgress) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, cancelBookingResponse{
		bookingResponse: toBookingResponse(cancelled),
		RefundEligible:  refund,
	})
}

func (h *BookingHandler) getByConfirmation(c *gin.Context) {
	id := c.Param("id")
	found, err := h.service.GetByConfirmation(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, toBookingResponse(found))
}
