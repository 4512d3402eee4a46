package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/skyfare/skyfare/internal/domain"
	"github.com/skyfare/skyfare/internal/service/booking"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockBookingUseCase struct {
	mock.Mock
}

func (m *MockBookingUseCase) CreateBooking(ctx context.Context, input booking.CreateBookingInput) (*domain.Booking, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) ConfirmBooking(ctx context.Context, token string) (*domain.Booking, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) CancelBooking(ctx context.Context, token string) (*domain.Booking, bool, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*domain.Booking), args.Bool(1), args.Error(2)
}

func (m *MockBookingUseCase) GetByConfirmation(ctx context.Context, confirmationID string) (*domain.Booking, error) {
	args := m.Called(ctx, confirmationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) ExpirePendingBookings(ctx context.Context) ([]domain.Booking, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func TestBookingHandler_create(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	input := booking.CreateBookingInput{
		FlightID:   1,
		SeatNumber: 10,
		Email:      "test@example.com",
		Passengers: []domain.Passenger{{FirstName: "Jamie", LastName: "Doe"}},
	}
	body, _ := json.Marshal(input)
	c.Request = httptest.NewRequest("POST", "/bookings", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	created := &domain.Booking{
		ID:              1,
		ConfirmationID:  "AB12CD34",
		FlightID:        1,
		SeatNumber:      10,
		Token:           "token123",
		Status:          domain.BookingStatusPending,
		Email:           "test@example.com",
		Passengers:      input.Passengers,
		TotalPriceCents: 9900,
	}

	mockService.On("CreateBooking", c.Request.Context(), input).Return(created, nil)

	handler.create(c)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp bookingResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "token123", resp.Token)
	assert.Equal(t, "AB12CD34", resp.ConfirmationID)
	assert.Equal(t, int64(9900), resp.TotalPriceCents)

	mockService.AssertExpectations(t)
}

func TestBookingHandler_create_SeatLockedConflict(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	input := booking.CreateBookingInput{
		FlightID:   1,
		SeatNumber: 10,
		Email:      "test@example.com",
		Passengers: []domain.Passenger{{FirstName: "Jamie", LastName: "Doe"}},
	}
	body, _ := json.Marshal(input)
	c.Request = httptest.NewRequest("POST", "/bookings", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	mockService.On("CreateBooking", c.Request.Context(), input).Return(nil, booking.ErrSeatLocked)

	handler.create(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	mockService.AssertExpectations(t)
}

func TestBookingHandler_create_BadJSON(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("POST", "/bookings", bytes.NewReader([]byte("{not json")))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "CreateBooking")
}

func TestBookingHandler_confirm(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("PUT", "/bookings/token123", nil)
	c.Params = gin.Params{{Key: "token", Value: "token123"}}

	confirmed := &domain.Booking{
		ID:            1,
		FlightID:      1,
		SeatNumber:    10,
		Token:         "token123",
		Status:        domain.BookingStatusConfirmed,
		PaymentStatus: domain.PaymentStatusPaid,
	}

	mockService.On("ConfirmBooking", c.Request.Context(), "token123").Return(confirmed, nil)

	handler.confirm(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp bookingResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, string(domain.BookingStatusConfirmed), resp.Status)
	assert.Equal(t, string(domain.PaymentStatusPaid), resp.PaymentStatus)

	mockService.AssertExpectations(t)
}

func TestBookingHandler_cancel_Refund(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("DELETE", "/bookings/token123", nil)
	c.Params = gin.Params{{Key: "token", Value: "token123"}}

	cancelled := &domain.Booking{
		ID:            1,
		FlightID:      1,
		SeatNumber:    10,
		Token:         "token123",
		Status:        domain.BookingStatusCancelled,
		PaymentStatus: domain.PaymentStatusRefunded,
	}

	mockService.On("CancelBooking", c.Request.Context(), "token123").Return(cancelled, true, nil)

	handler.cancel(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Status         string `json:"status"`
		RefundEligible bool   `json:"refund_eligible"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, string(domain.BookingStatusCancelled), resp.Status)
	assert.True(t, resp.RefundEligible)

	mockService.AssertExpectations(t)
}

func TestBookingHandler_cancel_NotCancellableConflict(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("DELETE", "/bookings/token123", nil)
	c.Params = gin.Params{{Key: "token", Value: "token123"}}

	mockService.On("CancelBooking", c.Request.Context(), "token123").Return(nil, false, booking.ErrNotCancellable)

	handler.cancel(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	mockService.AssertExpectations(t)
}

func TestBookingHandler_cancel_InProgressConflict(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("DELETE", "/bookings/token123", nil)
	c.Params = gin.Params{{Key: "token", Value: "token123"}}

	mockService.On("CancelBooking", c.Request.Context(), "token123").Return(nil, false, booking.ErrCancelInProgress)

	handler.cancel(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	mockService.AssertExpectations(t)
}

func TestBookingHandler_getByConfirmation(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/bookings/confirmation/AB12CD34", nil)
	c.Params = gin.Params{{Key: "id", Value: "AB12CD34"}}

	found := &domain.Booking{ID: 1, ConfirmationID: "AB12CD34", Status: domain.BookingStatusConfirmed}
	mockService.On("GetByConfirmation", c.Request.Context(), "AB12CD34").Return(found, nil)

	handler.getByConfirmation(c)

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}

func TestBookingHandler_getByConfirmation_NotFound(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/bookings/confirmation/NOPE", nil)
	c.Params = gin.Params{{Key: "id", Value: "NOPE"}}

	mockService.On("GetByConfirmation", c.Request.Context(), "NOPE").Return(nil, errors.New("booking not found"))

	handler.getByConfirmation(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	mockService.AssertExpectations(t)
}
