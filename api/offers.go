package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/skyfare/skyfare/internal/service/offers"
)

type OfferHandler struct {
	service offers.OfferUseCase
}

type quoteResponse struct {
	FlightID        int64   `json:"flight_id"`
	OriginalCents   int64   `json:"original_cents"`
	DiscountedCents int64   `json:"discounted_cents"`
	DiscountCents   int64   `json:"discount_cents"`
	DiscountPercent float64 `json:"discount_percent"`
	OfferID         *int64  `json:"offer_id,omitempty"`
	OfferTitle      string  `json:"offer_title,omitempty"`
}

func NewOfferHandler(service offers.OfferUseCase) *OfferHandler {
	return &OfferHandler{service: service}
}

func (h *OfferHandler) Register(router *gin.RouterGroup) {
	router.GET("/", h.list)
	router.GET("/quote/:flightID", h.quote)
}

func (h *OfferHandler) list(c *gin.Context) {
	offers, err := h.service.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, offers)
}

func (h *OfferHandler) quote(c *gin.Context) {
	flightID, err := strconv.ParseInt(c.Param("flightID"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid flight id"})
		return
	}
	quote, err := h.service.Quote(c.Request.Context(), flightID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	resp := quoteResponse{
		FlightID:        flightID,
		OriginalCents:   quote.OriginalCents,
		DiscountedCents: quote.DiscountedCents,
		DiscountCents:   quote.DiscountCents,
		DiscountPercent: quote.DiscountPercent,
	}
	if quote.AppliedOffer != nil {
		resp.OfferID = &quote.AppliedOffer.ID
		resp.OfferTitle = quote.AppliedOffer.Title
	}
	c.JSON(http.StatusOK, resp)
}
