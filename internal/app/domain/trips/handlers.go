package trips

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/FACorreiaa/voyager/internal/app/domain/billing"
	"github.com/FACorreiaa/voyager/internal/app/models"
)

type TripsHandlers struct {
	service *Service
	logger  *zap.Logger
}

func NewTripsHandlers(service *Service, logger *zap.Logger) *TripsHandlers {
	return &TripsHandlers{
		service: service,
		logger:  logger,
	}
}

// HandleList returns all trips, newest first.
func (h *TripsHandlers) HandleList(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"trips": h.service.List()})
}

// HandleGet returns a single trip.
func (h *TripsHandlers) HandleGet(c *gin.Context) {
	id, ok := h.tripID(c)
	if !ok {
		return
	}

	trip, err := h.service.Get(id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, trip)
}

// HandleDelete removes a trip.
func (h *TripsHandlers) HandleDelete(c *gin.Context) {
	id, ok := h.tripID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// HandleGenerate creates a trip from a TripRequest, subject to gating.
func (h *TripsHandlers) HandleGenerate(c *gin.Context) {
	var req models.TripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	h.logger.Info("Generation request received",
		zap.String("departure", req.DepartureLocation),
		zap.Strings("destinations", req.Destinations),
	)

	decision, err := h.service.Generate(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.respondDecision(c, decision, http.StatusCreated)
}

type editRequest struct {
	Instruction string `json:"instruction"`
}

// HandleEdit applies a free-text AI edit to a trip, subject to gating.
func (h *TripsHandlers) HandleEdit(c *gin.Context) {
	id, ok := h.tripID(c)
	if !ok {
		return
	}

	var req editRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	decision, err := h.service.Edit(c.Request.Context(), id, req.Instruction)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.respondDecision(c, decision, http.StatusOK)
}

// HandleConfirm executes a payment-gated request after payment success.
func (h *TripsHandlers) HandleConfirm(c *gin.Context) {
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request id"})
		return
	}

	trip, err := h.service.ConfirmRequest(c.Request.Context(), requestID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, trip)
}

// HandleCancel declines a pending gated request.
func (h *TripsHandlers) HandleCancel(c *gin.Context) {
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request id"})
		return
	}

	if err := h.service.CancelRequest(requestID); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// HandleInsertActivity adds a manual activity to one day of a trip.
func (h *TripsHandlers) HandleInsertActivity(c *gin.Context) {
	id, ok := h.tripID(c)
	if !ok {
		return
	}
	day, err := strconv.Atoi(c.Param("day"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid day index"})
		return
	}

	var activity models.Activity
	if err := c.ShouldBindJSON(&activity); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	trip, err := h.service.InsertActivity(c.Request.Context(), id, day, activity)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, trip)
}

// HandleBookingLink resolves the booking link for one activity.
func (h *TripsHandlers) HandleBookingLink(c *gin.Context) {
	id, ok := h.tripID(c)
	if !ok {
		return
	}
	day, err := strconv.Atoi(c.Param("day"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid day index"})
		return
	}
	idx, err := strconv.Atoi(c.Param("idx"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid activity index"})
		return
	}

	link, found, err := h.service.BookingLink(id, day, idx)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookingUrl": link, "available": found})
}

func (h *TripsHandlers) tripID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid trip id"})
		return uuid.Nil, false
	}
	return id, true
}

// respondDecision renders a gate decision: the committed trip when
// authorized, payment details when the request is parked.
func (h *TripsHandlers) respondDecision(c *gin.Context, decision billing.Decision, okStatus int) {
	if decision.Status == billing.StatusAwaitingPayment {
		c.JSON(http.StatusPaymentRequired, decision)
		return
	}
	c.JSON(okStatus, decision.Trip)
}

func (h *TripsHandlers) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrValidation), errors.Is(err, models.ErrRange):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrGeneration):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrPaymentRequired):
		c.JSON(http.StatusPaymentRequired, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrRequestClosed):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.logger.Error("Unhandled error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
