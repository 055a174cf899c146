package http

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"parking-service/internal/config"
	"parking-service/internal/domain/parking"
	"parking-service/internal/service"
)

type Handler struct {
	parkingService *service.ParkingService
	config         *config.Config
	log            zerolog.Logger
}

func NewHandler(
	parkingService *service.ParkingService,
	cfg *config.Config,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		parkingService: parkingService,
		config:         cfg,
		log:            log,
	}
}

func (h *Handler) Register(r *gin.Engine, authMiddleware gin.HandlerFunc) {
	// Public endpoints
	public := r.Group("/api/v1")
	{
		public.POST("/parking/entries", h.vehicleEntry)
		public.POST("/parking/exits", h.vehicleExit)
		public.GET("/parking/spots/next", h.nextAvailableSpot)
		public.GET("/tickets", h.listTickets)
	}

	// Operator endpoints
	admin := r.Group("/api/v1/admin")
	admin.Use(authMiddleware)
	{
		admin.GET("/spots", h.listSpots)
		admin.PUT("/spots/:number/availability", h.overrideSpotAvailability)
	}
}

type entryRequest struct {
	VehicleType      string                 `json:"vehicle_type" binding:"required"`
	VehicleRegNumber string                 `json:"vehicle_reg_number" binding:"required"`
	VehicleAttrs     map[string]interface{} `json:"vehicle_attrs,omitempty"`
}

type exitRequest struct {
	VehicleRegNumber string `json:"vehicle_reg_number" binding:"required"`
}

type ticketResponse struct {
	ID               int64                  `json:"id"`
	Reference        string                 `json:"reference"`
	SpotNumber       int                    `json:"spot_number"`
	VehicleType      string                 `json:"vehicle_type"`
	VehicleRegNumber string                 `json:"vehicle_reg_number"`
	InTime           time.Time              `json:"in_time"`
	OutTime          *time.Time             `json:"out_time,omitempty"`
	Price            float64                `json:"price"`
	VehicleAttrs     map[string]interface{} `json:"vehicle_attrs,omitempty"`
}

func newTicketResponse(t *parking.Ticket) ticketResponse {
	return ticketResponse{
		ID:               t.ID,
		Reference:        t.Reference,
		SpotNumber:       t.Spot.Number,
		VehicleType:      string(t.Spot.Type),
		VehicleRegNumber: t.VehicleReg,
		InTime:           t.InTime,
		OutTime:          t.OutTime,
		Price:            math.Round(t.Price*100) / 100,
		VehicleAttrs:     t.VehicleAttrs,
	}
}

func (h *Handler) vehicleEntry(c *gin.Context) {
	var req entryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	vehicleType, err := parking.ParseVehicleType(req.VehicleType)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	result, err := h.parkingService.ProcessIncomingVehicle(c.Request.Context(), parking.EntryRequest{
		VehicleType:  vehicleType,
		VehicleReg:   req.VehicleRegNumber,
		VehicleAttrs: req.VehicleAttrs,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"ticket":         newTicketResponse(result.Ticket),
		"recurring_user": result.RecurringUser,
	})
}

func (h *Handler) vehicleExit(c *gin.Context) {
	var req exitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	result, err := h.parkingService.ProcessExitingVehicle(c.Request.Context(), req.VehicleRegNumber)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ticket":         newTicketResponse(result.Ticket),
		"recurring_user": result.RecurringUser,
	})
}

func (h *Handler) nextAvailableSpot(c *gin.Context) {
	selection, err := strconv.Atoi(strings.TrimSpace(c.Query("selection")))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("selection parameter must be an integer"))
		return
	}

	spot, err := h.parkingService.GetNextParkingNumberIfAvailable(c.Request.Context(), selection)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(spot))
}

func (h *Handler) listTickets(c *gin.Context) {
	reg := strings.TrimSpace(c.Query("vehicle_reg_number"))
	if reg == "" {
		c.JSON(http.StatusBadRequest, errorResponse("vehicle_reg_number parameter is required"))
		return
	}

	limit := 20
	if l := c.Query("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if limit > 100 {
		limit = 100
	}

	tickets, err := h.parkingService.TicketHistory(c.Request.Context(), reg, limit)
	if err != nil {
		h.handleError(c, err)
		return
	}

	result := make([]ticketResponse, 0, len(tickets))
	for i := range tickets {
		result = append(result, newTicketResponse(&tickets[i]))
	}
	c.JSON(http.StatusOK, successResponse(result))
}

func (h *Handler) listSpots(c *gin.Context) {
	spots, err := h.parkingService.SpotInventory(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(spots))
}

type availabilityRequest struct {
	Available *bool `json:"available" binding:"required"`
}

func (h *Handler) overrideSpotAvailability(c *gin.Context) {
	number, err := strconv.Atoi(c.Param("number"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("spot number must be an integer"))
		return
	}

	var req availabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	changed := h.parkingService.OverrideSpotAvailability(c.Request.Context(), number, *req.Available)
	c.JSON(http.StatusOK, gin.H{
		"spot_number": number,
		"available":   *req.Available,
		"changed":     changed,
	})
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, parking.ErrUnknownVehicleType),
		errors.Is(err, parking.ErrInvalidSelection):
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, errorResponse(err.Error()))
	case errors.Is(err, service.ErrNoSpotAvailable),
		errors.Is(err, service.ErrActiveTicketExists):
		c.JSON(http.StatusConflict, errorResponse(err.Error()))
	default:
		h.log.Error().Err(err).Msg("handler error")
		c.JSON(http.StatusInternalServerError, errorResponse("internal error"))
	}
}

func successResponse(data interface{}) gin.H {
	return gin.H{
		"data": data,
	}
}

func errorResponse(message string) gin.H {
	return gin.H{
		"error": message,
	}
}
