package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"courier/internal/domain"
	"courier/internal/middleware"
	"courier/internal/service"
)

// DeliveryHandler handles HTTP requests for client-facing delivery operations.
type DeliveryHandler struct {
	deliveryService  *service.DeliveryService
	lifecycleService *service.LifecycleService
	paymentService   *service.PaymentService
}

// NewDeliveryHandler creates a new DeliveryHandler.
func NewDeliveryHandler(
	deliveryService *service.DeliveryService,
	lifecycleService *service.LifecycleService,
	paymentService *service.PaymentService,
) *DeliveryHandler {
	return &DeliveryHandler{
		deliveryService:  deliveryService,
		lifecycleService: lifecycleService,
		paymentService:   paymentService,
	}
}

// EstimatePriceRequest is the HTTP request body for a price quote.
type EstimatePriceRequest struct {
	PickupAddress   string  `json:"pickup_address"`
	DeliveryAddress string  `json:"delivery_address"`
	PackageSize     string  `json:"package_size"`
	PackageWeight   float64 `json:"package_weight"`
	DeliveryType    string  `json:"delivery_type"`
}

// PriceBreakdownResponse itemizes a quoted price.
type PriceBreakdownResponse struct {
	BasePrice      float64 `json:"base_price"`
	WeightCharge   float64 `json:"weight_charge"`
	DistanceCharge float64 `json:"distance_charge"`
	TypeMultiplier float64 `json:"type_multiplier"`
}

// EstimatePriceResponse is the HTTP response for a price quote.
type EstimatePriceResponse struct {
	Price     float64                `json:"price"`
	Breakdown PriceBreakdownResponse `json:"breakdown"`
}

// EstimatePrice handles POST /v1/deliveries/estimate-price
func (h *DeliveryHandler) EstimatePrice(c *gin.Context) {
	var req EstimatePriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	breakdown, err := service.EstimatePrice(
		domain.PackageSize(req.PackageSize),
		req.PackageWeight,
		domain.DeliveryType(req.DeliveryType),
	)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, EstimatePriceResponse{
		Price: breakdown.Total,
		Breakdown: PriceBreakdownResponse{
			BasePrice:      breakdown.BasePrice,
			WeightCharge:   breakdown.WeightCharge,
			DistanceCharge: breakdown.DistanceCharge,
			TypeMultiplier: breakdown.TypeMultiplier,
		},
	})
}

// CreateDeliveryRequest is the HTTP request body for creating a delivery.
type CreateDeliveryRequest struct {
	PickupAddress      string `json:"pickup_address"`
	PickupContactName  string `json:"pickup_contact_name"`
	PickupContactPhone string `json:"pickup_contact_phone"`

	DeliveryAddress      string `json:"delivery_address"`
	DeliveryContactName  string `json:"delivery_contact_name"`
	DeliveryContactPhone string `json:"delivery_contact_phone"`

	PackageSize   string  `json:"package_size"`
	PackageWeight float64 `json:"package_weight"`
	Fragile       bool    `json:"fragile"`
	DeliveryType  string  `json:"delivery_type"`
	ScheduledAt   string  `json:"scheduled_at,omitempty"` // RFC 3339
	Instructions  string  `json:"instructions,omitempty"`
	PaymentMethod string  `json:"payment_method,omitempty"`
}

// CreateDeliveryResponse is the HTTP response for creating a delivery.
type CreateDeliveryResponse struct {
	ID             string  `json:"id"`
	TrackingNumber string  `json:"tracking_number"`
	Price          float64 `json:"price"`
	Status         string  `json:"status"`
}

// Create handles POST /v1/client/deliveries
func (h *DeliveryHandler) Create(c *gin.Context) {
	user := middleware.UserFromContext(c)

	var req CreateDeliveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	var scheduledAt time.Time
	if req.ScheduledAt != "" {
		parsed, err := time.Parse(time.RFC3339, req.ScheduledAt)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid scheduled_at, expected RFC 3339"})
			return
		}
		scheduledAt = parsed
	}

	delivery, err := h.deliveryService.Create(c.Request.Context(), service.CreateDeliveryRequest{
		ClientID:             user.ID,
		PickupAddress:        req.PickupAddress,
		PickupContactName:    req.PickupContactName,
		PickupContactPhone:   req.PickupContactPhone,
		DeliveryAddress:      req.DeliveryAddress,
		DeliveryContactName:  req.DeliveryContactName,
		DeliveryContactPhone: req.DeliveryContactPhone,
		PackageSize:          domain.PackageSize(req.PackageSize),
		PackageWeight:        req.PackageWeight,
		Fragile:              req.Fragile,
		DeliveryType:         domain.DeliveryType(req.DeliveryType),
		ScheduledAt:          scheduledAt,
		Instructions:         req.Instructions,
		PaymentMethod:        req.PaymentMethod,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, CreateDeliveryResponse{
		ID:             delivery.ID,
		TrackingNumber: delivery.TrackingNumber,
		Price:          delivery.Price,
		Status:         string(delivery.Status),
	})
}

// DeliveryResponse is the HTTP representation of a delivery.
type DeliveryResponse struct {
	ID             string  `json:"id"`
	TrackingNumber string  `json:"tracking_number"`
	ClientID       string  `json:"client_id"`
	DriverID       string  `json:"driver_id,omitempty"`
	PickupAddress  string  `json:"pickup_address"`
	DeliveryAddr   string  `json:"delivery_address"`
	PackageSize    string  `json:"package_size"`
	PackageWeight  float64 `json:"package_weight"`
	Fragile        bool    `json:"fragile"`
	DeliveryType   string  `json:"delivery_type"`
	Price          float64 `json:"price"`
	PaymentStatus  string  `json:"payment_status"`
	Status         string  `json:"status"`
	CreatedAt      string  `json:"created_at"`
}

func toDeliveryResponse(d *domain.Delivery) DeliveryResponse {
	return DeliveryResponse{
		ID:             d.ID,
		TrackingNumber: d.TrackingNumber,
		ClientID:       d.ClientID,
		DriverID:       d.DriverID,
		PickupAddress:  d.PickupAddress,
		DeliveryAddr:   d.DeliveryAddress,
		PackageSize:    string(d.PackageSize),
		PackageWeight:  d.PackageWeight,
		Fragile:        d.Fragile,
		DeliveryType:   string(d.DeliveryType),
		Price:          d.Price,
		PaymentStatus:  string(d.PaymentStatus),
		Status:         string(d.Status),
		CreatedAt:      d.CreatedAt.Format(time.RFC3339),
	}
}

// Get handles GET /v1/client/deliveries/:id
func (h *DeliveryHandler) Get(c *gin.Context) {
	user := middleware.UserFromContext(c)

	delivery, err := h.deliveryService.GetForActor(c.Request.Context(), c.Param("id"), user)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toDeliveryResponse(delivery))
}

// List handles GET /v1/client/deliveries
func (h *DeliveryHandler) List(c *gin.Context) {
	user := middleware.UserFromContext(c)

	deliveries, err := h.deliveryService.ListForClient(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]DeliveryResponse, 0, len(deliveries))
	for _, d := range deliveries {
		response = append(response, toDeliveryResponse(d))
	}
	respondJSON(c, http.StatusOK, response)
}

// Cancel handles POST /v1/client/deliveries/:id/cancel
func (h *DeliveryHandler) Cancel(c *gin.Context) {
	user := middleware.UserFromContext(c)

	delivery, err := h.lifecycleService.Cancel(c.Request.Context(), c.Param("id"), user)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{
		"message":  "delivery cancelled",
		"delivery": toDeliveryResponse(delivery),
	})
}

// Pay handles POST /v1/client/deliveries/:id/pay
func (h *DeliveryHandler) Pay(c *gin.Context) {
	user := middleware.UserFromContext(c)

	delivery, err := h.paymentService.Pay(c.Request.Context(), c.Param("id"), user)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toDeliveryResponse(delivery))
}

// StatusEventResponse is one entry of a tracking history.
type StatusEventResponse struct {
	Status    string `json:"status"`
	Location  string `json:"location,omitempty"`
	Notes     string `json:"notes,omitempty"`
	CreatedAt string `json:"created_at"`
}

// TrackResponse is the public tracking response.
type TrackResponse struct {
	TrackingNumber string                `json:"tracking_number"`
	Status         string                `json:"status"`
	StatusHistory  []StatusEventResponse `json:"status_history"`
}

// Track handles GET /v1/deliveries/track?tracking_number=
func (h *DeliveryHandler) Track(c *gin.Context) {
	result, err := h.deliveryService.Track(c.Request.Context(), c.Query("tracking_number"))
	if err != nil {
		respondError(c, err)
		return
	}

	response := TrackResponse{
		TrackingNumber: result.TrackingNumber,
		Status:         string(result.Status),
		StatusHistory:  make([]StatusEventResponse, 0, len(result.History)),
	}
	for _, e := range result.History {
		response.StatusHistory = append(response.StatusHistory, StatusEventResponse{
			Status:    string(e.Status),
			Location:  e.Location,
			Notes:     e.Notes,
			CreatedAt: e.CreatedAt.Format(time.RFC3339),
		})
	}

	respondJSON(c, http.StatusOK, response)
}
