package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"courier/internal/domain"
	"courier/internal/middleware"
	"courier/internal/repository"
	"courier/internal/service"
)

// DriverHandler handles HTTP requests for driver-facing operations.
type DriverHandler struct {
	deliveryService  *service.DeliveryService
	claimService     *service.ClaimService
	lifecycleService *service.LifecycleService
	earningsService  *service.EarningsService
	userRepo         repository.UserRepository
}

// NewDriverHandler creates a new DriverHandler.
func NewDriverHandler(
	deliveryService *service.DeliveryService,
	claimService *service.ClaimService,
	lifecycleService *service.LifecycleService,
	earningsService *service.EarningsService,
	userRepo repository.UserRepository,
) *DriverHandler {
	return &DriverHandler{
		deliveryService:  deliveryService,
		claimService:     claimService,
		lifecycleService: lifecycleService,
		earningsService:  earningsService,
		userRepo:         userRepo,
	}
}

// ListAvailable handles GET /v1/driver/deliveries
// It returns unclaimed pending deliveries a driver can accept.
func (h *DriverHandler) ListAvailable(c *gin.Context) {
	deliveries, err := h.deliveryService.ListAvailable(c.Request.Context())
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

// ListMine handles GET /v1/driver/deliveries/mine
func (h *DriverHandler) ListMine(c *gin.Context) {
	user := middleware.UserFromContext(c)

	deliveries, err := h.deliveryService.ListForDriver(c.Request.Context(), user.ID)
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

// Accept handles POST /v1/driver/deliveries/:id/accept
// At most one driver wins a given delivery; later attempts get 409.
func (h *DriverHandler) Accept(c *gin.Context) {
	user := middleware.UserFromContext(c)

	delivery, err := h.claimService.Claim(c.Request.Context(), c.Param("id"), user)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{
		"message":  "delivery accepted",
		"delivery": toDeliveryResponse(delivery),
	})
}

// UpdateStatusRequest is the HTTP request body for a status transition.
type UpdateStatusRequest struct {
	Status   string `json:"status"`
	Location string `json:"location,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

// UpdateStatus handles POST /v1/driver/deliveries/:id/status
func (h *DriverHandler) UpdateStatus(c *gin.Context) {
	user := middleware.UserFromContext(c)

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	delivery, err := h.lifecycleService.Advance(c.Request.Context(), service.AdvanceRequest{
		DeliveryID: c.Param("id"),
		Status:     domain.DeliveryStatus(req.Status),
		Driver:     user,
		Location:   req.Location,
		Notes:      req.Notes,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toDeliveryResponse(delivery))
}

// EarningResponse is the HTTP representation of a driver earning.
type EarningResponse struct {
	ID         string  `json:"id"`
	DeliveryID string  `json:"delivery_id"`
	Amount     float64 `json:"amount"`
	Commission float64 `json:"commission"`
	NetAmount  float64 `json:"net_amount"`
	Status     string  `json:"status"`
	CreatedAt  string  `json:"created_at"`
}

// EarningsResponse is the HTTP response for a driver's earnings listing.
type EarningsResponse struct {
	Earnings []EarningResponse `json:"earnings"`
	TotalNet float64           `json:"total_net"`
}

// Earnings handles GET /v1/driver/earnings
func (h *DriverHandler) Earnings(c *gin.Context) {
	user := middleware.UserFromContext(c)

	earnings, err := h.earningsService.ListForDriver(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	response := EarningsResponse{Earnings: make([]EarningResponse, 0, len(earnings))}
	for _, e := range earnings {
		response.Earnings = append(response.Earnings, EarningResponse{
			ID:         e.ID,
			DeliveryID: e.DeliveryID,
			Amount:     e.Amount,
			Commission: e.Commission,
			NetAmount:  e.NetAmount,
			Status:     string(e.Status),
			CreatedAt:  e.CreatedAt.Format(time.RFC3339),
		})
		response.TotalNet += e.NetAmount
	}
	respondJSON(c, http.StatusOK, response)
}

// SetAvailabilityRequest is the HTTP request body for toggling availability.
type SetAvailabilityRequest struct {
	Available bool `json:"available"`
}

// SetAvailability handles POST /v1/driver/availability
func (h *DriverHandler) SetAvailability(c *gin.Context) {
	user := middleware.UserFromContext(c)

	var req SetAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if err := h.userRepo.SetAvailability(c.Request.Context(), user.ID, req.Available); err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{"available": req.Available})
}
