package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"courier/internal/domain"
	"courier/internal/middleware"
	"courier/internal/repository"
)

// UserHandler handles HTTP requests for accounts and their notifications.
type UserHandler struct {
	userRepo         repository.UserRepository
	notificationRepo repository.NotificationRepository
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userRepo repository.UserRepository, notificationRepo repository.NotificationRepository) *UserHandler {
	return &UserHandler{userRepo: userRepo, notificationRepo: notificationRepo}
}

// RegisterRequest is the HTTP request body for registration.
type RegisterRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// UserResponse is the HTTP response for user data.
type UserResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
	APIToken string `json:"api_token,omitempty"`
}

// RegisterClient handles POST /v1/users/register
func (h *UserHandler) RegisterClient(c *gin.Context) {
	h.register(c, domain.RoleClient)
}

// RegisterDriver handles POST /v1/drivers/register
// New drivers start unverified and unavailable; verification is an
// out-of-band admin action.
func (h *UserHandler) RegisterDriver(c *gin.Context) {
	h.register(c, domain.RoleDriver)
}

func (h *UserHandler) register(c *gin.Context, role domain.Role) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if req.Name == "" || req.Phone == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "name and phone are required"})
		return
	}

	existing, err := h.userRepo.GetByPhone(c.Request.Context(), req.Phone)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		respondError(c, err)
		return
	}

	if existing != nil {
		c.JSON(http.StatusConflict, gin.H{
			"message": "user already registered",
			"user":    UserResponse{ID: existing.ID, Name: existing.Name, Phone: existing.Phone, Role: string(existing.Role)},
		})
		return
	}

	user := &domain.User{
		ID:       uuid.New().String(),
		Name:     req.Name,
		Phone:    req.Phone,
		Role:     role,
		APIToken: newAPIToken(),
	}

	if err := h.userRepo.Create(c.Request.Context(), user); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, UserResponse{
		ID:       user.ID,
		Name:     user.Name,
		Phone:    user.Phone,
		Role:     string(user.Role),
		APIToken: user.APIToken,
	})
}

// newAPIToken mints an opaque bearer token for a new account.
func newAPIToken() string {
	return "tok_" + strings.ReplaceAll(uuid.New().String(), "-", "")
}

// NotificationResponse is the HTTP representation of a notification.
type NotificationResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Message     string `json:"message"`
	Type        string `json:"type"`
	ReferenceID string `json:"reference_id,omitempty"`
	Read        bool   `json:"read"`
	CreatedAt   string `json:"created_at"`
}

// ListNotifications handles GET /v1/notifications
func (h *UserHandler) ListNotifications(c *gin.Context) {
	user := middleware.UserFromContext(c)

	notifications, err := h.notificationRepo.ListByUser(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		response = append(response, NotificationResponse{
			ID:          n.ID,
			Title:       n.Title,
			Message:     n.Message,
			Type:        string(n.Type),
			ReferenceID: n.ReferenceID,
			Read:        !n.ReadAt.IsZero(),
			CreatedAt:   n.CreatedAt.Format(time.RFC3339),
		})
	}
	respondJSON(c, http.StatusOK, response)
}
