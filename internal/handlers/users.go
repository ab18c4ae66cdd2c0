package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"messenger-service/internal/models"
)

// UserHandler serves user registration and listing.
type UserHandler struct {
	users UserService
}

func NewUserHandler(users UserService) *UserHandler {
	return &UserHandler{users: users}
}

// CreateUser registers a user.
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req struct {
		Username  string  `json:"username" binding:"required"`
		Email     string  `json:"email" binding:"required"`
		AvatarURL *string `json:"avatar_url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.CreateUser(c.Request.Context(), models.NewUser{
		Username:  req.Username,
		Email:     req.Email,
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		respondError(c, err, "could not create user")
		return
	}

	c.JSON(http.StatusCreated, user)
}

// ListUsers returns every registered user.
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.users.ListUsers(c.Request.Context())
	if err != nil {
		respondError(c, err, "failed to load users")
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}
