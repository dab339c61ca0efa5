package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/wearvault/storefront-service/internal/domain"
	"github.com/wearvault/storefront-service/internal/service"
	"github.com/wearvault/storefront-service/pkg/middleware"
)

type UserHandler struct {
	users  *service.UserService
	logger *zap.Logger
}

func NewUserHandler(users *service.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		users:  users,
		logger: logger,
	}
}

func (h *UserHandler) Signup(c *gin.Context) {
	var req domain.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	resp, err := h.users.Signup(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrUserExists) {
			c.JSON(http.StatusConflict, gin.H{"error": "User already exists"})
			return
		}

		h.logger.Error("Signup failed", zap.String("email", req.Email), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *UserHandler) Login(c *gin.Context) {
	var req domain.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	resp, err := h.users.Login(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
			return
		}

		h.logger.Error("Login failed", zap.String("email", req.Email), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log in"})
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	profile, err := h.users.GetProfile(c.Request.Context(), identity)
	if err != nil {
		if errors.Is(err, service.ErrProfileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
			return
		}

		h.logger.Error("Failed to get profile",
			zap.String("user_id", identity.ID),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

func (h *UserHandler) AddToWishlist(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req domain.WishlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	if err := h.users.AddToWishlist(c.Request.Context(), identity, req.ProductID); err != nil {
		h.writeWishlistError(c, identity.ID, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *UserHandler) RemoveFromWishlist(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	productID := c.Param("productId")
	if err := h.users.RemoveFromWishlist(c.Request.Context(), identity, productID); err != nil {
		h.writeWishlistError(c, identity.ID, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *UserHandler) writeWishlistError(c *gin.Context, userID string, err error) {
	if errors.Is(err, service.ErrProfileNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
		return
	}

	h.logger.Error("Failed to update wishlist",
		zap.String("user_id", userID),
		zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update wishlist"})
}
