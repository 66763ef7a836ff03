package auth

import (
	"errors"
	"net/http"
	"strings"

	apperrors "staff-absence-backend/internal/errors"
	"staff-absence-backend/internal/logger"

	"github.com/gin-gonic/gin"
)

// AuthHandler handles HTTP requests for authentication
type AuthHandler struct {
	service *AuthService
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(service *AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

// Login handles POST /api/auth/login
// @Summary Admin login
// @Description Exchange the admin username and password for a dashboard token
// @Tags authentication
// @Accept json
// @Produce json
// @Param credentials body LoginRequest true "Admin credentials"
// @Success 200 {object} LoginResponse "Signed access token"
// @Failure 400 {object} map[string]interface{} "Invalid request body"
// @Failure 401 {object} map[string]interface{} "Invalid username or password"
// @Failure 503 {object} map[string]interface{} "Admin login is not configured"
// @Router /api/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if !h.service.Enabled() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Admin login is not configured"})
		return
	}

	response, err := h.service.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidCredentials) {
			logger.WithContext(c.Request.Context()).WithField("username", req.Username).Warn("Failed admin login")
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log in", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, response)
}

// Validate handles GET /api/auth/validate
// @Summary Validate token
// @Description Validate a dashboard token and return its claims
// @Tags authentication
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Success 200 {object} AuthValidateResponse "Token is valid"
// @Failure 401 {object} map[string]interface{} "Missing or invalid token"
// @Router /api/auth/validate [get]
func (h *AuthHandler) Validate(c *gin.Context) {
	authHeader := c.GetHeader("Authorization")
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if authHeader == "" || tokenString == authHeader {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
		return
	}

	claims, err := h.service.ValidateJWT(tokenString)
	if err != nil {
		c.JSON(http.StatusUnauthorized, AuthValidateResponse{Valid: false})
		return
	}

	c.JSON(http.StatusOK, AuthValidateResponse{Valid: true, Claims: claims})
}
