package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// AuthHandler handles admin login
type AuthHandler struct {
	auth Authenticator
	log  zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(auth Authenticator, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		auth: auth,
		log:  log.With().Str("handler", "auth").Logger(),
	}
}

// Login handles POST /v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "username and password are required"})
		return
	}
	if h.auth == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "message": "login is not configured"})
		return
	}

	token, err := h.auth.Login(req.Username, req.Password)
	if err != nil {
		h.log.Warn().Str("username", req.Username).Str("client_ip", c.ClientIP()).Msg("Failed login attempt")
		c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "message": "invalid username or password"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":         true,
		"message":    "Logged in",
		"token":      token,
		"token_type": "Bearer",
	})
}
