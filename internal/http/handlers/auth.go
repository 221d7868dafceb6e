package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ledgerbook/backend/internal/auth"
)

type AuthHandler struct {
	authService *auth.Service
	cookieCfg   auth.CookieConfig
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func NewAuthHandler(authService *auth.Service, cookieCfg auth.CookieConfig) *AuthHandler {
	return &AuthHandler{authService: authService, cookieCfg: cookieCfg}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	token, err := h.authService.Login(req.Username, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication_failed"})
		return
	}

	auth.SetSessionCookie(c.Writer, h.cookieCfg, token, h.authService.SessionTTL())
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	auth.ClearSessionCookie(c.Writer, h.cookieCfg)
	c.JSON(http.StatusOK, gin.H{"success": true})
}
