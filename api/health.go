package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	creds Credentials
}

func NewHealthHandler(creds Credentials) *HealthHandler {
	return &HealthHandler{creds: creds}
}

func (h *HealthHandler) Register(router *gin.RouterGroup) {
	router.GET("/health", h.health)
}

func (h *HealthHandler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"credentials": h.creds,
	})
}
