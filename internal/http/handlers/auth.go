package handlers

import (
	"net/http"

	"spot_difference/internal/domain"

	"github.com/gin-gonic/gin"
)

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register создает игрока
func (h *Handler) Register(c *gin.Context) {
	var req credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	ctx := c.Request.Context()
	if err := h.Auth.Register(ctx, req.Username, req.Password); err != nil {
		writeError(c, err)
		return
	}

	h.Audit.LogWithRequest(ctx, req.Username, domain.AuditActionRegister, domain.AuditCategoryAuth, c.ClientIP(), c.Request.UserAgent(), nil)
	c.JSON(http.StatusCreated, gin.H{"message": "user registered"})
}

// Login выдает JWT на час
func (h *Handler) Login(c *gin.Context) {
	var req credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	ctx := c.Request.Context()
	token, err := h.Auth.Login(ctx, req.Username, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}

	h.Audit.LogWithRequest(ctx, req.Username, domain.AuditActionLogin, domain.AuditCategoryAuth, c.ClientIP(), c.Request.UserAgent(), nil)
	c.JSON(http.StatusOK, gin.H{"token": token})
}
