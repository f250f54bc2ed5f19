package handlers

import (
	"errors"
	"net/http"

	"spot_difference/internal/catalog"
	"spot_difference/internal/domain"
	"spot_difference/internal/game"
	"spot_difference/internal/http/middleware"
	"spot_difference/internal/leaderboard"
	"spot_difference/internal/logger"
	"spot_difference/internal/service"

	"github.com/gin-gonic/gin"
)

// Handler - зависимости HTTP API
type Handler struct {
	Sessions *service.SessionService
	Auth     *service.AuthService
	Audit    *service.AuditService
	Catalogs catalog.Store
	Board    *leaderboard.Leaderboard

	// отдавать координаты отличий клиенту (старое поведение)
	RevealDifferences bool
	Version           string
}

func NewHandler(sessions *service.SessionService, auth *service.AuthService, audit *service.AuditService) *Handler {
	return &Handler{
		Sessions: sessions,
		Auth:     auth,
		Audit:    audit,
		Catalogs: sessions.Catalogs(),
		Board:    sessions.Leaderboard(),
		Version:  "dev",
	}
}

func getUsername(c *gin.Context) (string, bool) {
	return middleware.GetUsername(c)
}

// statusFor переводит ошибки сервисов в HTTP статус
func statusFor(err error) int {
	switch {
	case errors.Is(err, catalog.ErrNotFound), errors.Is(err, service.ErrNoSession):
		return http.StatusNotFound
	case errors.Is(err, game.ErrInvalidTransition),
		errors.Is(err, service.ErrScoreMismatch),
		errors.Is(err, service.ErrUserExists):
		return http.StatusConflict
	case errors.Is(err, game.ErrInvalidClick),
		errors.Is(err, domain.ErrUnknownDifficulty),
		errors.Is(err, domain.ErrInvalidCatalog),
		errors.Is(err, leaderboard.ErrInvalidEntry),
		errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusBadRequest
	case errors.Is(err, leaderboard.ErrSubmission):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.WithContext(c.Request.Context()).Error("request failed", "path", c.FullPath(), "error", err)
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
