package handlers

import (
	"fmt"
	"net/http"

	"spot_difference/internal/catalog"
	"spot_difference/internal/domain"
	"spot_difference/internal/game"

	"github.com/gin-gonic/gin"
)

// catalogView - набор для клиента; координаты только при RevealDifferences
type catalogView struct {
	ID          int64               `json:"id"`
	Difficulty  domain.Difficulty   `json:"difficulty"`
	ImageURL1   string              `json:"image_url_1"`
	ImageURL2   string              `json:"image_url_2"`
	Total       int                 `json:"total_differences"`
	Differences []domain.Difference `json:"differences,omitempty"`
}

// parseCatalogDifficulty - для набора неизвестная сложность означает "набор не найден"
func parseCatalogDifficulty(s string) (domain.Difficulty, error) {
	d, err := domain.ParseDifficulty(s)
	if err != nil {
		return "", fmt.Errorf("%w: %w", catalog.ErrNotFound, err)
	}
	return d, nil
}

// GetGame отдает набор картинок по сложности (по умолчанию medium)
func (h *Handler) GetGame(c *gin.Context) {
	difficulty, err := parseCatalogDifficulty(c.Query("difficulty"))
	if err != nil {
		writeError(c, err)
		return
	}

	set, err := h.Catalogs.Get(c.Request.Context(), difficulty)
	if err != nil {
		writeError(c, err)
		return
	}

	view := catalogView{
		ID:         set.ID,
		Difficulty: set.Difficulty,
		ImageURL1:  set.ImageURL1,
		ImageURL2:  set.ImageURL2,
		Total:      set.Total(),
	}
	if h.RevealDifferences {
		view.Differences = set.Differences
	}
	c.JSON(http.StatusOK, view)
}

// GetSets - список доступных наборов
func (h *Handler) GetSets(c *gin.Context) {
	sets, err := h.Catalogs.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sets)
}

// StartGame начинает раунд
func (h *Handler) StartGame(c *gin.Context) {
	username, ok := getUsername(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req struct {
		Difficulty string `json:"difficulty"`
	}
	// пустое тело - сложность по умолчанию
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
			return
		}
	}

	difficulty, err := parseCatalogDifficulty(req.Difficulty)
	if err != nil {
		writeError(c, err)
		return
	}

	snap, err := h.Sessions.Start(c.Request.Context(), username, difficulty)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// Click - клик по картинке в пикселях отрисованного изображения
func (h *Handler) Click(c *gin.Context) {
	username, ok := getUsername(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req game.Click
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	out, snap, err := h.Sessions.Click(c.Request.Context(), username, req)
	if err != nil {
		writeError(c, err)
		return
	}

	resp := gin.H{
		"outcome": out.Kind,
		"session": snap,
	}
	if out.Kind != game.OutcomeMiss {
		resp["difference"] = out.Difference
		resp["index"] = out.Index
	}
	c.JSON(http.StatusOK, resp)
}

// GetSession - текущее состояние раунда игрока
func (h *Handler) GetSession(c *gin.Context) {
	username, ok := getUsername(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	snap, err := h.Sessions.Snapshot(username)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// LeaveSession останавливает таймер и удаляет сессию
func (h *Handler) LeaveSession(c *gin.Context) {
	username, ok := getUsername(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if !h.Sessions.Leave(username) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
