package handlers

import (
	"net/http"

	"spot_difference/internal/domain"

	"github.com/gin-gonic/gin"
)

// SubmitScore отправляет итог завершённого раунда. Счёт берётся из сессии,
// присланные score и difficulty только сверяются с ней.
func (h *Handler) SubmitScore(c *gin.Context) {
	username, ok := getUsername(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req struct {
		Score      *int   `json:"score"`
		Difficulty string `json:"difficulty"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
			return
		}
	}

	var difficulty domain.Difficulty
	if req.Difficulty != "" {
		d, err := domain.ParseDifficulty(req.Difficulty)
		if err != nil {
			writeError(c, err)
			return
		}
		difficulty = d
	}

	entry, err := h.Sessions.SubmitScore(c.Request.Context(), username, req.Score, difficulty)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "score submitted",
		"entry":   entry,
	})
}

// GetLeaderboard - топ игроков, опционально по сложности
func (h *Handler) GetLeaderboard(c *gin.Context) {
	var difficulty domain.Difficulty
	if q := c.Query("difficulty"); q != "" {
		d, err := domain.ParseDifficulty(q)
		if err != nil {
			writeError(c, err)
			return
		}
		difficulty = d
	}

	top, err := h.Board.Top(c.Request.Context(), h.Board.Size(), difficulty)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"leaderboard": top,
		"difficulty":  difficulty,
	})
}
