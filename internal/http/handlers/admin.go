package handlers

import (
	"net/http"

	"spot_difference/internal/domain"

	"github.com/gin-gonic/gin"
)

// UpsertCatalog заменяет набор сложности. Координаты в шкале 0-100, как в исходных наборах.
func (h *Handler) UpsertCatalog(c *gin.Context) {
	username, _ := getUsername(c)

	difficulty, err := domain.ParseDifficulty(c.Param("difficulty"))
	if err != nil {
		writeError(c, err)
		return
	}

	var req struct {
		ImageURL1   string `json:"image_url_1" binding:"required"`
		ImageURL2   string `json:"image_url_2" binding:"required"`
		Differences []struct {
			X float64 `json:"x"`
			Y float64 `json:"y"`
		} `json:"differences" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	set := &domain.DifferenceCatalog{
		Difficulty: difficulty,
		ImageURL1:  req.ImageURL1,
		ImageURL2:  req.ImageURL2,
	}
	for _, d := range req.Differences {
		set.Differences = append(set.Differences, domain.DifferenceFromSource(d.X, d.Y))
	}

	ctx := c.Request.Context()
	if err := h.Catalogs.Put(ctx, set); err != nil {
		writeError(c, err)
		return
	}

	h.Audit.LogWithRequest(ctx, username, domain.AuditActionCatalogUpsert, domain.AuditCategoryAdmin, c.ClientIP(), c.Request.UserAgent(), map[string]interface{}{
		"difficulty":  string(difficulty),
		"differences": set.Total(),
	})

	stored, err := h.Catalogs.Get(ctx, difficulty)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stored)
}
