package notification

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type RecentResponse struct {
	Channels []string `json:"channels"`
	Changes  []Change `json:"changes"`
}

// GetRecent handles GET /notifications/recent
// @Summary Recent calendar changes
// @Description Applied writes most recently fanned out to the notification channels, newest first
// @Tags Notifications
// @Produce json
// @Param limit query int false "Maximum number of changes (default: 20)"
// @Success 200 {object} RecentResponse
// @Failure 400 {object} gin.H
// @Router /api/v1/notifications/recent [get]
func (h *Handler) GetRecent(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		limit = n
	}

	c.JSON(http.StatusOK, RecentResponse{
		Channels: h.service.Channels(),
		Changes:  h.service.Recent(limit),
	})
}
