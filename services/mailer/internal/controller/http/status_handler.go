package http

import (
	"net/http"

	"postfeed/pkg/logger"

	"github.com/gin-gonic/gin"
)

// QueueInspector reports how many email tasks are waiting.
type QueueInspector interface {
	GetQueueLength() (int, error)
}

type StatusHandler struct {
	queue  QueueInspector
	logger *logger.Logger
}

func NewStatusHandler(queue QueueInspector, logger *logger.Logger) *StatusHandler {
	return &StatusHandler{
		queue:  queue,
		logger: logger,
	}
}

// QueueStatus godoc
// @Summary      Email queue status
// @Description  Number of email tasks waiting to be sent
// @Tags         emails
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      503  {object}  map[string]string
// @Router       /emails/queue [get]
func (h *StatusHandler) QueueStatus(c *gin.Context) {
	pending, err := h.queue.GetQueueLength()
	if err != nil {
		h.logger.Error("Failed to inspect email queue: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Email queue unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"queue": "email_queue", "pending": pending})
}
