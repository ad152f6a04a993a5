package telegram

import (
	"net/http"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// WebhookRouter builds the HTTP surface for webhook deployments: Telegram
// POSTs updates to the root path and they flow into the same per-chat
// dispatcher the polling loop uses.
func (b *Bot) WebhookRouter() *gin.Engine {
	router := gin.Default()

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.POST("/", func(c *gin.Context) {
		var update tgbotapi.Update
		if err := c.ShouldBindJSON(&update); err != nil {
			b.log.Warn("rejecting malformed webhook payload", "error", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "malformed update"})
			return
		}
		b.Dispatch(update)
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return router
}
