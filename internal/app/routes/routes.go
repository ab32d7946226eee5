package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/yigit/filechat/internal/app/controllers"
	"github.com/yigit/filechat/internal/middleware"
)

// CORS builds the cross-origin policy for the browser client
func CORS(allowedOrigins []string) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	messageController *controllers.MessageController,
	authMiddleware *middleware.AuthMiddleware,
) {
	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Server is running!")
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// --- Authenticated message routes ---
	messages := router.Group("/api/message")
	messages.Use(authMiddleware.JWTAuth())
	{
		messages.GET("/channel/:channelId/messages", messageController.GetMessages)
		messages.POST("/channel/:channelId/send", messageController.SendMessage)
		messages.GET("/channel/:channelId/message/:messageId", messageController.GetMessage)
		messages.DELETE("/channel/:channelId/message/:messageId", messageController.DeleteMessage)
	}

	router.NoRoute(middleware.NotFoundHandler())
}
