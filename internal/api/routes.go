package api

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// SetupRoutes registers the API on router. allowedOrigins are the browser
// origins permitted by CORS.
func SetupRoutes(router *gin.Engine, handler *Handler, allowedOrigins []string, logger *logrus.Logger) {
	router.Use(RequestID(), RequestLogger(logger))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"POST", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type"},
		ExposeHeaders:    []string{RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", handler.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.POST("/predict_price", handler.PredictPrice)
	router.POST("/recommend_properties", handler.RecommendProperties)
	router.POST("/chat", handler.Chat)
}
