package restapi

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRouter настраивает и возвращает экземпляр Gin роутера.
func SetupRouter(profileHandler *ProfileHandler) *gin.Engine {
	router := gin.New()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	router.Use(cors.New(corsConfig))
	router.Use(gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Группа для API v1
	v1 := router.Group("/api/v1")
	{
		// Static segment registered before the :address wildcard.
		v1.GET("/profiles/failed", profileHandler.GetFailedHandler)
		v1.GET("/profiles/:address", profileHandler.GetProfileHandler)
		v1.GET("/profiles/:address/chains/:chain", profileHandler.GetChainHandler)
	}

	return router
}
