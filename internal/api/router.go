package api

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"gridalpha/internal/api/handlers"
	"gridalpha/internal/api/middleware"
)

type RouterOptions struct {
	AllowedOrigins []string
	// StaticDir serves a built dashboard (index.html + assets/) when it exists.
	StaticDir string
}

// NewRouter wires middleware and all API routes.
func NewRouter(d *handlers.Deps, opts RouterOptions) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(d.Log))
	router.Use(middleware.ErrorHandler(d.Log))
	router.Use(middleware.CORS(opts.AllowedOrigins))

	scheduleHandler := handlers.NewScheduleHandler(d)
	zoneHandler := handlers.NewZoneHandler(d)
	arbitrageHandler := handlers.NewArbitrageHandler(d)
	batteryHandler := handlers.NewBatteryHandler(d.BatteryDir, d.Log)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	{
		v1.POST("/schedule", scheduleHandler.Compute)

		v1.GET("/zones", zoneHandler.ListZones)
		v1.GET("/zones/:zone/schedule", scheduleHandler.ForZone)
		v1.GET("/zones/:zone/spark-spread", zoneHandler.SparkSpread)
		v1.GET("/zones/:zone/convergence", zoneHandler.Convergence)
		v1.PUT("/zones/:zone/prices", zoneHandler.PutPrices)

		v1.GET("/assumptions", zoneHandler.Assumptions)
		v1.GET("/battery-arbitrage", arbitrageHandler.Rank)
		v1.GET("/batteries", batteryHandler.ListBatteries)
	}

	serveStatic(router, opts.StaticDir)
	return router
}

// serveStatic serves the SPA; everything that is not an API route falls
// back to index.html.
func serveStatic(router *gin.Engine, staticDir string) {
	if staticDir == "" {
		router.NoRoute(middleware.NotFound)
		return
	}
	if _, err := os.Stat(staticDir); err != nil {
		router.NoRoute(middleware.NotFound)
		return
	}
	router.Static("/assets", filepath.Join(staticDir, "assets"))
	router.StaticFile("/favicon.ico", filepath.Join(staticDir, "favicon.ico"))
	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			middleware.NotFound(c)
			return
		}
		c.File(filepath.Join(staticDir, "index.html"))
	})
}
