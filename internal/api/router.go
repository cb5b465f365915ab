// Package api exposes the campaign editor over HTTP for a browser canvas.
package api

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/alexanderramin/drip/internal/api/middleware"
	"github.com/alexanderramin/drip/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Deps struct {
	Campaigns   service.CampaignService
	Editor      service.EditorService
	DB          *sql.DB
	Logger      *slog.Logger
	CORSOrigins []string
	Version     string
}

func NewRouter(dep Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID(dep.Logger))
	r.Use(cors.New(corsConfig(dep.CORSOrigins)))

	NewHealthHandler("drip", dep.Version, dep.DB).RegisterRoutes(r)

	api := r.Group("/api/v1")
	NewHandler(dep.Campaigns, dep.Editor).Register(api.Group("/campaigns"))
	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", middleware.RequestIDHeader},
		ExposeHeaders: []string{middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
