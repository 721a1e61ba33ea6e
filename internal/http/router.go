package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "message-relay-backend/docs"
	"message-relay-backend/internal/common/config"
	"message-relay-backend/internal/common/middleware"
	relayhttp "message-relay-backend/internal/features/relay/delivery/http"
	"message-relay-backend/internal/features/relay/service"
	"message-relay-backend/internal/platform/metrics"
)

const serviceName = "message-relay-backend"

// Pinger is checked by the readiness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Config  *config.Config
	Relay   service.RelayService
	Metrics *metrics.Metrics
	Logger  zerolog.Logger
	// Ready may be nil when the service has no external dependency to check.
	Ready Pinger
}

// NewRouter builds the gin engine with middleware and all routes wired.
func NewRouter(d Deps) *gin.Engine {
	if !d.Config.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(d.Logger))
	router.Use(middleware.Recovery(d.Logger))
	router.Use(middleware.Errors(d.Logger))

	corsConfig := cors.DefaultConfig()
	if len(d.Config.Server.Origin) == 0 || d.Config.Server.Origin[0] == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = d.Config.Server.Origin
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Accept", "X-Request-ID", "init_data"}
	router.Use(cors.New(corsConfig))

	var adminGuard []gin.HandlerFunc
	if d.Config.AdminGuardEnabled() {
		adminGuard = append(adminGuard,
			middleware.TelegramInitData(d.Config.Admin.BotToken, d.Config.Admin.InitDataTTL),
			middleware.RequireAdmin(d.Config.Admin.IDs),
		)
	}
	relayhttp.NewRelayHandler(d.Relay).RegisterRoutes(&router.RouterGroup, adminGuard...)

	if d.Metrics != nil {
		router.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	}
	if d.Config.Debug {
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC(),
			"service":   serviceName,
		})
	})

	router.GET("/live", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	router.GET("/ready", func(c *gin.Context) {
		if d.Ready != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := d.Ready.Ping(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status":  "unready",
					"error":   "redis unavailable",
					"details": err.Error(),
				})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{
			"status":    "ready",
			"timestamp": time.Now().UTC(),
			"service":   serviceName,
		})
	})

	return router
}
