package handlers

import (
	"net/http"
	"time"

	"rental-manager/internal/hierarchy"
	"rental-manager/internal/identity"
	"rental-manager/internal/ratelimit"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Deps wires the router. Only Store, Identity and Log are required.
type Deps struct {
	Store       *hierarchy.Store
	Identity    identity.Provider
	Searcher    Searcher
	Indexer     Indexer
	Scheduler   Runner
	Breaker     BreakerStatus
	PushLimiter *ratelimit.RateLimiter
	Metrics     http.Handler
	Log         *logrus.Entry
	LogRequests bool
}

// RegisterRoutes mounts every endpoint on r
func RegisterRoutes(r *gin.Engine, d Deps) {
	if d.LogRequests {
		r.Use(RequestLogger(d.Log))
	}
	r.Use(identity.Middleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if d.Metrics != nil {
		r.GET("/metrics", gin.WrapH(d.Metrics))
	}

	props := NewPropertyHandler(d.Store, d.Identity, d.Log)
	selection := NewSelectionHandler(d.Store)
	syncH := NewSyncHandler(d.Store, d.Identity, d.Indexer, d.Breaker, d.Log)
	admin := NewAdminHandler(d.Store, d.Scheduler, d.Log)

	api := r.Group("/api")
	{
		api.GET("/status", syncH.GetStatus)

		api.GET("/properties", props.ListProperties)
		api.POST("/properties", props.CreateProperty)
		api.GET("/properties/:id", props.GetProperty)
		api.PATCH("/properties/:id", props.UpdateProperty)
		api.DELETE("/properties/:id", props.DeleteProperty)

		api.POST("/properties/:id/units", props.AddUnit)
		api.PATCH("/properties/:id/units/:unitId", props.UpdateUnit)
		api.DELETE("/properties/:id/units/:unitId", props.DeleteUnit)

		api.POST("/properties/:id/rooms", props.AddRoomToProperty)
		api.POST("/properties/:id/units/:unitId/rooms", props.AddRoom)
		api.PATCH("/properties/:id/units/:unitId/rooms/:roomId", props.UpdateRoom)
		api.DELETE("/properties/:id/units/:unitId/rooms/:roomId", props.DeleteRoom)

		api.GET("/selection", selection.Get)
		api.PUT("/selection", selection.Replace)
		api.POST("/selection/toggle/:id", selection.Toggle)
		api.DELETE("/selection", selection.Clear)

		api.POST("/sync/load", syncH.Load)
		if d.PushLimiter != nil {
			api.POST("/sync/push", d.PushLimiter.Middleware(), syncH.Push)
		} else {
			api.POST("/sync/push", syncH.Push)
		}

		api.GET("/search", NewSearchHandler(d.Searcher).Search)
	}

	adminGroup := r.Group("/api/admin")
	{
		adminGroup.GET("/stats", admin.GetStats)
		adminGroup.GET("/errors", admin.GetErrors)
		adminGroup.GET("/rent-distribution", admin.GetRentDistribution)
		adminGroup.POST("/hydrate", admin.TriggerHydration)
	}
}

// RequestLogger logs one line per request
func RequestLogger(log *logrus.Entry) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		entry := log.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.FullPath(),
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
		})
		if c.Writer.Status() >= http.StatusInternalServerError {
			entry.Warn("request failed")
			return
		}
		entry.Debug("request served")
	}
}
