package swarmhub

import (
	"net/http"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"

	"github.com/kiosk404/swarmscope/internal/pkg/version"
	"github.com/kiosk404/swarmscope/internal/swarm/handoff"
	"github.com/kiosk404/swarmscope/internal/swarm/store"
	"github.com/kiosk404/swarmscope/internal/swarmhub/handler/middleware"
	v1 "github.com/kiosk404/swarmscope/internal/swarmhub/handler/v1"
)

// routerDeps holds the dependencies needed for route registration.
type routerDeps struct {
	store        *store.Store
	requirements []handoff.Requirement
	profiling    bool
}

func initRouter(g *gin.Engine, deps *routerDeps) {
	installMiddleware(g, deps)
	installController(g, deps)
}

func installMiddleware(g *gin.Engine, deps *routerDeps) {
	g.Use(gin.Recovery())
	g.Use(middleware.RequestLogger())
	g.Use(middleware.NoCache())

	if deps.profiling {
		pprof.Register(g)
	}
}

func installController(g *gin.Engine, deps *routerDeps) {
	g.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": version.Get().GitVersion})
	})

	runHandler := v1.NewRunHandler(deps.store, deps.requirements)

	// --- /v1 route group ---
	apiV1 := g.Group("/v1")
	{
		apiV1.POST("/runs", runHandler.Create)
		apiV1.GET("/runs", runHandler.List)
		apiV1.GET("/runs/:id", runHandler.Get)
		apiV1.GET("/runs/:id/events", runHandler.Events)
	}
}
