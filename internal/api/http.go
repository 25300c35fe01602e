package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/olyamironova/mbp-reconstructor/internal/api/dto"
	"github.com/olyamironova/mbp-reconstructor/internal/core"
	"github.com/olyamironova/mbp-reconstructor/internal/middleware"
)

// HTTPServer is a read-only view over a running reconstruction: the
// latest emitted snapshot and run statistics. It never feeds events into
// the engine.
type HTTPServer struct {
	engine *core.Engine
}

func NewHTTPServer(engine *core.Engine) *HTTPServer {
	return &HTTPServer{engine: engine}
}

func (s *HTTPServer) Run(addr string) error {
	return s.Router().Run(addr)
}

func (s *HTTPServer) Router() *gin.Engine {
	r := gin.Default()

	limiter := middleware.NewRateLimiter(100 * time.Millisecond)
	r.Use(limiter.Middleware())

	r.GET("/healthz", s.healthHandler)
	r.GET("/snapshot", s.snapshotHandler)
	r.GET("/stats", s.statsHandler)

	return r
}

func (s *HTTPServer) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *HTTPServer) snapshotHandler(c *gin.Context) {
	snap := s.engine.LatestSnapshot()
	if snap == nil {
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "nothing emitted yet"})
		return
	}
	c.JSON(http.StatusOK, dto.SnapshotResponse{Snapshot: snap})
}

func (s *HTTPServer) statsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, dto.StatsResponse{Stats: s.engine.Stats()})
}
