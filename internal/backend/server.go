// Package backend is the development backend serving the widget's /api endpoints.
package backend

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/amoylab/coursechat/internal/backend/answer"
	"github.com/amoylab/coursechat/internal/backend/database"
	"github.com/amoylab/coursechat/internal/common/cnst"
	"github.com/amoylab/coursechat/internal/common/config"
	"github.com/amoylab/coursechat/internal/common/errorx"
	"github.com/amoylab/coursechat/pkg/metrics"
	"github.com/amoylab/coursechat/pkg/trace"
)

// Server holds the handlers of the development backend
type Server struct {
	cfg      *config.BackendConfig
	logger   *zap.Logger
	db       database.Database
	answerer answer.Answerer
	metrics  *metrics.Metrics
	errs     *errorx.ErrorHandler
	tracer   *trace.Builder
	now      func() time.Time
}

// NewServer creates a new backend server
func NewServer(logger *zap.Logger, cfg *config.BackendConfig, db database.Database, answerer answer.Answerer) *Server {
	logger = logger.Named("backend")
	return &Server{
		cfg:      cfg,
		logger:   logger,
		db:       db,
		answerer: answerer,
		metrics:  metrics.New(cfg.Metrics),
		errs:     errorx.NewErrorHandler(logger),
		tracer:   trace.Tracer(cnst.TraceBackend),
		now:      time.Now,
	}
}

// Router builds the gin engine with every middleware and route registered
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(s.errs.RecoveryMiddleware())
	router.Use(s.loggerMiddleware())
	router.Use(s.corsMiddleware())
	if s.cfg.Tracing.Enabled {
		router.Use(otelgin.Middleware(s.cfg.Tracing.ServiceName))
	}
	if s.cfg.Metrics.Enabled {
		router.Use(s.metrics.Middleware())
		router.GET(s.cfg.Metrics.Path, gin.WrapH(s.metrics.Handler()))
	}
	router.Use(s.errs.ErrorMiddleware())

	router.GET(cnst.PathHealthz, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.POST(cnst.PathQuery, s.handleQuery)
	router.POST(cnst.PathMediaMatch, s.handleMediaMatch)
	router.POST(cnst.PathSessionClicks, s.handleSessionClicks)
	router.POST(cnst.PathSessionMove, s.handleSessionMove)
	router.GET(cnst.PathUpcomingClasses, s.handleUpcomingClasses)

	router.NoRoute(s.errs.NoRoute)
	return router
}
