package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/foliopress/foliopress/internal/account"
	"github.com/foliopress/foliopress/internal/clock"
	"github.com/foliopress/foliopress/internal/config"
	"github.com/foliopress/foliopress/internal/deployment"
	deploymentdomain "github.com/foliopress/foliopress/internal/deployment/domain"
	"github.com/foliopress/foliopress/internal/observability"
	obsmiddleware "github.com/foliopress/foliopress/internal/observability/logger"
	obsmetrics "github.com/foliopress/foliopress/internal/observability/metrics"
	"github.com/foliopress/foliopress/internal/portfolio"
	"github.com/foliopress/foliopress/internal/portfolio/render"
	"github.com/foliopress/foliopress/internal/providers"
	"github.com/foliopress/foliopress/internal/providers/hosting"
	"github.com/foliopress/foliopress/internal/providers/pdf"
	"github.com/foliopress/foliopress/internal/publish"
	publishdomain "github.com/foliopress/foliopress/internal/publish/domain"
	"github.com/foliopress/foliopress/internal/quota"
	"github.com/foliopress/foliopress/internal/ratelimit"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	account.Module,
	deployment.Module,
	portfolio.Module,
	providers.Module,
	quota.Module,
	publish.Module,
	ratelimit.Module,
	fx.Provide(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, s *Server) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			s.watchers.StopAll()
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine      *gin.Engine
	cfg         config.Config
	db          *gorm.DB
	log         *zap.Logger
	clk         clock.Clock
	publishSvc  publishdomain.Service
	deployments deploymentdomain.Repository
	renderer    render.Renderer
	pdfProvider pdf.Provider
	checker     *hosting.Checker
	limiter     *ratelimit.PublishLimiter
	obsMetrics  *obsmetrics.Metrics
	watchers    *watcherRegistry
}

type ServerParams struct {
	fx.In

	Gin         *gin.Engine
	Cfg         config.Config
	DB          *gorm.DB
	Log         *zap.Logger
	Clock       clock.Clock
	PublishSvc  publishdomain.Service
	Deployments deploymentdomain.Repository
	Renderer    render.Renderer
	PDFProvider pdf.Provider
	Checker     *hosting.Checker
	Limiter     *ratelimit.PublishLimiter `optional:"true"`
	ObsMetrics  *obsmetrics.Metrics       `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:      p.Gin,
		cfg:         p.Cfg,
		db:          p.DB,
		log:         p.Log.Named("server"),
		clk:         p.Clock,
		publishSvc:  p.PublishSvc,
		deployments: p.Deployments,
		renderer:    p.Renderer,
		pdfProvider: p.PDFProvider,
		checker:     p.Checker,
		limiter:     p.Limiter,
		obsMetrics:  p.ObsMetrics,
		watchers:    newWatcherRegistry(),
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	// -------- Portfolio --------
	api.POST("/portfolio/publish", s.PublishPortfolio)
	api.GET("/portfolio/status", s.StatusPollRateLimit(), s.PortfolioStatus)
	api.GET("/portfolio/deployments", s.ListDeployments)
	api.POST("/portfolio/preview", s.PreviewPortfolio)

	// -------- Documents --------
	api.POST("/cv/pdf", s.GenerateResumePDF)
	api.POST("/cover-letter/pdf", s.GenerateCoverLetterPDF)
}
