package server

import (
	"context"
	"net/http"
	"time"

	analyticsdomain "github.com/cohortlens/cohortlens/internal/analytics/domain"
	authdomain "github.com/cohortlens/cohortlens/internal/auth/domain"
	"github.com/cohortlens/cohortlens/internal/clock"
	"github.com/cohortlens/cohortlens/internal/config"
	customerdomain "github.com/cohortlens/cohortlens/internal/customer/domain"
	featuredomain "github.com/cohortlens/cohortlens/internal/feature/domain"
	obslogger "github.com/cohortlens/cohortlens/internal/observability/logger"
	"github.com/cohortlens/cohortlens/internal/ratelimit"
	recommendationdomain "github.com/cohortlens/cohortlens/internal/recommendation/domain"
	usagedomain "github.com/cohortlens/cohortlens/internal/usage/domain"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

// Server wires the HTTP surface over the domain services.
type Server struct {
	engine            *gin.Engine
	cfg               config.Config
	db                *gorm.DB
	clk               clock.Clock
	authSvc           authdomain.Service
	usageSvc          usagedomain.Service
	analyticsSvc      analyticsdomain.Service
	recommendationSvc recommendationdomain.Service
	customerRepo      customerdomain.Repository
	featureSvc        featuredomain.Service
	limiter           *ratelimit.TokenBucket
	log               *zap.Logger
}

type ServerParams struct {
	fx.In

	Gin               *gin.Engine
	Cfg               config.Config
	DB                *gorm.DB
	Clk               clock.Clock
	AuthSvc           authdomain.Service
	UsageSvc          usagedomain.Service
	AnalyticsSvc      analyticsdomain.Service
	RecommendationSvc recommendationdomain.Service
	CustomerRepo      customerdomain.Repository
	FeatureSvc        featuredomain.Service
	Limiter           *ratelimit.TokenBucket `optional:"true"`
	Log               *zap.Logger
}

func NewEngine(log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(log))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(log *zap.Logger) *gin.Engine {
	return NewEngine(log)
}

func NewServer(p ServerParams) *Server {
	s := &Server{
		engine:            p.Gin,
		cfg:               p.Cfg,
		db:                p.DB,
		clk:               p.Clk,
		authSvc:           p.AuthSvc,
		usageSvc:          p.UsageSvc,
		analyticsSvc:      p.AnalyticsSvc,
		recommendationSvc: p.RecommendationSvc,
		customerRepo:      p.CustomerRepo,
		featureSvc:        p.FeatureSvc,
		limiter:           p.Limiter,
		log:               p.Log.Named("server"),
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.engine.GET("/health", s.Health)

	api := s.engine.Group("/api/v2")
	api.Use(s.RateLimit())
	api.Use(s.MigrationLogging())

	api.POST("/auth/token", s.IssueToken)
	api.GET("/health", s.Health)

	metered := api.Group("")
	metered.Use(s.AuthRequired(), s.KillswitchRequired())
	metered.POST("/predict-spending", s.PredictSpending)
	metered.POST("/segment", s.Segment)
	metered.POST("/recommendations/natural", s.NaturalRecommendations)

	authed := api.Group("")
	authed.Use(s.AuthRequired())
	authed.GET("/usage", s.Usage)
	authed.GET("/customers", s.ListCustomers)

	admin := api.Group("/admin")
	admin.GET("/health", s.AdminHealth)
	admin.GET("/flags", s.GetFlags)

	adminWrite := admin.Group("")
	adminWrite.Use(s.AuthRequired())
	adminWrite.POST("/flags", s.SetFlag)
	adminWrite.POST("/migrate-to-v2", s.MigrateToV2)
	adminWrite.POST("/rollback-to-v1", s.RollbackToV1)
	adminWrite.POST("/enable-shadow-mode", s.EnableShadowMode)
	adminWrite.POST("/complete-v1-deprecation", s.CompleteV1Deprecation)
}

func run(lc fx.Lifecycle, r *gin.Engine) {
	srv := &http.Server{
		Addr:    ":8080",
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
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}
