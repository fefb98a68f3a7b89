package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	auditdomain "github.com/JohnConnorCode/kivett-bednar-sub000/internal/audit/domain"
	catalogdomain "github.com/JohnConnorCode/kivett-bednar-sub000/internal/catalog/domain"
	checkoutdomain "github.com/JohnConnorCode/kivett-bednar-sub000/internal/checkout/domain"
	"github.com/JohnConnorCode/kivett-bednar-sub000/internal/config"
	"github.com/JohnConnorCode/kivett-bednar-sub000/internal/observability/logger"
	"github.com/JohnConnorCode/kivett-bednar-sub000/internal/observability/metrics"
	"github.com/JohnConnorCode/kivett-bednar-sub000/internal/observability/tracing"
	orderdomain "github.com/JohnConnorCode/kivett-bednar-sub000/internal/order/domain"
	"github.com/JohnConnorCode/kivett-bednar-sub000/internal/order/receipt"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	authFailureLimit  = 20
	authFailureWindow = time.Minute
)

var Module = fx.Module("http.server",
	fx.Provide(NewServer),
	fx.Provide(NewEngine),
	fx.Invoke(RunHTTP),
)

type ServerParams struct {
	fx.In

	Config      config.Config
	Log         *zap.Logger
	DB          *gorm.DB
	CheckoutSvc checkoutdomain.Service
	OrderSvc    orderdomain.Service
	CatalogSvc  catalogdomain.Service
	AuditSvc    auditdomain.Service  `optional:"true"`
	Receipts    receipt.Renderer     `optional:"true"`
	HTTPMetrics *metrics.HTTPMetrics `optional:"true"`
}

type Server struct {
	cfg config.Config
	log *zap.Logger
	db  *gorm.DB

	checkoutSvc checkoutdomain.Service
	orderSvc    orderdomain.Service
	catalogSvc  catalogdomain.Service
	auditSvc    auditdomain.Service
	receipts    receipt.Renderer

	httpMetrics  *metrics.HTTPMetrics
	authFailures *rateLimiter
}

func NewServer(p ServerParams) *Server {
	return &Server{
		cfg: p.Config,
		log: p.Log.Named("http.server"),
		db:  p.DB,

		checkoutSvc: p.CheckoutSvc,
		orderSvc:    p.OrderSvc,
		catalogSvc:  p.CatalogSvc,
		auditSvc:    p.AuditSvc,
		receipts:    p.Receipts,

		httpMetrics:  p.HTTPMetrics,
		authFailures: newRateLimiter(authFailureLimit, authFailureWindow),
	}
}

// NewEngine builds the gin engine with middleware and every route registered.
func NewEngine(cfg config.Config, s *Server) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.GinMiddleware(logger.MiddlewareConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	r.Use(tracing.GinMiddleware())
	r.Use(metrics.GinMiddleware(s.httpMetrics))

	s.RegisterRoutes(r)
	return r
}

func (s *Server) RegisterRoutes(r *gin.Engine) {
	r.GET("/healthz", s.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.POST("/webhooks/stripe", s.StripeWebhook)

	admin := api.Group("/admin", s.AdminKeyRequired())
	admin.GET("/orders", s.ListOrders)
	admin.GET("/orders/:id", s.GetOrder)
	admin.GET("/orders/:id/receipt", s.GetOrderReceipt)
	admin.POST("/orders/:id/resubmit", s.ResubmitOrder)
	admin.GET("/catalog/products", s.ListCatalogProducts)
	admin.GET("/audit-logs", s.ListAuditLogs)
}

func (s *Server) Health(c *gin.Context) {
	sqlDB, err := s.db.DB()
	if err == nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		err = sqlDB.PingContext(ctx)
		cancel()
	}
	if err != nil {
		s.log.Warn("health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": s.cfg.Version})
}

// RunHTTP binds the listener on start and drains in-flight requests on stop.
func RunHTTP(lc fx.Lifecycle, cfg config.Config, engine *gin.Engine, log *zap.Logger) {
	log = log.Named("http.server")
	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			log.Info("http server listening", zap.String("addr", ln.Addr().String()))
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			timeout := cfg.HTTP.ShutdownTimeout
			if timeout <= 0 {
				timeout = 10 * time.Second
			}
			shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}
