package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	billingdomain "github.com/openmotel/motel/internal/billing/domain"
	"github.com/openmotel/motel/internal/config"
	contractdomain "github.com/openmotel/motel/internal/contract/domain"
	obsmetrics "github.com/openmotel/motel/internal/observability/metrics"
	paymentdomain "github.com/openmotel/motel/internal/payment/domain"
	readingdomain "github.com/openmotel/motel/internal/reading/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Engine      *gin.Engine
	Log         *zap.Logger
	ReadingSvc  readingdomain.Service
	ContractSvc contractdomain.Service
	BillingSvc  billingdomain.Service
	PaymentSvc  paymentdomain.Service
	ObsMetrics  *obsmetrics.Metrics `optional:"true"`
}

type Server struct {
	engine      *gin.Engine
	log         *zap.Logger
	readingSvc  readingdomain.Service
	contractSvc contractdomain.Service
	billingSvc  billingdomain.Service
	paymentSvc  paymentdomain.Service
	obsMetrics  *obsmetrics.Metrics
}

func NewEngine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func NewServer(p Params) *Server {
	s := &Server{
		engine:      p.Engine,
		log:         p.Log.Named("http.server"),
		readingSvc:  p.ReadingSvc,
		contractSvc: p.ContractSvc,
		billingSvc:  p.BillingSvc,
		paymentSvc:  p.PaymentSvc,
		obsMetrics:  p.ObsMetrics,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	v1 := s.engine.Group("/v1")
	v1.Use(OwnerContextMiddleware())

	v1.POST("/rooms/:room_id/readings/:utility", s.AddReading)
	v1.GET("/rooms/:room_id/readings/:utility", s.ListReadings)
	v1.GET("/rooms/:room_id/charges/preview", s.PreviewCharge)

	v1.POST("/bills", s.GenerateBill)
	v1.GET("/bills/:id", s.GetBill)
	v1.GET("/contracts/:id/bills", s.ListContractBills)
	v1.POST("/bills/:id/payments", s.RecordPayment)
}

func run(lc fx.Lifecycle, cfg config.Config, s *Server) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			_ = ctx
			go func() {
				s.log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					s.log.Error("http server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(run),
)
