package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/crypto/acme/autocert"

	"github.com/fatimahgelora/korpri/address"
	"github.com/fatimahgelora/korpri/config"
	"github.com/fatimahgelora/korpri/db"
	"github.com/fatimahgelora/korpri/handlers"
	applog "github.com/fatimahgelora/korpri/logger"
	mw "github.com/fatimahgelora/korpri/middleware"
	"github.com/fatimahgelora/korpri/payment"
	"github.com/fatimahgelora/korpri/qrcode"
	"github.com/fatimahgelora/korpri/raceops"
)

func main() {
	cfg := config.Load()
	logger, err := applog.New(cfg.Debug)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	bdb := db.Setup(cfg)
	defer bdb.Close()

	// Schema and constraints are ensured once here, at startup, never from a
	// request path.
	if err := db.CreateTables(context.Background(), bdb); err != nil {
		logger.Fatal("create tables failed", zap.Error(err))
	}

	payments := payment.NewClient(cfg.MidtransServerKey, cfg.MidtransProduction, cfg.HTTPClientTimeout)
	addresses := address.NewClient(cfg.AddressAPIURL, cfg.AddressAPIKey, cfg.HTTPClientTimeout)
	qr := qrcode.NewURLBuilder(cfg.QRAPIURL)
	race := raceops.NewService(raceops.NewBunStore(bdb), logger)

	h := handlers.New(bdb, cfg.JWTKey(), payments, addresses, qr, race, cfg.MidtransVerifySig)

	e := echo.New()
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod: true,
		LogURI:    true,
		LogStatus: true,
		LogError:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.Int("status", v.Status),
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
			}
			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
			}
			switch {
			case v.Status >= 500:
				logger.Error("http request", fields...)
			case v.Status >= 400:
				logger.Warn("http request", fields...)
			default:
				logger.Info("http request", fields...)
			}
			return nil
		},
	}))
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"*", "Authorization"},
		AllowCredentials: true,
	}))

	// Public
	api := e.Group("/api")
	api.POST("/registrations", h.CreateRegistration)
	api.POST("/registrations/:id/pay", h.RetryPayment)
	api.GET("/registrations/:id", h.GetRegistration)
	api.GET("/registrations/:id/qr", h.TicketQR)
	api.POST("/payments/midtrans/webhook", h.PaymentWebhook)
	api.GET("/address/provinces", h.Provinces)
	api.GET("/address/regencies/:provinceID", h.Regencies)
	api.GET("/address/districts/:regencyID", h.Districts)
	api.GET("/address/villages/:districtID", h.Villages)
	api.POST("/admin/signin", h.Signin)

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Staff – require valid JWT in Authorization header
	staff := api.Group("/admin", mw.JWT(cfg.JWTKey()))
	staff.GET("/race/bibs", h.RaceBibs)
	staff.POST("/race/bibs/assign", h.AssignBib)
	staff.POST("/race/bibs/collect", h.CollectBib)
	staff.POST("/race/timing/start", h.RecordStart)
	staff.POST("/race/timing/finish", h.RecordFinish)
	staff.POST("/race/results/status", h.SetResultStatus)
	staff.GET("/race/results", h.RaceResults)
	staff.GET("/race/statistics", h.RaceStatistics)

	// Admin-only registration console
	admin := staff.Group("", mw.RequireAdmin)
	admin.GET("/registrations", h.AdminRegistrations)
	admin.GET("/registrations/stats", h.AdminRegistrationStats)

	if cfg.Debug {
		logger.Info("starting server", zap.String("mode", "debug"), zap.String("addr", cfg.Port))
		if err := e.Start(cfg.Port); err != nil {
			logger.Fatal("server exited", zap.Error(err))
		}
		return
	}

	autoTLS := &autocert.Manager{
		Prompt:     autocert.AcceptTOS,
		Cache:      autocert.DirCache(".cache"),
		HostPolicy: autocert.HostWhitelist(cfg.TLSDomains...),
	}

	s := &http.Server{
		Addr:         ":443",
		Handler:      e,
		TLSConfig:    autoTLS.TLSConfig(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	if err := s.ListenAndServeTLS("", ""); err != http.ErrServerClosed {
		logger.Error("tls server exited", zap.Error(err))
		os.Exit(1)
	}
}
