package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"

	"mis/internal/db"
	"mis/internal/domain/commitment"
	"mis/internal/domain/dashboard"
	"mis/internal/domain/kpikra"
	"mis/internal/domain/report"
	"mis/internal/domain/session"
	"mis/internal/platform/config"
	"mis/internal/platform/metrics"
	"mis/internal/sheets"
	adminhandler "mis/internal/transport/http/handlers/admin"
	authhandler "mis/internal/transport/http/handlers/auth"
	userhandler "mis/internal/transport/http/handlers/user"
	"mis/internal/transport/http/middleware"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config invalid: %v", err)
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer pool.Close()

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, "migrations"); err != nil {
			log.Fatalf("migrations failed: %v", err)
		}
	}

	var collector *metrics.Collector
	if cfg.MetricsEnabled {
		collector = metrics.New()
	}

	client := sheets.NewClient(collector)
	writer := sheets.NewWriter(cfg.ScriptURL, cfg.WriterQueueSize, collector)
	writer.Start(ctx)

	dashboardStore := dashboard.NewStore(pool)
	dashboardSvc := dashboard.NewService(client, dashboardStore, cfg.KpiSpreadsheetID, cfg.DataSheet, cfg.RecordsSheet)

	sessionStore := session.NewPGStore(pool)
	selector := session.NewSelector(sessionStore, writer, dashboardStore, cfg.KpiSpreadsheetID, cfg.DashboardSheet, "Designation")
	sessionSvc := session.NewService(client, sessionStore, selector, cfg.AuthSpreadsheetID, cfg.AuthMasterSheet, cfg.KpiSpreadsheetID, cfg.RecordsSheet)

	kpiSvc := kpikra.NewService(client, writer, cfg.KpiSpreadsheetID, cfg.KpiMasterSheet)
	reportSvc := report.NewService(client, cfg.KpiSpreadsheetID, cfg.DataSheet, cfg.ChartServiceURL)
	commitmentSvc := commitment.NewService(client, commitment.NewPGStore(pool), writer, cfg.KpiSpreadsheetID, cfg.RecordsSheet)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(collector))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Auth(cfg.JWTSecret))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if collector != nil {
		router.Get("/metricz", collector.Handler())
	}

	router.Route("/api/v1", func(r chi.Router) {
		authHandler := authhandler.NewHandler(sessionSvc, cfg.JWTSecret, cfg.SessionTTL, cfg.AvatarServiceURL)
		r.Post("/auth/login", authHandler.HandleLogin)
		r.Post("/auth/logout", authHandler.HandleLogout)
		r.Get("/auth/session", authHandler.HandleSession)
		r.Get("/auth/avatar", authHandler.HandleAvatar)

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireRole("admin"))
			adminhandler.NewHandler(dashboardSvc, kpiSvc, reportSvc, commitmentSvc).RegisterRoutes(r)
		})

		r.Route("/user", func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			userhandler.NewHandler(sessionSvc, dashboardSvc, kpiSvc).RegisterRoutes(r)
		})
	})

	slog.Info("server listening", "addr", cfg.Addr, "env", cfg.Environment)
	if err := http.ListenAndServe(cfg.Addr, router); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
