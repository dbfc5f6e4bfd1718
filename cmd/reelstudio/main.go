package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/stripe/stripe-go/v82"

	"reelstudio/internal/config"
	"reelstudio/internal/database"
	"reelstudio/internal/handler"
	"reelstudio/internal/mailer"
	"reelstudio/internal/mw"
	"reelstudio/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, relying on environment")
	}

	cfg, err := config.New()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	stripe.Key = cfg.StripeAPIKey

	db, err := database.NewDB(cfg.DatabaseURI)
	if err != nil {
		slog.Error("failed to connect to DB", "error", err)
		os.Exit(1)
	}
	defer database.CloseDB(db)

	if err := database.InitSchema(db); err != nil {
		slog.Error("failed to init DB schema", "error", err)
		os.Exit(1)
	}

	var mail mailer.Mailer = mailer.LogMailer{}
	if cfg.SMTPAddr != "" {
		mail = mailer.NewSMTP(cfg.SMTPAddr, cfg.SMTPFrom)
	}

	// Services
	authSvc := service.NewAuthService(db, cfg.PortalBaseURL)
	paymentSvc := service.NewPaymentService(db)
	reconcileSvc := service.NewReconcileService(paymentSvc, authSvc, mail)
	balanceSvc := service.NewBalanceService(db)
	orderSvc := service.NewOrderService(db)
	projectSvc := service.NewProjectService(db)
	templateSvc := service.NewTemplateService(db)

	// Router
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Stripe-Signature"},
		ExposedHeaders:   []string{"Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Public routes
	r.Post("/api/stripe/webhook", handler.StripeWebhookHandler(reconcileSvc, cfg.StripeWebhookSecret))
	r.Post("/api/user/register", handler.RegisterHandler(authSvc, cfg.JWTSecret))
	r.Post("/api/user/login", handler.LoginHandler(authSvc, cfg.JWTSecret))
	r.Post("/api/user/reset", handler.ResetPasswordHandler(authSvc))
	r.Get("/api/templates", handler.ListTemplatesHandler(templateSvc))

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(mw.AuthMiddleware(cfg.JWTSecret))

		r.Get("/api/user/balance", handler.GetBalanceHandler(balanceSvc))
		r.Get("/api/user/orders", handler.ListOrdersHandler(orderSvc))
		r.Post("/api/user/projects", handler.SubmitProjectHandler(projectSvc))
		r.Get("/api/user/projects", handler.ListProjectsHandler(projectSvc))

		// Admin routes
		r.Group(func(r chi.Router) {
			r.Use(mw.RequireAdmin)

			r.Get("/api/admin/projects", handler.ListAllProjectsHandler(projectSvc))
			r.Patch("/api/admin/projects/{id}", handler.UpdateProjectStatusHandler(projectSvc))
			r.Post("/api/admin/templates", handler.CreateTemplateHandler(templateSvc))
			r.Put("/api/admin/templates/{id}", handler.UpdateTemplateHandler(templateSvc))
			r.Delete("/api/admin/templates/{id}", handler.DeleteTemplateHandler(templateSvc))
		})
	})

	srv := &http.Server{
		Addr:         cfg.RunAddress,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	slog.Info("starting server", "addr", cfg.RunAddress)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
		}
	}()

	<-quit
	slog.Info("shutting down...")

	ctxShut, cancelShut := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShut()

	if err := srv.Shutdown(ctxShut); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}

	slog.Info("server stopped")
}
