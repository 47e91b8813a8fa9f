// cmd/api/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"time"

	"github.com/dangerclosesec/dealroom/internal/audit"
	"github.com/dangerclosesec/dealroom/internal/auth"
	"github.com/dangerclosesec/dealroom/internal/config"
	"github.com/dangerclosesec/dealroom/internal/email"
	"github.com/dangerclosesec/dealroom/internal/email/mailer"
	"github.com/dangerclosesec/dealroom/internal/handler"
	"github.com/dangerclosesec/dealroom/internal/imaging"
	"github.com/dangerclosesec/dealroom/internal/middleware"
	"github.com/dangerclosesec/dealroom/internal/policy"
	"github.com/dangerclosesec/dealroom/internal/repository"
	"github.com/dangerclosesec/dealroom/internal/service"
	"github.com/dangerclosesec/dealroom/internal/storage"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "startup error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:     slog.LevelInfo,
		AddSource: true,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.Attr{
					Key:   a.Key,
					Value: slog.StringValue(a.Value.Time().Format(time.RFC3339)),
				}
			}
			return a
		},
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg := config.Load()
	if cfg.JWT.Secret == "" {
		return errors.New("JWT_SECRET must be set")
	}

	ctx := context.Background()

	// Initialize database
	db, err := setupDatabase(cfg)
	if err != nil {
		return fmt.Errorf("setting up database: %w", err)
	}

	// Initialize redis for session revocation
	redisClient, err := auth.NewRedisClient(cfg.Redis.URL, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return fmt.Errorf("setting up redis: %w", err)
	}
	defer redisClient.Close()

	// Initialize object storage
	store, err := storage.NewS3Store(ctx, storage.Config{
		Endpoint:     cfg.Storage.Endpoint,
		Region:       cfg.Storage.Region,
		AccessKey:    cfg.Storage.AccessKey,
		SecretKey:    cfg.Storage.SecretKey,
		UsePathStyle: cfg.Storage.UsePathStyle,
		PublicURL:    cfg.Storage.PublicURL,
		FilesBucket:  cfg.Storage.FilesBucket,
		ImagesBucket: cfg.Storage.ImagesBucket,
	})
	if err != nil {
		return fmt.Errorf("setting up object storage: %w", err)
	}
	if err := store.EnsureBuckets(ctx); err != nil {
		return fmt.Errorf("preparing buckets: %w", err)
	}

	// Image processing runs on libvips for the life of the process
	imaging.Startup()
	defer imaging.Shutdown()

	// Initialize email service
	emailService, err := email.NewEmailService(cfg, email.Provider(cfg.EmailProvider))
	if err != nil {
		return fmt.Errorf("initializing email service: %w", err)
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	factorRepo := repository.NewUserFactorRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	opportunityRepo := repository.NewOpportunityRepository(db)
	accessRepo := repository.NewAccessRepository(db)
	fileRepo := repository.NewFileRepository(db)
	auditLogRepo := repository.NewAuditLogRepository(db)

	// Initialize auth services
	passwordHasher := auth.NewPasswordHasher()
	tokenManager := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)
	sessionStore := auth.NewRedisSessionStore(redisClient)
	allowList := auth.ParseAdminAllowList(cfg.AdminEmailWhitelist)
	if allowList.Len() == 0 {
		logger.Warn("admin allow-list is empty; admin sign-in is disabled")
	}
	cookies := auth.CookieWriter{Secure: cfg.IsProduction()}

	recorder := audit.NewRepositoryRecorder(auditLogRepo)

	// Initialize services
	identityService := service.NewIdentityService(
		userRepo,
		profileRepo,
		service.NewUserFactorService(factorRepo, passwordHasher),
		tokenManager,
		sessionStore,
		allowList,
		mailer.NewSignupMailer(emailService, "Dealroom"),
		cfg.BaseURL,
	)
	opportunityService := service.NewOpportunityService(opportunityRepo, accessRepo, fileRepo, store, recorder)
	accessService := service.NewAccessService(accessRepo, opportunityRepo, fileRepo, recorder)
	fileService := service.NewFileService(fileRepo, accessRepo, opportunityService, store, recorder)
	imageService := service.NewImageService(imaging.NewVipsProcessor(), store)
	profileService := service.NewProfileService(profileRepo, allowList)
	dashboardService := service.NewDashboardService(opportunityRepo, profileRepo)
	auditLogService := service.NewAuditLogService(auditLogRepo)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(identityService, cookies)
	opportunityHandler := handler.NewOpportunityHandler(opportunityService)
	accessHandler := handler.NewAccessHandler(accessService)
	fileHandler := handler.NewFileHandler(fileService, imageService, cfg.Upload.MaxBytes)
	profileHandler := handler.NewProfileHandler(profileService)
	adminHandler := handler.NewAdminHandler(profileService, dashboardService, auditLogService)

	authenticator := middleware.NewAuthenticator(identityService, cookies)

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := middleware.NewMetrics(registry)

	// Create router
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(loggingMiddleware(logger))
	r.Use(recoveryMiddleware(logger))
	r.Use(metrics.Middleware)
	r.Use(middleware.AuditContext)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})
	r.Handle("/metrics", metrics.Handler())

	// Email confirmation links land here
	r.Get("/auth/callback", authHandler.CallbackHandler)
	r.Get("/admin/auth/callback", authHandler.AdminCallbackHandler)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Route("/auth", func(r chi.Router) {
			r.Post("/signout", authHandler.SignoutHandler)

			r.Group(func(r chi.Router) {
				r.Use(chimw.AllowContentType("application/json"))

				r.Post("/signup", authHandler.SignupHandler)
				r.Post("/signin", authHandler.SigninHandler)
				r.Post("/admin/signup", authHandler.AdminSignupHandler)
				r.Post("/admin/signin", authHandler.AdminSigninHandler)
			})
		})

		r.Get("/featured/opportunities", opportunityHandler.FeaturedOpportunities)

		// Onboarding
		r.Route("/profile", func(r chi.Router) {
			r.Use(chimw.AllowContentType("application/json"))

			r.With(authenticator.RequireRole(policy.RoleInvestor)).Post("/create", profileHandler.CreateProfile)
			r.With(authenticator.RequireSession(auth.MarkerAdmin)).Post("/admin/create", profileHandler.CreateAdminProfile)
		})

		// Investor routes
		r.Route("/user", func(r chi.Router) {
			r.Use(authenticator.RequireRole(policy.RoleInvestor))

			r.Get("/opportunities", opportunityHandler.UserOpportunities)
			r.Get("/opportunities/{id}", opportunityHandler.UserOpportunity)
			r.Get("/opportunities/{id}/files", fileHandler.UserFiles)
		})

		// Admin routes
		r.Route("/admin", func(r chi.Router) {
			r.Use(authenticator.RequireRole(policy.RoleAdmin))

			// Multipart uploads
			r.Post("/files/upload", fileHandler.UploadFile)
			r.Post("/opportunities/images", fileHandler.UploadImage)

			r.Group(func(r chi.Router) {
				r.Use(chimw.AllowContentType("application/json"))

				r.Get("/dashboard", adminHandler.Dashboard)
				r.Get("/users", adminHandler.ListUsers)
				r.Get("/audit-logs", adminHandler.AuditLogs)

				r.Get("/preview/opportunities", opportunityHandler.PreviewOpportunities)
				r.Get("/preview/opportunities/{id}", opportunityHandler.PreviewOpportunity)

				r.Route("/opportunities", func(r chi.Router) {
					r.Get("/", opportunityHandler.ListOpportunities)
					r.Post("/", opportunityHandler.CreateOpportunity)
					r.Put("/images", opportunityHandler.AddImage)

					r.Route("/{id}", func(r chi.Router) {
						r.Get("/", opportunityHandler.GetOpportunity)
						r.Put("/", opportunityHandler.UpdateOpportunity)
						r.Patch("/", opportunityHandler.PatchOpportunity)
						r.Delete("/", opportunityHandler.DeleteOpportunity)

						r.Get("/access", accessHandler.GetOpportunityAccess)
						r.Put("/access", accessHandler.PutOpportunityAccess)

						r.Get("/files", fileHandler.ListFiles)
						r.Delete("/files", fileHandler.DeleteFile)
						r.Put("/files/{fileId}/visibility", fileHandler.SetFileVisibility)
						r.Get("/files/{fileId}/access", accessHandler.GetFileAccess)
						r.Put("/files/{fileId}/access", accessHandler.PutFileAccess)
					})
				})
			})
		})
	})

	// Web pages
	if cfg.WebDir != "" {
		r.With(authenticator.PageGuard).Handle("/*", http.FileServer(http.Dir(cfg.WebDir)))
	}

	// Create server
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Server error channel
	serverErrors := make(chan error, 1)

	// Start server
	go func() {
		logger.Info("server starting", "port", cfg.Server.Port, "env", cfg.Env)
		serverErrors <- srv.ListenAndServe()
	}()

	// Shutdown channel
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt)

	// Wait for shutdown or error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info("shutdown started", "signal", sig)

		// Give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		// Gracefully shutdown the server
		if err := srv.Shutdown(ctx); err != nil {
			// If shutdown times out, forcefully close
			srv.Close()
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
	}

	return nil
}

func setupDatabase(cfg *config.Config) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting database instance: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(25)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return db, nil
}

func loggingMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				logger.Info("request completed",
					"method", r.Method,
					"path", r.URL.Path,
					"duration", time.Since(start),
					"status", ww.Status(),
					"size", ww.BytesWritten(),
					"requestID", chimw.GetReqID(r.Context()),
				)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}

func recoveryMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					if rvr == http.ErrAbortHandler {
						panic(rvr)
					}

					logger.Error("panic recovered",
						"panic", rvr,
						"stack", string(debug.Stack()),
						"requestID", chimw.GetReqID(r.Context()),
					)

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					w.Write([]byte(`{"error":"error encountered"}`))
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
