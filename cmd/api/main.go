package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"classtrack/internal/account"
	"classtrack/internal/announcement"
	"classtrack/internal/attendance"
	"classtrack/internal/auth"
	"classtrack/internal/cloudinary"
	"classtrack/internal/config"
	"classtrack/internal/course"
	"classtrack/internal/httpmiddleware"
	"classtrack/internal/livecache"
	"classtrack/internal/queue"
	"classtrack/internal/report"
	"classtrack/internal/session"
	"classtrack/internal/store"
)

// api bundles the services the handlers call into. Every handler reads the
// acting account from verified claims and passes it down explicitly.
type api struct {
	cfg      config.App
	accounts *account.Service
	courses  *course.Service
	sessions *session.Service
	att      *attendance.Service
	ann      *announcement.Service
	reports  *report.Service
	tokens   *auth.TokenStore
	q        queue.Queue
	cdn      *cloudinary.Client
	live     *livecache.Cache
}

func main() {
	cfg := config.Load()

	if cfg.Env == "production" || cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg); err != nil {
		log.Fatalf("http server failed: %v", err)
	}
}

func runHTTP(cfg config.App) error {
	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		if db == nil {
			return err
		}
		log.Printf("warning: db not reachable: %v", err)
	}
	defer db.Close()

	redisClient := store.NewRedis(cfg.RedisAddr)

	// The memory backend never leaves this process, so published marks are
	// only seen by an in-process consumer. It exists for development runs
	// without Redis; the worker binary refuses it.
	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, "classtrack:marks")
	}

	// Cloudinary client (nil when not configured)
	var cdnClient *cloudinary.Client
	if cfg.CloudinaryCloudName != "" && cfg.CloudinaryAPIKey != "" && cfg.CloudinaryAPISecret != "" {
		cdnClient = cloudinary.New(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.CloudinaryFolder)
		log.Println("Cloudinary configured:", cfg.CloudinaryCloudName)
	} else {
		log.Println("Cloudinary not configured (CLOUDINARY_CLOUD_NAME / API_KEY / API_SECRET not set)")
	}

	a := &api{
		cfg:      cfg,
		accounts: account.NewService(account.NewRepository(db.Client)),
		courses:  course.NewService(course.NewRepository(db.Client)),
		sessions: session.NewService(session.NewRepository(db.Client)),
		att:      attendance.NewService(attendance.NewRepository(db.Client)),
		ann:      announcement.NewService(announcement.NewRepository(db.Client)),
		reports:  report.NewService(report.NewRepository(db.Client)),
		tokens:   auth.NewTokenStore(db.Client),
		q:        q,
		cdn:      cdnClient,
		live:     livecache.New(redisClient.Client),
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	r.Use(httpmiddleware.CORS())
	r.Use(httpmiddleware.SecurityHeaders())
	r.Use(httpmiddleware.NewLimiter(cfg.RateLimitPerMin).Gin(nil))

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/healthz", func(c *gin.Context) {
		redisHealthy := redisClient.Healthy(c.Request.Context())
		dbHealthy := db.Healthy(c.Request.Context())
		status := http.StatusOK
		if !redisHealthy || !dbHealthy {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"status": "ok", "redis": redisHealthy, "db": dbHealthy})
	})

	a.registerAuthRoutes(r)

	authed := r.Group("/v1",
		auth.RequireAuth(cfg.JWTSigningKey, cfg.JWTIssuer),
		httpmiddleware.NewLimiter(cfg.RateLimitPerMin).Gin(auth.AccountID))
	a.registerAccountRoutes(authed)
	a.registerCourseRoutes(authed)
	a.registerAttendanceRoutes(authed)
	a.registerAnnouncementRoutes(authed)

	admin := r.Group("/v1/admin",
		auth.RequireAuth(cfg.JWTSigningKey, cfg.JWTIssuer),
		auth.RequireRole("admin"))
	a.registerAdminRoutes(admin)

	// Graceful shutdown
	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting server on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Give outstanding requests 10 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced shutdown: %v", err)
	}

	log.Println("Server exited")
	return nil
}
