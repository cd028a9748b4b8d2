package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"taskboard/backend/internal/auth"
	"taskboard/backend/internal/cache"
	"taskboard/backend/internal/config"
	"taskboard/backend/internal/database"
	"taskboard/backend/internal/handlers"
	"taskboard/backend/internal/middleware"
	"taskboard/backend/internal/monitoring"
	"taskboard/backend/internal/services"
	"taskboard/backend/internal/worker"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	redisCache := cache.NewRedisCache(&cache.Config{
		Addr:         cfg.GetRedisAddr(),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		MaxRetries:   cfg.Redis.MaxRetries,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	defer redisCache.Close()

	issuer := auth.NewTokenIssuer(
		cfg.Auth.JWTSecret,
		cfg.Auth.Issuer,
		cfg.Auth.AccessTokenTTL,
		cfg.Auth.RefreshTokenTTL,
	)

	bgWorker := worker.NewWorker(worker.WorkerConfig{
		RedisClient: redisCache.Client(),
		Queues:      cfg.Worker.Queues,
	})
	bgWorker.RegisterHandler(worker.JobTypeOverdueScan, worker.OverdueScanHandler(db, redisCache))
	bgWorker.Start(cfg.Worker.Concurrency)
	defer bgWorker.Stop()

	schedulerCtx, stopScheduler := context.WithCancel(context.Background())
	defer stopScheduler()
	worker.ScheduleOverdueScans(schedulerCtx, worker.NewJobQueue(redisCache.Client()),
		cfg.Worker.Queues[0], cfg.Worker.SweepInterval)

	router := setupRouter(cfg, db, issuer, redisCache)

	server := &http.Server{
		Addr:         cfg.GetServerAddr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Printf("listening on %s", cfg.GetServerAddr())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("forced shutdown: %v", err)
	}
}

func setupRouter(cfg *config.Config, db *gorm.DB, issuer *auth.TokenIssuer, redisCache *cache.RedisCache) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.RecoveryWithLog())
	router.Use(monitoring.MetricsMiddleware())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	if cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(
			cfg.RateLimit.RequestsPerMin,
			cfg.RateLimit.BurstSize,
			cfg.RateLimit.CleanupInterval,
		)
		router.Use(limiter.Middleware())
	}

	registerService := services.NewRegisterService(cfg.Auth.BCryptCost)
	authService := services.NewAuthService(issuer)
	userService := services.NewUserService()

	var taskService services.TaskService = services.NewTaskService()
	taskService = services.NewCachedTaskService(taskService, redisCache)

	registerHandler := handlers.NewRegisterHandler(db, registerService)
	authHandler := handlers.NewAuthHandler(db, authService)
	refreshHandler := handlers.NewRefreshHandler(authService)
	userHandler := handlers.NewUserHandler(db, userService)
	taskHandler := handlers.NewTaskHandler(db, taskService)

	authenticated := middleware.Authentication(issuer)

	users := router.Group("/users")
	{
		users.POST("/register/", registerHandler.Registration)
		users.POST("/login/", authHandler.Login)
		users.POST("/login/refresh/", refreshHandler.Refresh)
		users.GET("/", authenticated, userHandler.GetUsers)
	}

	tasks := router.Group("/tasks", authenticated)
	{
		tasks.GET("/", taskHandler.GetTasks)
		tasks.POST("/", taskHandler.CreateTask)
		tasks.GET("/:id/", taskHandler.GetTaskByID)
		tasks.PUT("/:id/", taskHandler.UpdateTask)
		tasks.PATCH("/:id/", taskHandler.UpdateTask)
		tasks.DELETE("/:id/", taskHandler.DeleteTask)
	}

	healthChecker := monitoring.NewHealthChecker()
	healthChecker.Register("database", func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	})
	healthChecker.Register("redis", func(ctx context.Context) error {
		return redisCache.Ping(ctx)
	})

	router.GET("/healthz", healthChecker.Handler())
	router.GET("/metrics", monitoring.MetricsHandler())

	return router
}
