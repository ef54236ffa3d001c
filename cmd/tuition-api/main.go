package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/tuition-center-api/api/swagger"
	"github.com/noah-isme/tuition-center-api/internal/handler"
	internalmiddleware "github.com/noah-isme/tuition-center-api/internal/middleware"
	"github.com/noah-isme/tuition-center-api/internal/repository"
	"github.com/noah-isme/tuition-center-api/internal/service"
	"github.com/noah-isme/tuition-center-api/pkg/cache"
	"github.com/noah-isme/tuition-center-api/pkg/config"
	"github.com/noah-isme/tuition-center-api/pkg/database"
	"github.com/noah-isme/tuition-center-api/pkg/events"
	"github.com/noah-isme/tuition-center-api/pkg/jobs"
	"github.com/noah-isme/tuition-center-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/tuition-center-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/tuition-center-api/pkg/middleware/requestid"
)

// @title Tuition Center API
// @version 1.0.0
// @description Back office for a private tuition center: teachers, classes, subjects, students and enrollments.
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close()

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, continuing without cache", zap.Error(err))
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	metrics := service.NewMetricsService()
	bus, queue := newEventBus(cfg.Events, redisClient, metrics, logr)
	queue.Start(ctx)
	defer queue.Stop()

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metrics))

	ops := handler.NewMetricsHandler(metrics, db)
	r.GET("/health", ops.Health)
	r.GET("/ready", ops.Ready)
	r.GET("/metrics", ops.Prometheus)
	if cfg.Docs.Enabled && cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	router := buildRouter(cfg, db, redisClient, bus, metrics, logr)
	router.Register(r.Group(cfg.APIPrefix))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "prefix", cfg.APIPrefix)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}

func newEventBus(cfg config.EventsConfig, redisClient *redis.Client, metrics *service.MetricsService, logr *zap.Logger) (*events.Bus, *jobs.Queue) {
	bus := events.NewBus(logr)
	queue := jobs.NewQueue("events", bus.Dispatch, jobs.QueueConfig{
		Workers:    cfg.Workers,
		BufferSize: cfg.BufferSize,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logr,
	})
	bus.Attach(queue)

	bus.Subscribe(events.AllEvents, "log", events.LogSubscriber(logr))
	bus.Subscribe(events.AllEvents, "metrics", events.SubscriberFunc(func(ctx context.Context, evt events.Event) error {
		metrics.ObserveEvent(evt.Name)
		return nil
	}))
	if redisClient != nil && cfg.RedisChannel != "" {
		bus.Subscribe(events.AllEvents, "redis", events.NewRedisForwarder(redisClient, cfg.RedisChannel))
	}
	return bus, queue
}

func buildRouter(cfg *config.Config, db *sqlx.DB, redisClient *redis.Client, bus *events.Bus, metrics *service.MetricsService, logr *zap.Logger) *handler.Router {
	validate := validator.New()

	users := repository.NewUserRepository(db)
	teachers := repository.NewTeacherRepository(db)
	classes := repository.NewClassRepository(db)
	subjects := repository.NewSubjectRepository(db)
	assignments := repository.NewSubjectAssignmentRepository(db)
	students := repository.NewStudentRepository(db)
	guardians := repository.NewGuardianRepository(db)
	enrollments := repository.NewEnrollmentRepository(db)

	var cacheSvc *service.CacheService
	if redisClient != nil {
		cacheSvc = service.NewCacheService(repository.NewCacheRepository(redisClient, logr), metrics, cfg.Dashboard.CacheTTL, logr, true)
	}

	authSvc := service.NewAuthService(users, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
	})
	dashboardSvc := service.NewDashboardService(repository.NewDashboardRepository(db), cacheSvc, metrics, cfg.Dashboard.CacheTTL, logr)
	hints := service.NewCodeHintService(map[string]service.CodeSource{
		service.HintClasses:     classes,
		service.HintSubjects:    subjects,
		service.HintAssignments: assignments,
		service.HintStudents:    students,
	}, logr)

	router := &handler.Router{
		Auth:               handler.NewAuthHandler(authSvc, cfg.APIPrefix),
		Users:              handler.NewUserHandler(service.NewUserService(users, validate, logr)),
		Teachers:           handler.NewTeacherHandler(service.NewTeacherService(teachers, classes, assignments, validate, logr)),
		Classes:            handler.NewClassHandler(service.NewClassService(classes, students, validate, logr), service.NewRosterService(classes, students, guardians, logr)),
		Subjects:           handler.NewSubjectHandler(service.NewSubjectService(subjects, assignments, validate, logr)),
		SubjectAssignments: handler.NewSubjectAssignmentHandler(service.NewSubjectAssignmentService(assignments, bus, validate, logr)),
		Students:           handler.NewStudentHandler(service.NewStudentService(students, guardians, validate, logr)),
		Guardians:          handler.NewGuardianHandler(service.NewGuardianService(guardians, validate, logr)),
		Enrollments:        handler.NewEnrollmentHandler(service.NewEnrollmentService(enrollments, users, validate, logr)),
		Deletion:           handler.NewDeletionHandler(service.NewDeletionService(teachers, classes, subjects, users, metrics, logr)),
		Codes:              handler.NewCodeHintHandler(hints),
		Tokens:             authSvc,
		Audit:              users,
		Invalidate:         dashboardSvc.Invalidate,
		Logger:             logr,
	}
	if cfg.Dashboard.Enabled {
		router.Dashboard = handler.NewDashboardHandler(dashboardSvc)
	}
	return router
}
