package app

import (
	"context"
	"errors"
	"fmt"
	"math_quest_backend/internal/config"
	"math_quest_backend/internal/controller"
	"math_quest_backend/internal/middleware"
	"math_quest_backend/internal/repository"
	"math_quest_backend/internal/service"
	"math_quest_backend/internal/util"
	"math_quest_backend/pkg/configwatcher"
	"math_quest_backend/pkg/database"
	"math_quest_backend/pkg/logger"
	"math_quest_backend/pkg/monitoring"
	"math_quest_backend/pkg/security"
	"math_quest_backend/pkg/tracing"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	tracer          *sdktrace.TracerProvider
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user     *repository.UserRepository
	concept  *repository.ConceptRepository
	problem  *repository.ProblemRepository
	attempt  *repository.AttemptRepository
	progress *repository.ProgressRepository
}

type services struct {
	auth       *service.AuthService
	storage    *service.StorageService
	concept    *service.ConceptService
	progress   *service.ProgressService
	practice   *service.PracticeService
	curriculum *service.CurriculumService
	user       *service.UserService
}

type controllers struct {
	auth     *controller.AuthController
	concept  *controller.ConceptController
	practice *controller.PracticeController
	progress *controller.ProgressController
	guest    *controller.GuestController
	admin    *controller.AdminController
	health   *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:     repository.NewUserRepository(db),
		concept:  repository.NewConceptRepository(db),
		problem:  repository.NewProblemRepository(db),
		attempt:  repository.NewAttemptRepository(db),
		progress: repository.NewProgressRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB, rdb *redis.Client) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.concept = service.NewConceptService(
		repos.concept,
		repos.problem,
		repos.progress,
		service.NewCatalogCache(rdb, cfg.Redis.CacheTTL()),
	)
	s.progress = service.NewProgressService(db, repos.progress, repos.attempt, repos.user, s.concept)
	s.practice = service.NewPracticeService(db, repos.problem, repos.attempt, s.concept, s.progress)
	s.auth = service.NewAuthService(repos.user, s.progress, cfg)
	s.user = service.NewUserService(repos.user)
	s.curriculum = service.NewCurriculumService(db, repos.concept, repos.problem, s.concept, cfg.Curriculum.SeedPath)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:     controller.NewAuthController(s.auth),
		concept:  controller.NewConceptController(s.concept, s.progress),
		practice: controller.NewPracticeController(s.practice),
		progress: controller.NewProgressController(s.progress),
		guest:    controller.NewGuestController(s.concept, s.practice),
		admin:    controller.NewAdminController(s.concept, s.curriculum, s.storage, s.user),
		health:   controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger())
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, window))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware(cfg.Tracing.ServiceName))
	}

	router.Use(monitoring.MetricsMiddleware())
}

// New 基于已经建立的连接组装应用，rdb 可以为空
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *App {
	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	app.services = app.initServices(repos, cfg, db, rdb)
	controllers := app.initControllers(app.services, db, rdb)

	monitoring.Init()

	if cfg.Server.Mode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers, cfg)

	if cfg.Storage.Type == util.StorageLocal {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	app.RegisterConfigCallback(func(newCfg *config.Config) {
		logger.SetMode(newCfg.Server.Mode)
		logger.Log.Info("Log level applied", zap.Stringer("level", logger.Level()))
	})

	return app
}

// NewApp 初始化日志、数据库、Redis 和追踪后组装应用
func NewApp(cfg *config.Config) (*App, error) {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode)
	if err != nil {
		return nil, fmt.Errorf("initialize database: %w", err)
	}

	// release 模式默认不自动迁移，需要 --migrate
	if cfg.Server.Mode != gin.ReleaseMode || cfg.ForceMigrate {
		if err := database.Migrate(db); err != nil {
			return nil, fmt.Errorf("migrate database: %w", err)
		}
		logger.Log.Info("Database migrated")
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("initialize redis: %w", err)
	}

	app := New(cfg, db, rdb)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(context.Background(), cfg.Tracing.ServiceName, cfg.Tracing.Endpoint, cfg.Tracing.Insecure)
		if err != nil {
			return nil, fmt.Errorf("initialize tracing: %w", err)
		}
		app.tracer = tp
	}

	if cfg.Curriculum.SeedOnStart {
		if _, err := app.SeedCurriculum(context.Background(), cfg.Curriculum.SeedPath); err != nil {
			return nil, fmt.Errorf("seed curriculum: %w", err)
		}
	}

	return app, nil
}

// SeedCurriculum 从 YAML 文件导入课程
func (a *App) SeedCurriculum(ctx context.Context, path string) (*service.SeedResult, error) {
	return a.services.curriculum.SeedFile(ctx, path)
}

func (a *App) watchConfig(ctx context.Context) {
	if a.Config.ConfigFile == "" || len(a.configCallbacks) == 0 {
		return
	}
	go func() {
		err := configwatcher.WatchConfig(ctx, a.Config.ConfigFile, func(newCfg *config.Config) {
			for _, callback := range a.configCallbacks {
				callback(newCfg)
			}
		})
		if err != nil {
			logger.Log.Error("Config watcher stopped", zap.Error(err))
		}
	}()
}

func (a *App) Run() error {
	srv := &http.Server{
		Addr:              ":" + a.Config.Server.Port,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.watchConfig(ctx)

	errCh := make(chan error, 1)
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
	}
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	if a.tracer != nil {
		if err := a.tracer.Shutdown(shutdownCtx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		a.Redis.Close()
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		sqlDB.Close()
	}

	logger.Log.Info("Server exiting")
	return nil
}
