package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tracer_study_backend/internal/config"
	"tracer_study_backend/internal/controller"
	"tracer_study_backend/internal/repository"
	"tracer_study_backend/internal/service"
	"tracer_study_backend/pkg/database"
	"tracer_study_backend/pkg/logger"
	"tracer_study_backend/pkg/monitoring"
	"tracer_study_backend/pkg/security"
	"tracer_study_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user       *repository.UserRepository
	respondent *repository.RespondentRepository
	survey     *repository.SurveyRepository
	graph      *repository.GraphRepository
	answer     *repository.AnswerRepository
	response   *repository.ResponseRepository
	blast      *repository.BlastRepository
}

type services struct {
	auth       *service.AuthService
	survey     *service.SurveyService
	builder    *service.BuilderService
	response   *service.ResponseService
	generation *service.GenerationService
	blast      *service.BlastService
	storage    *service.StorageService
	export     *service.ExportService
}

type controllers struct {
	auth     *controller.AuthController
	survey   *controller.SurveyController
	builder  *controller.BuilderController
	response *controller.ResponseController
	blast    *controller.BlastController
	export   *controller.ExportController
	health   *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

// ApplyConfig swaps in a reloaded config and notifies registered callbacks.
func (a *App) ApplyConfig(cfg *config.Config) {
	a.Config = cfg
	for _, callback := range a.configCallbacks {
		callback(cfg)
	}
	logger.Log.Info("Configuration reloaded")
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:       repository.NewUserRepository(db),
		respondent: repository.NewRespondentRepository(db),
		survey:     repository.NewSurveyRepository(db),
		graph:      repository.NewGraphRepository(db),
		answer:     repository.NewAnswerRepository(db),
		response:   repository.NewResponseRepository(db),
		blast:      repository.NewBlastRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.auth = service.NewAuthService(repos.user, repos.respondent, cfg)
	s.survey = service.NewSurveyService(repos.survey, repos.response, rdb)
	s.builder = service.NewBuilderService(repos.graph, repos.survey, repos.response)
	s.response = service.NewResponseService(repos.graph, repos.answer, repos.response, repos.respondent)
	s.generation = service.NewGenerationService(repos.survey, repos.graph, repos.response,
		repos.answer, repos.respondent, repos.user, logger.Log)
	s.blast = service.NewBlastService(repos.blast, repos.survey, repos.respondent,
		service.NewSMTPMailer(cfg.SMTP), logger.Log)
	s.export = service.NewExportService(repos.graph, repos.response, repos.answer,
		repos.respondent, s.storage, logger.Log)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		auth:     controller.NewAuthController(s.auth),
		survey:   controller.NewSurveyController(s.survey, s.response, s.generation),
		builder:  controller.NewBuilderController(s.builder),
		response: controller.NewResponseController(s.response, s.survey),
		blast:    controller.NewBlastController(s.blast),
		export:   controller.NewExportController(s.export),
		health:   controller.NewHealthController(db),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 10000
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// startBackgroundTasks runs the email blast scheduler: once a minute, every
// pending blast whose schedule has passed gets delivered.
func (a *App) startBackgroundTasks(s *services) {
	go func() {
		ticker := time.NewTicker(time.Minute)
		for range ticker.C {
			if _, err := s.blast.ProcessDueBlasts(time.Now()); err != nil {
				logger.Log.Error("blast scheduler error", zap.Error(err))
			}
		}
	}()
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
		log.Fatalf("Failed to initialize redis: %v", err)
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, rdb)
	app.services = services
	controllers := app.initControllers(services, db)

	monitoring.Init()

	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("tracer-study-backend", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		defer func() {
			if err := tp.Shutdown(context.Background()); err != nil {
				logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
			}
		}()
	}

	app.registerRoutes(router, controllers, repos, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	app.startBackgroundTasks(services)

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
