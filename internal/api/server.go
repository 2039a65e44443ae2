package api

import (
	"fmt"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/vietanh2810/medal-board-api/docs"
	v1 "github.com/vietanh2810/medal-board-api/internal/api/handler/v1"
	"github.com/vietanh2810/medal-board-api/internal/api/middleware"
	"github.com/vietanh2810/medal-board-api/internal/config"
	"github.com/vietanh2810/medal-board-api/internal/domain"
	"github.com/vietanh2810/medal-board-api/internal/eventbus"
	"github.com/vietanh2810/medal-board-api/internal/metrics"
	"github.com/vietanh2810/medal-board-api/internal/repository"
	"github.com/vietanh2810/medal-board-api/internal/repository/cache"
	"github.com/vietanh2810/medal-board-api/internal/repository/dao"
	"github.com/vietanh2810/medal-board-api/internal/service"
)

const basePath = "/api"

// Deps are the process-wide collaborators shared by every service.
type Deps struct {
	Bus     *eventbus.Bus
	Cache   cache.ScoreboardCache
	Metrics *metrics.Metrics
}

// publisher keeps a missing bus from becoming a non-nil interface.
func (d Deps) publisher() service.ChangePublisher {
	if d.Bus == nil {
		return nil
	}
	return d.Bus
}

type Server struct {
	Config *config.AppConfig
	Router *gin.Engine

	Scoreboard *service.ScoreboardService
	Roster     *service.RosterService
	Live       *v1.LiveHandler

	metrics *metrics.Metrics
}

// Handlers groups everything MountHandlers routes to.
type Handlers struct {
	Auth       *v1.AuthHandler
	Settings   *v1.SettingsHandler
	Roster     *v1.RosterHandler
	Ledger     *v1.LedgerHandler
	Scoreboard *v1.ScoreboardHandler
	Live       *v1.LiveHandler
	Health     *v1.HealthHandler
}

func NewServer(conf *config.AppConfig, db *gorm.DB, deps Deps) (*Server, error) {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()

	s := &Server{
		Config:  conf,
		Router:  engine,
		metrics: deps.Metrics,
	}

	s.MountMiddlewares()

	authHandler, err := s.initAuthHandler()
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("db.DB -> %w", err)
	}

	pub := deps.publisher()
	settingsRepo := repository.NewSettingsRepository(dao.NewSettingsDAO(db, repository.SettingsDefaults(scoringDefaults(conf.Scoring))))
	rosterRepo := repository.NewRosterRepository(dao.NewRosterDAO(db))
	ledgerRepo := repository.NewLedgerRepository(dao.NewLedgerDAO(db))

	settings := service.NewSettingsService(settingsRepo, pub)
	roster := service.NewRosterService(rosterRepo, pub, deps.Metrics)
	ledger := service.NewLedgerService(ledgerRepo, rosterRepo, settings, pub, deps.Metrics)

	s.Roster = roster
	s.Scoreboard = service.NewScoreboardService(rosterRepo, ledgerRepo, deps.Cache, deps.Metrics)
	s.Live = v1.NewLiveHandler(s.Scoreboard, conf.API.AllowedCORSDomains)
	s.Scoreboard.OnInvalidated(s.Live.OnChange)
	submission := service.NewSubmissionService(rosterRepo, ledgerRepo, settingsRepo, s.Scoreboard, pub, deps.Metrics, maxNonWinnerUnits(conf.Scoring))

	s.MountHandlers(Handlers{
		Auth:       authHandler,
		Settings:   v1.NewSettingsHandler(settings),
		Roster:     v1.NewRosterHandler(roster),
		Ledger:     v1.NewLedgerHandler(ledger, submission),
		Scoreboard: v1.NewScoreboardHandler(s.Scoreboard),
		Live:       s.Live,
		Health:     v1.NewHealthHandler(sqlDB),
	})

	return s, nil
}

func scoringDefaults(conf *config.ScoringConfig) domain.ScoreSettings {
	defaults := domain.DefaultScoreSettings()
	if conf == nil {
		return defaults
	}

	defaults.GoldPoints = conf.GoldPoints
	defaults.SilverPoints = conf.SilverPoints
	defaults.BronzePoints = conf.BronzePoints
	defaults.NonWinnerPoints = conf.NonWinnerPoints
	return defaults
}

func maxNonWinnerUnits(conf *config.ScoringConfig) int {
	if conf == nil {
		return domain.DefaultMaxNonWinnerUnits
	}
	return conf.MaxNonWinnerUnits
}

func (s *Server) initAuthHandler() (*v1.AuthHandler, error) {
	svc, err := service.NewAuthService(s.Config.Admin.Username, s.Config.Admin.Password)
	if err != nil {
		return nil, fmt.Errorf("service.NewAuthService -> %w", err)
	}

	return v1.NewAuthHandler(s.Config.API, svc), nil
}

func (s *Server) MountMiddlewares() {
	// Logger and Recovery are needed unless we use gin.Default().
	s.Router.Use(gin.Logger())
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
	if s.metrics != nil {
		s.Router.Use(middleware.Metrics(s.metrics))
	}
}

func (s *Server) MountHandlers(h Handlers) {
	public := s.Router.Group(basePath)
	{
		public.POST("/auth/login", h.Auth.HandleLogin)

		public.GET("/score-settings", h.Settings.HandleGetSettings)

		public.GET("/categories", h.Roster.HandleListCategories)
		public.GET("/teams", h.Roster.HandleListTeams)
		public.GET("/teams/:id", h.Roster.HandleGetTeam)
		public.GET("/events", h.Roster.HandleListEvents)
		public.GET("/events/results", h.Scoreboard.HandleGetEventResults)
		public.GET("/events/:id", h.Roster.HandleGetEvent)
		public.GET("/events/:id/result", h.Scoreboard.HandleGetEventResult)

		public.GET("/medals", h.Ledger.HandleListMedals)
		public.GET("/medals/:id", h.Ledger.HandleGetMedal)

		public.GET("/scoreboard", h.Scoreboard.HandleGetScoreboard)
		public.GET("/scoreboard/live", h.Live.HandleLive)
	}

	admin := s.Router.Group(basePath, middleware.NewAuthenticator(s.Config.API.JWTSigningKey).VerifyJWT())
	{
		admin.PUT("/score-settings", h.Settings.HandleUpdateSettings)

		admin.POST("/categories", h.Roster.HandleCreateCategory)
		admin.DELETE("/categories/:id", h.Roster.HandleDeleteCategory)

		admin.POST("/teams", h.Roster.HandleCreateTeam)
		admin.PUT("/teams/:id", h.Roster.HandleUpdateTeam)
		admin.DELETE("/teams/:id", h.Roster.HandleDeleteTeam)

		admin.POST("/events", h.Roster.HandleCreateEvent)
		admin.PUT("/events/:id", h.Roster.HandleUpdateEvent)
		admin.POST("/events/:id", h.Roster.HandleSetEventStatus)
		admin.DELETE("/events/:id", h.Roster.HandleDeleteEvent)
		admin.POST("/events/:id/results", h.Ledger.HandleSubmitResults)

		admin.POST("/medals", h.Ledger.HandleCreateMedal)
		admin.DELETE("/medals/:id", h.Ledger.HandleDeleteMedal)
	}

	s.Router.GET("/", v1.HandleHealthcheck)
	if h.Health != nil {
		s.Router.GET("/healthz", h.Health.HandleReadiness)
	}
	if s.metrics != nil {
		s.Router.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	docs.SwaggerInfo.Title = "Medal Board API"
	docs.SwaggerInfo.Description = "Medal ledger and scoreboard for multi-event team competitions."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}
