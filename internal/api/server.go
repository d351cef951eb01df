package api

import (
	"fmt"
	"log"
	"net/http"

	"tiketin/internal/cache"
	"tiketin/internal/config"
	"tiketin/internal/database"
	"tiketin/internal/external"
	"tiketin/internal/handlers"
	"tiketin/internal/messaging"
	"tiketin/internal/middleware"
	"tiketin/internal/repository"
	"tiketin/internal/search"
	"tiketin/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server is the HTTP API server with all its backing connections
type Server struct {
	router   *gin.Engine
	config   *config.Config
	db       *database.DB
	nats     *messaging.NATSClient
	valkey   *cache.ValkeyClient
	services *service.Services
	repos    *repository.Repositories
}

// NewServer wires the full service stack and returns a ready-to-run server
func NewServer(cfg *config.Config) *Server {
	gin.SetMode(cfg.GinMode)

	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := db.RunMigrations(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	natsClient, err := messaging.NewNATSClient(cfg.NATS)
	if err != nil {
		log.Fatalf("Failed to connect to NATS: %v", err)
	}

	// The cache is an optimization plus the fail-open fallback store; the
	// API still works without it.
	valkeyClient, err := cache.NewValkeyClient(cfg.Valkey)
	if err != nil {
		log.Printf("Valkey unavailable, running without cache: %v", err)
		valkeyClient = nil
	}

	paymentClient := external.NewPaymentClient(cfg.Payment)

	var repos *repository.Repositories
	esClient, err := search.NewElasticsearchClient(config.LoadElasticsearchConfig())
	if err != nil {
		log.Printf("Elasticsearch unavailable, event search degraded: %v", err)
		repos = repository.NewRepositories(db)
	} else {
		repos = repository.NewRepositoriesWithElasticsearch(db, esClient)
	}

	services := service.NewServices(repos, natsClient, valkeyClient, paymentClient, cfg.Currency)

	router := gin.New()

	router.Use(middleware.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.Logger())
	router.Use(middleware.Metrics())

	server := &Server{
		router:   router,
		config:   cfg,
		db:       db,
		nats:     natsClient,
		valkey:   valkeyClient,
		services: services,
		repos:    repos,
	}

	server.setupRoutes()

	return server
}

func (s *Server) setupRoutes() {
	h := handlers.NewHandlers(s.services, s.valkey)

	api := s.router.Group("/api")
	api.Use(middleware.BasicAuth(s.repos.Users, s.valkey))
	{
		events := api.Group("/events")
		{
			events.POST("", h.CreateEvent)
			events.GET("", h.ListEvents)
			events.GET("/:eventId/schedules", h.GetEventSchedules)
		}

		tickets := api.Group("/tickets")
		{
			tickets.GET("/:ticketTypeId/availability", h.GetAvailability)
		}

		api.GET("/event/quota/:ticketTypeId", h.GetQuota)

		user := api.Group("/user")
		{
			user.POST("/event", h.CreateSinglePurchase)
			user.GET("/event", h.ListPurchases)
			user.POST("/event/recurring", h.CreateRecurringPurchase)
			user.DELETE("/event/:purchaseId", h.CancelPurchase)

			user.PUT("/session/selection", h.SaveSelection)
			user.GET("/session/selection", h.GetSelection)
		}

		payments := api.Group("/payments")
		{
			payments.POST("/create", h.CreatePayment)
			payments.GET("/success", h.NotifyPaymentCompleted)
			payments.GET("/fail", h.NotifyPaymentFailed)
			payments.POST("/notifications", h.OnPaymentUpdates)
		}
	}

	s.router.GET("/health", s.healthCheck)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

func (s *Server) healthCheck(c *gin.Context) {
	dbHealth := s.db.HealthCheck(c.Request.Context())

	status := http.StatusOK
	if dbHealth.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, gin.H{
		"status":   dbHealth.Status,
		"service":  "tiketin-api",
		"version":  "1.0.0",
		"database": dbHealth,
	})
}

// Run starts the HTTP server
func (s *Server) Run() error {
	addr := fmt.Sprintf(":%s", s.config.Port)
	return s.router.Run(addr)
}

// GetRouter exposes the router for tests
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}

// Cleanup closes the backing connections
func (s *Server) Cleanup() error {
	if s.nats != nil {
		if err := s.nats.Close(); err != nil {
			log.Printf("Error closing NATS connection: %v", err)
		}
	}

	if s.valkey != nil {
		if err := s.valkey.Close(); err != nil {
			log.Printf("Error closing Valkey connection: %v", err)
		}
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			log.Printf("Error closing database connection: %v", err)
			return err
		}
	}

	return nil
}
