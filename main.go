package main

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/schedule-app/backend/internal/config"
	"github.com/schedule-app/backend/internal/db"
	"github.com/schedule-app/backend/internal/handler"
	"github.com/schedule-app/backend/internal/observability"
	"github.com/schedule-app/backend/internal/service"
	"github.com/schedule-app/backend/internal/token"
	"github.com/sirupsen/logrus"
)

// @title Schedule App API
// @version 1.0
// @description Account and scheduling API for the Schedule App client.
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	// Optional; real deployments set env directly.
	_ = godotenv.Load()

	cfg := config.Load()

	codec, err := token.NewCodec(cfg.JWT)
	if err != nil {
		log.WithError(err).Fatal("token codec init failed")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := db.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		log.WithError(err).Fatal("postgres init failed")
	}
	defer pool.Close()

	store := &db.Postgres{Pool: pool}
	if err := store.EnsureSchema(ctx); err != nil {
		log.WithError(err).Fatal("schema init failed")
	}

	authService := service.NewAuthService(store, codec, log)
	scheduleService := service.NewScheduleService(store, log)

	if err := authService.SeedAdmin(ctx, cfg.Admin.Username, cfg.Admin.Password, cfg.Admin.Email); err != nil {
		log.WithError(err).Fatal("admin seed failed")
	}

	metrics := observability.NewMetrics()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(handler.RequestLogger(log))
	router.Use(handler.CORSMiddleware(cfg.HTTP.AllowedOrigins))
	router.Use(metrics.Middleware())

	accountHandler := handler.NewAccountHandler(authService, log)
	scheduleHandler := handler.NewScheduleHandler(scheduleService, log)

	router.GET("/", handler.Root)
	router.GET("/ping", handler.Ping)
	router.GET("/openapi.json", handler.OpenAPIDoc)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	account := router.Group("/api/account")
	{
		account.POST("/register", accountHandler.Register)
		account.POST("/login", accountHandler.Login)
		account.POST("/logout", accountHandler.Logout)

		protected := account.Group("")
		protected.Use(handler.AuthMiddleware(codec, log))
		protected.GET("/users", accountHandler.ListUsers)
		protected.PUT("/change-password", accountHandler.ChangePassword)
		protected.PUT("/update-profile", accountHandler.UpdateProfile)
	}

	schedule := router.Group("/api/schedule")
	schedule.Use(handler.AuthMiddleware(codec, log))
	{
		schedule.GET("/events", scheduleHandler.ListEvents)
		schedule.POST("/events", scheduleHandler.CreateEvent)
		schedule.GET("/events/:id", scheduleHandler.GetEvent)
		schedule.PUT("/events/:id", scheduleHandler.UpdateEvent)
		schedule.DELETE("/events/:id", scheduleHandler.DeleteEvent)
	}

	log.WithField("addr", cfg.HTTP.Addr).Info("starting server")
	if err := router.Run(cfg.HTTP.Addr); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}
