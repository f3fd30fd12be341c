package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"messaging-service/internal/auth"
	"messaging-service/internal/config"
	"messaging-service/internal/db"
	"messaging-service/internal/handlers"
	"messaging-service/internal/middleware"
	"messaging-service/internal/observability"
	"messaging-service/internal/rabbitmq"
	"messaging-service/internal/repositories"
	"messaging-service/internal/telemetry"
	"messaging-service/internal/ws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	database, err := db.Connect(cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}

	shutdownTracing, err := observability.SetupTracing(context.Background(), cfg.OTLPEndpoint, "messaging-service")
	if err != nil {
		log.Fatalf("failed to set up tracing: %v", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Printf("tracing shutdown: %v", err)
		}
	}()

	eventPublisher, err := observability.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	if err != nil {
		log.Printf("amqp events disabled: %v", err)
	} else {
		observability.SetPublisher(eventPublisher)
		defer eventPublisher.Close()
	}

	auditPublisher := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	defer auditPublisher.Close()
	auditEmitter := telemetry.NewAuditEmitter(auditPublisher, cfg.AuditRoutingKey, "messaging-service", cfg.Environment)

	verifier := auth.NewJWTVerifier(cfg.JWTSecret)

	groupRepo := repositories.NewGroupRepo(database)
	directRepo := repositories.NewDirectMessageRepo(database)
	groupMsgRepo := repositories.NewGroupMessageRepo(database)

	hub := ws.NewHub()

	groupHandler := handlers.NewGroupHandler(groupRepo, hub)
	messageHandler := handlers.NewMessageHandler(directRepo, groupMsgRepo, groupRepo)
	sessionHandler := ws.NewSessionHandler(hub, verifier, groupRepo, directRepo, groupMsgRepo)

	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("messaging-service"))
	router.Use(observability.HTTPMetricsMiddleware())

	authMiddleware := middleware.AuthMiddleware(verifier)

	router.POST("/groups", authMiddleware, groupHandler.CreateGroup)
	router.GET("/groups", authMiddleware, groupHandler.ListGroups)
	router.GET("/groups/:group_id", authMiddleware, groupHandler.GetGroup)
	router.GET("/groups/:group_id/members", authMiddleware, groupHandler.GetGroupMembers)
	router.POST("/groups/:group_id/members/:user_id", authMiddleware, groupHandler.AddMember)
	router.DELETE("/groups/:group_id/members/:user_id", authMiddleware, groupHandler.RemoveMember)
	router.DELETE("/groups/:group_id/leave", authMiddleware, groupHandler.LeaveGroup)
	router.PUT("/groups/:group_id/owner/:user_id", authMiddleware, groupHandler.PassOwnership)

	router.GET("/messages/history/dm/:user_id", authMiddleware, messageHandler.GetDirectHistory)
	router.GET("/messages/history/group/:group_id", authMiddleware, messageHandler.GetGroupHistory)

	router.GET("/ws/messages", sessionHandler.Handle)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	handlers.RegisterDebugRoutes(router, auditEmitter, cfg.DebugRoutes)

	log.Printf("rabbitmq audit publisher mode=%s", rabbitmq.PublisherMode(auditPublisher))

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
