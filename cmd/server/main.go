package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rabbitmq/amqp091-go"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"order-confirmation-service/internal/config"
	"order-confirmation-service/internal/controller"
	"order-confirmation-service/internal/middleware"
	"order-confirmation-service/internal/rabbit"
	"order-confirmation-service/internal/repository"
	"order-confirmation-service/internal/service"
	"order-confirmation-service/internal/whatsapp"
)

func main() {
	cfg := config.Load()

	// Conexión a MongoDB
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal(err)
	}
	db := client.Database(cfg.MongoDBName)

	// Repositorios y servicios
	orderRepo := repository.NewMongoOrderRepository(db)
	chatRepo := repository.NewMongoChatRepository(db)

	gateway := whatsapp.NewClient(cfg)
	orderService := service.NewOrderService(orderRepo, cfg.DefaultCountryCode, cfg.StrictPhoneMatch)
	chatService := service.NewChatService(chatRepo, orderService, cfg.DefaultCountryCode)
	intakeService := service.NewOrderIntakeService(orderService, chatService, gateway, cfg)
	interactionService := service.NewInteractionService(orderService, chatService, gateway)

	// Handlers
	webhookCtl := controller.NewWebhookController(intakeService, interactionService, cfg.VerifyToken)
	adminCtl := controller.NewAdminController(orderService, chatService, gateway)

	// Router
	r := gin.Default()
	r.Use(middleware.CORS())

	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Servidor funcionando correctamente.")
	})

	// Webhook del proveedor de mensajería
	r.GET("/api/webhook", webhookCtl.Verify)
	r.POST("/api/webhook", webhookCtl.Receive)

	// API del panel de administración
	r.GET("/api/get-orders", adminCtl.GetOrders)
	r.GET("/api/get-order", adminCtl.GetOrder)
	r.DELETE("/api/delete-order", adminCtl.DeleteOrder)
	r.GET("/api/get-chat", adminCtl.GetChat)
	r.POST("/api/mark-messages-read", adminCtl.MarkMessagesRead)
	r.POST("/api/send-message", adminCtl.SendMessage)

	// Conexión a RabbitMQ (ingesta alternativa de pedidos, opcional)
	if cfg.RabbitURL != "" {
		conn, err := amqp091.Dial(cfg.RabbitURL)
		if err != nil {
			log.Fatalf("Error conectando a RabbitMQ: %v", err)
		}
		defer conn.Close()

		ch, err := conn.Channel()
		if err != nil {
			log.Fatalf("Error creando canal en RabbitMQ: %v", err)
		}
		rabbit.SetupConsumers(ch, intakeService)
	}

	// Ejecutar servidor con apagado ordenado
	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}

	go func() {
		log.Printf("Order Confirmation Service ejecutándose en puerto %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-stopCtx.Done()

	log.Println("Apagando servidor...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error en el apagado del servidor: %v", err)
	}
	if err := client.Disconnect(shutdownCtx); err != nil {
		log.Printf("Error cerrando la conexión a MongoDB: %v", err)
	}
	log.Println("Conexión a MongoDB cerrada por terminación de la aplicación")
}
