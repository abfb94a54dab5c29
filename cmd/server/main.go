package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"balloon-studio/config"
	"balloon-studio/internal/api"
	"balloon-studio/internal/broker"
	"balloon-studio/internal/redisclient"
	"balloon-studio/internal/service"
	"balloon-studio/internal/store"
	"balloon-studio/internal/util"
	"balloon-studio/internal/worker"

	"github.com/gin-gonic/gin"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting balloon studio service")

	tp, err := util.InitTracer("balloon-studio", cfg.Observ.JaegerEndpoint)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down tracer: %v", err)
		}
	}()

	db, err := store.NewStore(cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Database connected")

	redisClient, err := redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("Redis connected")

	orderProducer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicOrders)
	defer orderProducer.Close()
	stockProducer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicStock)
	defer stockProducer.Close()
	log.Println("Kafka producers initialized")

	eventPublisher := broker.NewEventPublisher(orderProducer, stockProducer)

	pricing := service.PricingFromConfig(cfg.Business.Pricing)

	inventory := service.NewInventory(db, db, redisClient)
	reconciler := service.NewReconciler(db, redisClient, eventPublisher, cfg.Business.DefaultThreshold)
	designService := service.NewDesignService(db, inventory, reconciler)
	orderService := service.NewOrderService(db, db, inventory, redisClient, eventPublisher, pricing)
	paymentService := service.NewPaymentService(redisClient, db)

	ctx := context.Background()
	if err := inventory.WarmCache(ctx); err != nil {
		log.Printf("Failed to warm stock snapshot cache: %v", err)
	}

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	orderConsumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicOrders, cfg.Kafka.ConsumerGroup)
	replenishmentWorker := worker.NewReplenishmentWorker(orderConsumer, db, db, reconciler)
	go func() {
		if err := replenishmentWorker.Start(workerCtx); err != nil {
			log.Printf("Replenishment worker error: %v", err)
		}
	}()

	stockConsumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicStock, cfg.Kafka.ConsumerGroup+"-alerts")
	alertWorker := worker.NewStockAlertWorker(stockConsumer)
	go func() {
		if err := alertWorker.Start(workerCtx); err != nil {
			log.Printf("Stock alert worker error: %v", err)
		}
	}()

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handler := api.NewHandler(inventory, designService, orderService, paymentService)
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	workerCancel()
	replenishmentWorker.Stop()
	alertWorker.Stop()

	log.Println("Server exited")
}
