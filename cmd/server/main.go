// Package main is the entry point of the anxiety analysis service.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"mindcare-go/internal/config"
	"mindcare-go/internal/handler"
	"mindcare-go/internal/inference"
	"mindcare-go/internal/middleware"
	"mindcare-go/internal/repository"
	"mindcare-go/internal/service"
	"mindcare-go/pkg/database"
	"mindcare-go/pkg/es"
	"mindcare-go/pkg/kafka"
	"mindcare-go/pkg/log"
)

func main() {
	configPath := flag.String("config", "./configs/config.yaml", "path to the YAML config file")
	flag.Parse()

	// 1. config and logger
	config.Init(*configPath)
	cfg := config.Conf

	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync()
	log.Info("logger initialised")

	// 2. history store
	var chatRepo repository.ChatRecordRepository
	switch cfg.Database.Driver {
	case "memory":
		log.Warnf("using in-memory history store, records are lost on restart")
		chatRepo = repository.NewMemoryChatRecordRepository()
	default:
		database.InitMySQL(cfg.Database.MySQL.DSN)
		chatRepo = repository.NewChatRecordRepository(database.DB)
	}

	insightsCache := repository.NewNoopInsightsCache()
	if cfg.Database.Redis.Addr != "" {
		database.InitRedis(cfg.Database.Redis.Addr, cfg.Database.Redis.Password, cfg.Database.Redis.DB)
		if database.RDB != nil {
			ttl := time.Duration(cfg.Insights.CacheTTLSeconds) * time.Second
			insightsCache = repository.NewInsightsCache(database.RDB, ttl)
		}
	}

	// 3. classifier artifacts; a failure leaves predictions unavailable but the process up
	var classifier inference.Classifier
	if c, err := loadClassifier(context.Background(), cfg); err != nil {
		log.Error("error loading model, /predict will be unavailable", err)
	} else {
		log.Infof("model and vectorizer loaded, classes=%v", c.Classes())
		classifier = c
	}

	// 4. record events and search index
	rootCtx, cancelRoot := context.WithCancel(context.Background())
	defer cancelRoot()

	var publisher service.RecordEventPublisher = service.NoopPublisher
	var kafkaPublisher *kafka.Publisher
	if cfg.Kafka.Enabled {
		kafkaPublisher = kafka.NewPublisher(cfg.Kafka)
		publisher = kafkaPublisher
	}

	var trends handler.TrendSource
	if cfg.Elasticsearch.Enabled {
		indexer, err := es.NewIndexer(cfg.Elasticsearch)
		if err != nil {
			log.Error("elasticsearch init failed, trend reporting disabled", err)
		} else {
			trends = indexer
			if cfg.Kafka.Enabled {
				go kafka.StartConsumer(rootCtx, cfg.Kafka, indexer)
			}
		}
	}

	// 5. services
	historyService := service.NewHistoryService(chatRepo, insightsCache, publisher)
	analysisService := service.NewAnalysisService(classifier, inference.NewRandomChooser(), historyService)

	// 6. router
	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	r.Use(middleware.RequestLogger(), middleware.CORS(cfg.CORS.AllowedOrigins), gin.Recovery())
	handler.RegisterRoutes(r, analysisService, historyService, trends)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r,
	}

	go func() {
		log.Infof("server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server failed: %s", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("HTTP server shutdown failed", err)
	}

	cancelRoot()
	if kafkaPublisher != nil {
		if err := kafkaPublisher.Close(); err != nil {
			log.Error("failed to close Kafka publisher", err)
		}
	}
	log.Info("server stopped")
}
