package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/sharath018/event-calendar-backend/config"
	"github.com/sharath018/event-calendar-backend/database"
	"github.com/sharath018/event-calendar-backend/internal/auditlog"
	"github.com/sharath018/event-calendar-backend/internal/calendar"
	"github.com/sharath018/event-calendar-backend/internal/collection"
	"github.com/sharath018/event-calendar-backend/internal/eventstore"
	"github.com/sharath018/event-calendar-backend/internal/kvcache"
	"github.com/sharath018/event-calendar-backend/internal/notification"
	"github.com/sharath018/event-calendar-backend/routes"
	"github.com/sharath018/event-calendar-backend/utils"
)

// @title Event Calendar API
// @version 1.0
// @description Shared event calendar backed by a live remote collection.
// @BasePath /
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Init Redis when something is stored there
	var redisClient *redis.Client
	if cfg.CollectionBackend == config.BackendRedis || cfg.PreferencesBackend == config.BackendRedis {
		redisClient, err = utils.InitRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Fatalf("❌ Redis init failed: %v", err)
		}
		defer redisClient.Close()
	}

	// 🔥 Init Firebase - required for Firestore, optional for push
	var fb *utils.Firebase
	if cfg.CollectionBackend == config.BackendFirestore || cfg.FirebaseProjectID != "" {
		fb, err = utils.InitFirebase(ctx, cfg.FirebaseProjectID, cfg.CredentialsPath)
		if err != nil {
			if cfg.CollectionBackend == config.BackendFirestore {
				log.Fatalf("❌ Firebase init failed: %v", err)
			}
			log.Printf("⚠️ Firebase initialization failed: %v", err)
			log.Println("ℹ️ Continuing without Firebase (push notifications will be disabled)")
		}
		defer fb.Close()
	}

	coll := newCollection(cfg, fb, redisClient)
	store := eventstore.New(coll,
		eventstore.WithRetryPolicy(eventstore.RetryPolicy{
			MaxAttempts:     cfg.WriteMaxAttempts,
			InitialInterval: cfg.WriteRetryInitial(),
			MaxInterval:     10 * cfg.WriteRetryInitial(),
		}),
		eventstore.WithWriteTimeout(cfg.WriteTimeout()),
		eventstore.WithResubscribeDelay(cfg.ResubscribeDelay()),
	)

	// Notification channels
	var channels []notification.Channel
	if fb.FCMEnabled() {
		channels = append(channels, notification.NewFCMChannel(fb.Messaging, cfg.FCMTopic))
	}
	if len(cfg.KafkaBrokers) > 0 {
		writer, err := utils.NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			log.Printf("⚠️ Kafka change feed disabled: %v", err)
		} else {
			defer writer.Close()
			channels = append(channels, notification.NewKafkaChannel(writer))
		}
	}
	notifier := notification.NewService(channels...)

	// Audit database is optional
	var db *gorm.DB
	var auditSvc auditlog.Service
	if cfg.DatabaseEnabled() {
		db, err = database.Connect(cfg.DSN(), &auditlog.AuditLog{})
		if err != nil {
			log.Printf("⚠️ Audit log disabled: %v", err)
		} else {
			defer database.Close(db)
			auditSvc = auditlog.NewService(auditlog.NewRepository(db))
		}
	}

	prefs, err := newPreferencesStorage(cfg, redisClient)
	if err != nil {
		log.Fatalf("❌ Preferences storage init failed: %v", err)
	}
	sessions := calendar.NewSessions(store, prefs, cfg.SessionTTL())

	// Subscribe before Start so the first snapshot reaches every consumer
	pageNotes, cancelPages := store.Subscribe()
	defer cancelPages()
	go sessions.Run(ctx, pageNotes)

	feedNotes, cancelFeed := store.Subscribe()
	defer cancelFeed()
	go notifier.Watch(ctx, feedNotes)

	if auditSvc != nil {
		auditNotes, cancelAudit := store.Subscribe()
		defer cancelAudit()
		go auditSvc.Watch(ctx, auditNotes)
	}

	if err := store.Start(ctx); err != nil {
		log.Fatalf("❌ Event store failed to start: %v", err)
	}

	// Setup Gin router
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS", "HEAD"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Content-Length", "X-Requested-With", "Cache-Control"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.Setup(router, routes.Deps{
		Config:        cfg,
		Store:         store,
		Sessions:      sessions,
		Notifications: notifier,
		Audit:         auditSvc,
		Redis:         redisClient,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		fmt.Printf("🚀 Server starting on port %s\n", cfg.Port)
		fmt.Printf("📅 Collection backend: %s (%s)\n", cfg.CollectionBackend, cfg.EventsCollection)
		fmt.Printf("✅ CORS configured for: %v\n", cfg.CORSOrigins)
		if len(channels) == 0 {
			fmt.Println("ℹ️ No notification channels configured")
		}
		for _, name := range notifier.Channels() {
			fmt.Printf("✅ Notification channel enabled: %s\n", name)
		}
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("❌ Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("🔄 Shutting down...")

	// Stopping the store closes every subscription, which ends open streams
	store.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("⚠️ Server shutdown: %v", err)
	}

	store.Wait()
	log.Println("✅ Server stopped")
}

func newCollection(cfg *config.Config, fb *utils.Firebase, redisClient *redis.Client) collection.Collection {
	switch cfg.CollectionBackend {
	case config.BackendFirestore:
		return collection.NewFirestore(fb.Firestore, cfg.EventsCollection)
	case config.BackendRedis:
		return collection.NewRedis(redisClient, cfg.EventsCollection)
	default:
		log.Println("⚠️ Using in-memory event collection; events are lost on restart")
		return collection.NewMemory()
	}
}

func newPreferencesStorage(cfg *config.Config, redisClient *redis.Client) (kvcache.Storage, error) {
	switch cfg.PreferencesBackend {
	case config.BackendRedis:
		return kvcache.NewRedisStorage(redisClient, "calendar:kv:"), nil
	case config.BackendMemory:
		return kvcache.NewMemoryStorage(), nil
	default:
		fs, err := kvcache.NewFileStorage(cfg.PreferencesPath)
		if err != nil {
			return nil, err
		}
		return fs, nil
	}
}
