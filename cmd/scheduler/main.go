package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/umeloans/loan-wizard/internal/config"
	"github.com/umeloans/loan-wizard/internal/domain"
	"github.com/umeloans/loan-wizard/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zlog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zlog.Sync()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	// Initialize cron scheduler
	c := cron.New(cron.WithSeconds())

	_, err = c.AddFunc(cfg.Sweeper.Schedule, func() {
		sweepExpiredSessions(redisClient, cfg, zlog)
	})
	if err != nil {
		log.Fatalf("Error scheduling session sweep job: %v", err)
	}

	c.Start()
	zlog.Info("session sweeper started", zap.String("schedule", cfg.Sweeper.Schedule))

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("shutting down sweeper")
	c.Stop()
}

// sweepExpiredSessions walks every saved snapshot and deletes the ones whose
// save timestamp is past the expiry window. Redis TTLs cover most of this
// already; the sweep catches keys written by older deployments without TTLs
// and keeps key-count metrics honest.
func sweepExpiredSessions(client *redis.Client, cfg *config.Config, zlog *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	expiry := cfg.GetSessionExpiry()
	pattern := cfg.Session.KeyPrefix + ":*"

	var scanned, removed int
	iter := client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		scanned++

		payload, err := client.Get(ctx, key).Bytes()
		if err != nil {
			continue
		}

		var snapshot domain.SavedSession
		if err := json.Unmarshal(payload, &snapshot); err != nil {
			// Unreadable snapshots are abandoned sessions; drop them.
			if delErr := client.Del(ctx, key).Err(); delErr == nil {
				removed++
			}
			continue
		}

		if snapshot.Age(time.Now()) > expiry {
			if err := client.Del(ctx, key).Err(); err == nil {
				removed++
			}
		}
	}

	if err := iter.Err(); err != nil {
		zlog.Error("session sweep failed", zap.Error(err))
		return
	}

	zlog.Info("session sweep complete",
		zap.Int("scanned", scanned),
		zap.Int("removed", removed),
	)
}
