// Command validate is a deployment preflight check. It loads the engine
// configuration from the environment (and .env), validates it, and pings
// each backing service, reporting what a cmd/api start would find.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/npcforge/dialogue-engine/internal/config"
	"github.com/npcforge/dialogue-engine/internal/logger"
	"github.com/npcforge/dialogue-engine/internal/session"
	"github.com/npcforge/dialogue-engine/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration invalid: %v\n", err)
		os.Exit(1)
	}

	log := logger.Setup(cfg)

	fmt.Println("Configuration is valid.")
	fmt.Printf("  provider:        %s\n", cfg.Provider)
	fmt.Printf("  drift threshold: %v\n", cfg.DriftThreshold)
	fmt.Printf("  rank limit:      %d\n", cfg.RankLimit)
	fmt.Printf("  session ttl:     %s\n", cfg.SessionTTL)
	if cfg.ContentRating != "" {
		fmt.Printf("  content rating:  %s\n", cfg.ContentRating)
	}

	failed := false
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	sessions := session.NewRedisStore(cfg.RedisURL, cfg.SessionTTL, log)
	if err := sessions.Ping(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Redis: UNREACHABLE (%v)\n", err)
		failed = true
	} else {
		fmt.Println("Redis: ok")
	}
	defer func() {
		_ = sessions.Close() // Ignore error in defer
	}()

	memories, err := storage.NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDB, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "MongoDB: UNREACHABLE (%v)\n", err)
		failed = true
	} else {
		fmt.Println("MongoDB: ok")
		defer func() {
			_ = memories.Close(ctx) // Ignore error in defer
		}()
	}

	if failed {
		os.Exit(1)
	}
	fmt.Println("Preflight passed.")
}
