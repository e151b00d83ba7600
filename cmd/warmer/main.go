package main

import (
	"context"
	"os"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"staybook/internal/adapters/liteapi"
	"staybook/internal/adapters/observability"
	redisad "staybook/internal/adapters/redis"
	"staybook/internal/app"
	"staybook/internal/shared"
)

// warmer loads hotel details into the shared cache. Ids come from
// WARM_HOTEL_IDS and any command-line arguments.
func main() {
	ctx := context.Background()
	cfg := shared.Load()

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	ids := append(cfg.WarmHotelIDs, os.Args[1:]...)
	log.Info().
		Str("base", cfg.LiteAPIBase).
		Int("workers", cfg.WarmWorkers).
		Int("hotels", len(ids)).
		Msg("warmer starting")
	if len(ids) == 0 {
		log.Warn().Msg("no hotel ids given, nothing to do")
		return
	}

	client, err := liteapi.New(cfg.LiteAPIBase, cfg.LiteAPIKey, cfg.LiteAPIRPS)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize LiteAPI client")
	}
	rdb := redisad.Connect(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer rdb.Close()

	warm := app.NewWarmService(client, redisad.NewCache(rdb), int(cfg.CacheTTL.Seconds()))
	workers := cfg.WarmWorkers
	if workers < 1 {
		workers = 1
	}
	sem := semaphore.NewWeighted(int64(workers))
	var wg sync.WaitGroup

	for _, id := range ids {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func(hotelID string) {
			defer wg.Done()
			defer sem.Release(1)

			if err := warm.WarmHotel(ctx, hotelID); err != nil {
				log.Warn().Str("hotel_id", hotelID).Err(err).Msg("warm failed")
				return
			}
			log.Info().Str("hotel_id", hotelID).Msg("warm ok")
		}(id)
	}

	wg.Wait()
	log.Info().Msg("warming completed")
}
