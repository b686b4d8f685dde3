package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/fleetfilm/fleetfilm-api/internal/config"
	"github.com/fleetfilm/fleetfilm-api/internal/database"
	"github.com/fleetfilm/fleetfilm-api/internal/handler"
	"github.com/fleetfilm/fleetfilm-api/internal/lookup"
	appmw "github.com/fleetfilm/fleetfilm-api/internal/middleware"
	"github.com/fleetfilm/fleetfilm-api/internal/queue"
	"github.com/fleetfilm/fleetfilm-api/internal/repository"
	"github.com/fleetfilm/fleetfilm-api/internal/router"
	"github.com/fleetfilm/fleetfilm-api/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	films := repository.NewFilmRepo(db)
	votes := repository.NewVoteRepo(db)
	locations := repository.NewLocationRepo(db)
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)

	pipeline := service.NewPipeline(films, votes, locations, cfg.VoteThreshold, &service.RabbitPublisher{})

	omdb := lookup.NewOMDBClient(cfg.OMDBAPIKey)
	addresses := lookup.NewAddressClient(cfg.GetAddressAPIKey)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())

	// Redis-backed rate limiting and response caching; both degrade to
	// pass-through middleware when Redis is absent. The cache only ever
	// touches anonymous GETs: requests carrying credentials go straight
	// through to the auth chain.
	rdb := config.NewRedisClient()
	e.Use(appmw.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	e.Use(appmw.NewRedisCache(config.LoadCacheConfig(), rdb))

	router.RegisterRoutes(e, router.Handlers{
		Auth:     handler.NewAuthHandler(cfg, users, tokens),
		Films:    handler.NewFilmHandler(films),
		Pipeline: handler.NewPipelineHandler(pipeline),
		Votes:    handler.NewVoteHandler(pipeline, votes),
		Location: handler.NewLocationHandler(locations, addresses),
		Metadata: handler.NewMetadataHandler(omdb),
		Export:   handler.NewExportHandler(films),
		Users:    handler.NewUserHandler(users),
	}, db, cfg.JWTSecret)

	// Sweep out long-expired refresh tokens once a day.
	go func() {
		for range time.Tick(24 * time.Hour) {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			if n, err := tokens.PurgeExpired(ctx, time.Now().UTC().AddDate(0, 0, -7)); err != nil {
				log.Printf("token purge: %v", err)
			} else if n > 0 {
				log.Printf("token purge: removed %d expired tokens", n)
			}
			cancel()
		}
	}()

	// Append green-list events to the audit log in the background. The
	// consumer reconnects on broker failure and never takes the API down.
	go func() {
		if err := queue.StartGreenlistConsumer(); err != nil {
			log.Printf("greenlist consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s, vote threshold=%d)", addr, cfg.Env, cfg.VoteThreshold)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
