package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/vanguardhq/defense-api/internal/auth"
	"github.com/vanguardhq/defense-api/internal/config"
	"github.com/vanguardhq/defense-api/internal/database"
	"github.com/vanguardhq/defense-api/internal/handler"
	"github.com/vanguardhq/defense-api/internal/queue"
	"github.com/vanguardhq/defense-api/internal/repository"
	"github.com/vanguardhq/defense-api/internal/router"
	"github.com/vanguardhq/defense-api/internal/service"
	"github.com/vanguardhq/defense-api/internal/utils"
)

func main() {
	// .env is a dev convenience; absence is fine.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient()
	rlCfg := config.LoadRateLimitConfig()

	accounts := repository.NewAccountRepo(db)
	hasher := utils.NewArgon2Hasher(utils.Argon2Params{
		Memory:      uint32(cfg.Argon2Memory),
		Time:        uint32(cfg.Argon2Time),
		Parallelism: uint8(cfg.Argon2Parallelism),
	})

	// Audit events are optional: without a broker URL the auth core just
	// skips publishing.
	var events auth.EventPublisher
	if url := brokerURL(); url != "" {
		events = service.NewEventPublisher(url)
		go queue.StartAuthConsumer(url)
	}

	authSvc := auth.NewService(accounts, hasher, events, cfg.JWTSecret, cfg.AccessTTL, cfg.RefreshTTL)

	e := echo.New()
	e.HideBanner = true
	router.Register(e,
		handler.NewAuthHandler(authSvc),
		handler.NewAdminHandler(accounts),
		cfg.JWTSecret, rlCfg, rdb)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

func brokerURL() string {
	if url := os.Getenv("RABBITMQ_URL"); url != "" {
		return url
	}
	return os.Getenv("AMQP_URL")
}
