package main // Entry point package

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/medtrack/medication-reminder/internal/config"
	"github.com/medtrack/medication-reminder/internal/database"
	"github.com/medtrack/medication-reminder/internal/handler"
	"github.com/medtrack/medication-reminder/internal/middleware"
	"github.com/medtrack/medication-reminder/internal/queue"
	"github.com/medtrack/medication-reminder/internal/reminder"
	"github.com/medtrack/medication-reminder/internal/repository"
	"github.com/medtrack/medication-reminder/internal/router"
)

func main() {
	_ = godotenv.Load() // optional .env for local development
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	meds := repository.NewMedicationRepo(db)

	// Reminder core: the bus owns the observer registry; observers are
	// attached once here at startup and the clock drives the due scan for
	// the life of the process.
	bus := reminder.NewBus()
	bus.Attach(reminder.LogObserver{})
	bus.Attach(reminder.QueueObserver{})

	scanner := reminder.NewScanner(meds, bus)
	clock := reminder.NewClock(cfg.ScanInterval, scanner)
	clock.Start()
	defer clock.Stop()

	// Broker consumer mirrors due events into logs/reminders.log; it runs
	// its own reconnect loop and never takes the server down.
	go func() {
		if err := queue.StartReminderConsumer(); err != nil {
			log.Printf("reminder-consumer: stopped: %v", err)
		}
	}()

	rdb := config.NewRedisClient() // nil when Redis is unreachable; middleware degrades
	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, tokens), cfg.JWTSecret, limiter)
	router.RegisterMedications(e, handler.NewMedicationHandler(meds), cfg.JWTSecret, cache)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
