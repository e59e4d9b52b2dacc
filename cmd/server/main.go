package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/capitolcinema/booking-backend/internal/cache"
	"github.com/capitolcinema/booking-backend/internal/config"
	"github.com/capitolcinema/booking-backend/internal/database"
	"github.com/capitolcinema/booking-backend/internal/handler"
	"github.com/capitolcinema/booking-backend/internal/mail"
	"github.com/capitolcinema/booking-backend/internal/payment"
	"github.com/capitolcinema/booking-backend/internal/queue"
	"github.com/capitolcinema/booking-backend/internal/repository"
	"github.com/capitolcinema/booking-backend/internal/router"
	"github.com/capitolcinema/booking-backend/internal/service"
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

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.Migrate(ctx, db, cfg.BcryptCost); err != nil {
		cancel()
		log.Fatalf("migrate: %v", err)
	}
	cancel()

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable, response cache and rate limiter disabled")
	}

	baseURL := os.Getenv("PUBLIC_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:" + cfg.Port
	}

	accounts := repository.NewAccountRepo(db)
	addresses := repository.NewAddressRepo(db)
	emailChanges := repository.NewEmailChangeRepo(db)
	categories := repository.NewCategoryRepo(db)
	rooms := repository.NewRoomRepo(db)
	movies := repository.NewMovieRepo(db)
	showings := repository.NewShowingRepo(db)
	orders := repository.NewOrderRepo(db)

	mailer := mail.NewQueueMailer()
	auth := service.NewAuthService(accounts, mailer, cfg.BcryptCost, baseURL)
	account := service.NewAccountService(auth, addresses)
	emailChange := service.NewEmailChangeService(auth, emailChanges, mailer)
	reference := service.NewReferenceService(auth, categories, rooms, movies,
		cache.New[[]repository.SeatCategory](cfg.CategoryTTL),
		cache.New[[]repository.RoomSummary](cfg.RoomTTL),
		cache.New[[]repository.Movie](cfg.MovieTTL),
	)
	booking := service.NewBookingService(auth, showings, orders, reference,
		payment.NewRESTConfirmer(), mailer)

	// Drains the outbound mail queue in the background and reconnects
	// on broker failures.
	go queue.StartMailConsumer()

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())

	router.Register(e, router.Deps{
		Auth:      handler.NewAuthHandler(auth),
		Account:   handler.NewAccountHandler(account, emailChange),
		Reference: handler.NewReferenceHandler(reference),
		Booking:   handler.NewBookingHandler(booking),
		Redis:     rdb,
		Cache:     config.LoadHTTPCacheConfig(),
		RateLimit: config.LoadRateLimitConfig(),
	})

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
