package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/capitolcinema/booking-backend/internal/config"
	"github.com/capitolcinema/booking-backend/internal/handler"
	"github.com/capitolcinema/booking-backend/internal/middleware"
)

// Deps bundles everything the route table needs.
type Deps struct {
	Auth      *handler.AuthHandler
	Account   *handler.AccountHandler
	Reference *handler.ReferenceHandler
	Booking   *handler.BookingHandler
	Redis     *redis.Client
	Cache     config.HTTPCacheConfig
	RateLimit config.RateLimitConfig
}

// Register wires the full route table. Public browse routes sit behind
// the Redis response cache; everything shares the rate limiter and the
// token extractor. Authorization itself is enforced in the services, so
// protected routes need no extra route-level guard here.
func Register(e *echo.Echo, d Deps) {
	e.GET("/healthz", handler.Health)

	e.Use(middleware.NewRateLimiter(d.RateLimit, d.Redis))
	e.Use(middleware.ExtractToken)

	v1 := e.Group("/v1")

	// Public browse. These answers are the same for every caller, so
	// they are served from the response cache when Redis is around.
	browse := v1.Group("", middleware.NewResponseCache(d.Cache, d.Redis))
	browse.GET("/movies", d.Reference.Movies)
	browse.GET("/categories", d.Reference.Categories)
	browse.GET("/rooms", d.Reference.Rooms)
	browse.GET("/rooms/:id/plan", d.Reference.RoomPlan)
	browse.GET("/showings", d.Booking.Showings)

	// Availability changes with every sale and must not be cached.
	v1.GET("/showings/:id/seats", d.Booking.Availability)

	// Credential lifecycle.
	v1.POST("/auth/register", d.Auth.Register)
	v1.POST("/auth/activate/:key", d.Auth.Activate)
	v1.POST("/auth/login", d.Auth.Login)
	v1.POST("/auth/deactivate", d.Auth.Deactivate)
	v1.PATCH("/auth/user", d.Auth.UpdateUser)

	// Account data. Token checks happen inside the services.
	v1.GET("/userinfo", d.Account.UserInfo)
	v1.POST("/addresses", d.Account.AddAddress)
	v1.DELETE("/addresses/:id", d.Account.DeleteAddress)
	v1.POST("/email-change", d.Account.RequestEmailChange)
	v1.POST("/email-change/confirm", d.Account.ConfirmEmailChange)

	// Orders.
	v1.POST("/orders", d.Booking.CreateOrder)

	// Admin. Role 700 is enforced by the services.
	v1.POST("/showings", d.Booking.CreateShowing)
	v1.POST("/rooms", d.Reference.UploadRoomPlan)
}
