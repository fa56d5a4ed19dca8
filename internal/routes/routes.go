package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"gorm.io/gorm"

	"github.com/example/haribookstore/internal/config"
	"github.com/example/haribookstore/internal/handlers"
	"github.com/example/haribookstore/internal/middleware"
	"github.com/example/haribookstore/internal/services"
)

// Register wires up all HTTP routes.
func Register(app *fiber.App, db *gorm.DB, cfg *config.Config, notifier *services.Notifier) {
	catalog := services.NewCatalogService(db)
	authService := services.NewAuthService(db, cfg, notifier)
	orderService := services.NewOrderService(db, catalog, notifier, cfg.UPIID)

	healthHandler := handlers.NewHealthHandler(db)
	authHandler := handlers.NewAuthHandler(authService)
	bookHandler := handlers.NewBookHandler(catalog)
	paymentHandler := handlers.NewPaymentHandler(orderService)

	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.Check)

	api := app.Group("/api")

	// OTP signup
	otp := api.Group("/otp")
	otp.Post("/send", otpLimiter(cfg), authHandler.SendOTP)
	otp.Post("/verify", authHandler.VerifyOTP)

	user := api.Group("/user")
	user.Post("/signup", authHandler.Signup)
	user.Post("/login", authHandler.Login)

	api.Get("/book", bookHandler.List)

	// Orders
	payment := api.Group("/payment", middleware.JWTProtected(cfg))
	payment.Post("/", paymentHandler.CreateOrder)
	payment.Get("/orders", paymentHandler.ListOrders)
	payment.Get("/order/:id", paymentHandler.GetOrder)

	adminOnly := middleware.AdminRequired()
	payment.Get("/stats", adminOnly, paymentHandler.Stats)
	payment.Put("/confirm/:id", adminOnly, paymentHandler.ConfirmOrder)
	payment.Put("/status/:id", adminOnly, paymentHandler.UpdateStatus)
}

func otpLimiter(cfg *config.Config) fiber.Handler {
	if cfg.OTPRateLimit <= 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return limiter.New(limiter.Config{
		Max:        cfg.OTPRateLimit,
		Expiration: time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			return fiber.NewError(fiber.StatusTooManyRequests, "Too many OTP requests. Please try again later.")
		},
	})
}
