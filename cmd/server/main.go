package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv"    // .env loading for local development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/storefront-go/storefront/internal/auth"
	"github.com/storefront-go/storefront/internal/config"
	"github.com/storefront-go/storefront/internal/database"
	"github.com/storefront-go/storefront/internal/handler"
	"github.com/storefront-go/storefront/internal/middleware"
	"github.com/storefront-go/storefront/internal/model"
	"github.com/storefront-go/storefront/internal/queue"
	"github.com/storefront-go/storefront/internal/repository"
	"github.com/storefront-go/storefront/internal/router"
	"github.com/storefront-go/storefront/internal/service"
)

func main() {
	// Missing .env is fine in deployed environments where real env vars
	// are set.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}

	// Redis backs the session registry, so unlike caching and rate
	// limiting it cannot be skipped.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Fatal("redis unavailable: the session registry requires it")
	}

	users := repository.NewUserRepo(db)
	products := repository.NewProductRepo(db)
	cart := repository.NewCartRepo(db)
	coupons := repository.NewCouponRepo(db)
	orders := repository.NewOrderRepo(db)
	sessions := repository.NewSessionRepo(rdb)

	tokens := &auth.TokenService{
		AccessSecret:  []byte(cfg.AccessSecret),
		RefreshSecret: []byte(cfg.RefreshSecret),
		ResetSecret:   []byte(cfg.ResetSecret),
		AccessTTL:     cfg.AccessTTL(),
		RefreshTTL:    cfg.RefreshTTL(),
		ResetTTL:      cfg.ResetTTL(),
		Registry:      sessions,
	}

	var mail service.Mailer = service.LogMailer{}
	if cfg.SMTPHost != "" {
		mail = &service.SMTPMailer{
			Host: cfg.SMTPHost, Port: cfg.SMTPPort,
			Username: cfg.SMTPUser, Password: cfg.SMTPPass, From: cfg.SMTPFrom,
		}
	}
	provider := service.NewOfflineProvider(cfg.FrontendURL)

	authenticated := middleware.Authenticated(tokens, users)
	adminOnly := middleware.RequireRole(model.RoleAdmin)
	sellerOnly := middleware.RequireRole(model.RoleSeller)
	rateLimit := middleware.AuthRateLimit(config.LoadRateLimitConfig(), rdb)
	cache := middleware.BrowseCache(config.LoadCacheConfig(), rdb)

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, tokens, mail), authenticated, rateLimit)
	router.RegisterCatalog(e, handler.NewProductHandler(products, rdb), authenticated, adminOnly, cache)
	router.RegisterShop(e,
		handler.NewCartHandler(cart, products),
		handler.NewCouponHandler(coupons),
		handler.NewPaymentHandler(provider, products, coupons, cart, orders),
		authenticated)
	router.RegisterBackoffice(e,
		handler.NewOrderHandler(orders),
		handler.NewAnalyticsHandler(users, products, orders),
		handler.NewUserAdminHandler(cfg, users),
		authenticated, sellerOnly, adminOnly)

	// Order events are consumed in the background; the loop reconnects on
	// its own and never takes the API down.
	go func() {
		if err := queue.StartOrderConsumer(); err != nil {
			log.Printf("order consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
