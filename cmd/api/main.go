package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/djdeepak14/laundry-backend/internal/config"
	"github.com/djdeepak14/laundry-backend/internal/database"
	"github.com/djdeepak14/laundry-backend/internal/middleware"
	"github.com/djdeepak14/laundry-backend/internal/modules/admin"
	"github.com/djdeepak14/laundry-backend/internal/modules/auth"
	"github.com/djdeepak14/laundry-backend/internal/modules/booking"
	"github.com/djdeepak14/laundry-backend/internal/modules/machines"
	jwtsvc "github.com/djdeepak14/laundry-backend/internal/pkg/jwt"
	"github.com/djdeepak14/laundry-backend/internal/repository"
)

func main() {
	_ = godotenv.Load()

	var cfg *config.Config
	var err error
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		cfg, err = config.Load(path)
		if err != nil {
			log.Fatal("load config: ", err)
		}
	} else {
		cfg = config.Default()
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET is empty")
	}

	db, err := database.Init(&cfg.Database)
	if err != nil {
		log.Fatal(err)
	}

	store := repository.NewStore(db)
	j := jwtsvc.New(secret, time.Duration(cfg.Auth.TokenTTLHours)*time.Hour)

	policy, err := booking.NewPolicy(cfg.Booking)
	if err != nil {
		log.Fatal("booking policy: ", err)
	}

	authService := auth.NewService(store.Users, j)
	authHandler := auth.NewHandler(authService)

	machineService := machines.NewService(store.Machines)
	machineHandler := machines.NewHandler(machineService)

	bookingService := booking.NewService(store, policy)
	bookingHandler := booking.NewHandler(bookingService)

	adminService := admin.NewService(store.Users)
	adminHandler := admin.NewHandler(adminService)

	r := gin.Default()
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorLogger())

	cacheTTL := time.Duration(cfg.Server.CacheTTLSeconds) * time.Second
	caching := middleware.Cache(cache.New(cacheTTL, 2*cacheTTL), cacheTTL)

	v1 := r.Group("/api/v1")
	v1.Use(middleware.RateLimiter(rate.Limit(cfg.Server.RateLimitPerSec), cfg.Server.RateLimitBurst))
	{
		// public
		authHandler.RegisterRoutes(v1)
		machineHandler.RegisterRoutes(v1, caching)

		// authenticated
		protected := v1.Group("/")
		protected.Use(middleware.Auth(j))
		{
			authHandler.RegisterProtectedRoutes(protected)
			bookingHandler.RegisterRoutes(protected)
		}

		// admin
		adminGroup := v1.Group("/admin")
		adminGroup.Use(middleware.Auth(j), middleware.AdminOnly())
		{
			adminHandler.RegisterRoutes(adminGroup)
			machineHandler.RegisterAdminRoutes(adminGroup)
			bookingHandler.RegisterAdminRoutes(adminGroup)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Println("Listening on", addr)
	if err := r.Run(addr); err != nil {
		log.Fatal(err)
	}
}
