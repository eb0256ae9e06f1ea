package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariefcatur/evn-storefront/internal/auth"
	"github.com/ariefcatur/evn-storefront/internal/cart"
	"github.com/ariefcatur/evn-storefront/internal/catalog"
	"github.com/ariefcatur/evn-storefront/internal/config"
	"github.com/ariefcatur/evn-storefront/internal/httpx"
	kafkax "github.com/ariefcatur/evn-storefront/internal/kafka"
	"github.com/ariefcatur/evn-storefront/internal/mail"
	"github.com/ariefcatur/evn-storefront/internal/orders"
	"github.com/ariefcatur/evn-storefront/internal/postgres"
	"github.com/ariefcatur/evn-storefront/internal/redisx"
	"github.com/ariefcatur/evn-storefront/internal/reporting"
	"github.com/ariefcatur/evn-storefront/internal/users"
	"github.com/ariefcatur/evn-storefront/internal/wishlist"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	if cfg.Production() && cfg.JWTSecret == "change-me" {
		log.Fatal("JWT_SECRET must be set in production")
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()
	if err := postgres.Migrate(ctx, db); err != nil {
		log.Fatalf("%v", err)
	}

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producer
	prod := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderEvents, 1024)
	prod.Start(ctx)

	// Services
	userRepo := &users.Repo{DB: db}
	catalogSvc := catalog.NewService(&catalog.Repo{DB: db})
	cartRepo := &cart.Repo{DB: db}
	api := &httpx.API{
		Auth: auth.NewService(userRepo,
			mail.New(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.MailFrom),
			rdb,
			auth.NewTokens(cfg.JWTSecret, cfg.UserTokenTTL, cfg.AdminTokenTTL)),
		Users:    users.NewService(userRepo),
		Catalog:  catalogSvc,
		Cart:     cart.NewService(cartRepo, &catalog.Repo{DB: db}),
		Wishlist: wishlist.NewService(&wishlist.Repo{DB: db}, catalogSvc),
		Orders: orders.NewService(&orders.Repo{DB: db}, cartRepo, &catalog.Repo{DB: db}, prod,
			cfg.ServiceName, cfg.CODPincodes),
		Reporting:  reporting.NewService(&reporting.Repo{DB: db}, rdb),
		Redis:      rdb,
		Production: cfg.Production(),
	}
	router := httpx.NewRouter(cfg.AllowedOrigin)
	api.Register(router)

	// HTTP server
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router, ReadHeaderTimeout: 5 * time.Second}

	// graceful shutdown
	go func() {
		log.Printf("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	// wait signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	prod.Close()      // tutup inbox -> flush & close writer
	prod.WaitClosed() // drain
}
