package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/01moynul/storefront-golang/internal/ai"
	"github.com/01moynul/storefront-golang/internal/auth"
	"github.com/01moynul/storefront-golang/internal/cart"
	"github.com/01moynul/storefront-golang/internal/catalog"
	"github.com/01moynul/storefront-golang/internal/config"
	"github.com/01moynul/storefront-golang/internal/database"
	"github.com/01moynul/storefront-golang/internal/handlers"
	"github.com/01moynul/storefront-golang/internal/logger"
	"github.com/01moynul/storefront-golang/internal/middleware"
	"github.com/01moynul/storefront-golang/internal/notifications"
	"github.com/01moynul/storefront-golang/internal/orders"
	"github.com/01moynul/storefront-golang/internal/routes"
	"github.com/01moynul/storefront-golang/internal/storage/memory"
	"github.com/01moynul/storefront-golang/internal/users"
	"github.com/01moynul/storefront-golang/internal/wishlist"
	"github.com/gin-gonic/gin"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

// stores is one storage backend seen through the domain interfaces.
type stores struct {
	catalog       catalog.Store
	carts         cart.Repository
	wishlist      wishlist.Store
	notifications notifications.Store
	orders        orders.Store
	users         users.Store
	ping          func(ctx context.Context) error
	close         func() error
}

func run() error {
	// 0. --- Load Configuration (.env + environment) ---
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New(logger.Options{
		Service: "storefront-api",
		Env:     cfg.AppEnv,
		Level:   cfg.LogLevel,
	})
	if cfg.AppEnv != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. --- Storage Backend ---
	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.close()

	// 2. --- Services ---
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	hub := notifications.NewHub(cfg.CORSOrigins, log)
	defer hub.Close()

	catalogSvc := catalog.NewService(st.catalog)
	guestCarts := cart.NewSessionRepository(st.catalog, cfg.GuestCartTTL)
	cartSvc := cart.NewService(st.carts, guestCarts, log)
	wishlistSvc := wishlist.NewService(st.wishlist)
	notifySvc := notifications.NewService(st.notifications, hub, cfg.NotificationRetention, log)
	orderSvc := orders.NewService(st.orders, hub, orders.OptionsFrom(cfg.Orders, cfg.NotificationRetention), log)
	userSvc := users.NewService(st.users, tokens, users.StatsSources{
		Orders:   orderSvc.Count,
		Wishlist: wishlistSvc.Count,
		Unread:   notifySvc.UnreadCount,
	}, log)

	// 3. --- AI Assistant (optional) ---
	assistant, err := ai.NewAssistant(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, catalogSvc, log)
	if err != nil {
		return err
	}
	if assistant == nil {
		log.Info("GEMINI_API_KEY not set, shopping assistant disabled")
	} else {
		defer assistant.Close()
	}

	app := &handlers.Handlers{
		Catalog:       catalogSvc,
		Cart:          cartSvc,
		Wishlist:      wishlistSvc,
		Orders:        orderSvc,
		Notifications: notifySvc,
		Users:         userSvc,
		Hub:           hub,
		Assistant:     assistant,
		Config:        cfg,
		Log:           log,
		Ping:          st.ping,
	}

	limiter := middleware.NewRateLimiter(cfg.AuthAttempts, cfg.AuthWindow)

	// 4. --- Background Workers ---
	// Expired guest carts and idle rate-limit buckets are swept on a ticker.
	go func() {
		ticker := time.NewTicker(cfg.GuestSweepInterval)
		defer ticker.Stop()

		log.Info("background sweeper started", "interval", cfg.GuestSweepInterval)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := guestCarts.Sweep(); n > 0 {
					log.Info("swept expired guest carts", "count", n)
				}
				limiter.Cleanup()
			}
		}
	}()

	// 5. --- Router Setup ---
	router := routes.SetupRouter(app, routes.Deps{
		Tokens:      tokens,
		AuthLimiter: limiter,
		Log:         log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// 6. --- Start Server ---
	errCh := make(chan error, 1)
	go func() {
		log.Info("starting storefront API server", "port", cfg.Port, "store", cfg.StoreDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	// 7. --- Graceful Shutdown ---
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func openStores(ctx context.Context, cfg config.Config, log *slog.Logger) (stores, error) {
	switch cfg.StoreDriver {
	case config.DriverMemory:
		db := memory.New()
		if cfg.SeedCatalog {
			db.Seed(database.SampleProducts())
		}
		log.Warn("using in-memory store, data is lost on restart")
		return stores{
			catalog:       db.Catalog(),
			carts:         db.Carts(),
			wishlist:      db.Wishlist(),
			notifications: db.Notifications(),
			orders:        db.Orders(),
			users:         db.Users(),
			close:         func() error { return nil },
		}, nil

	case config.DriverPostgres:
		db, err := database.OpenDB(ctx, cfg.Database)
		if err != nil {
			return stores{}, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := database.Migrate(ctx, db); err != nil {
			db.Close()
			return stores{}, err
		}
		gdb, err := database.OpenGorm(db)
		if err != nil {
			db.Close()
			return stores{}, err
		}
		if cfg.SeedCatalog {
			if err := database.Seed(ctx, gdb); err != nil {
				db.Close()
				return stores{}, err
			}
		}
		return postgresStores(db, gdb, cfg), nil
	}
	return stores{}, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}
