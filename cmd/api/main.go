package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/vaughan-dsouza/certportal/internal/auth"
	"github.com/vaughan-dsouza/certportal/internal/bootstrap"
	"github.com/vaughan-dsouza/certportal/internal/config"
	"github.com/vaughan-dsouza/certportal/internal/db"
	"github.com/vaughan-dsouza/certportal/internal/docs"
	"github.com/vaughan-dsouza/certportal/internal/handlers"
	"github.com/vaughan-dsouza/certportal/internal/kv"
	"github.com/vaughan-dsouza/certportal/internal/logging"
	"github.com/vaughan-dsouza/certportal/internal/metrics"
	"github.com/vaughan-dsouza/certportal/internal/server"
	"github.com/vaughan-dsouza/certportal/internal/store"
)

func main() {
	envFile := pflag.String("env-file", ".env", "dotenv file to load before reading the environment")
	addr := pflag.String("addr", "", "listen address (overrides PORT)")
	pflag.Parse()

	if err := godotenv.Load(*envFile); err != nil {
		log.Printf("no %s file found", *envFile)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := logging.New(cfg.IsProduction(), cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	if err := run(cfg, *addr, logger); err != nil {
		logger.Fatalw("server stopped", "error", err)
	}
}

func run(cfg config.Config, addr string, log *zap.SugaredLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := db.Connect(cfg.DatabaseURL, db.PoolConfig{
		MaxOpen:     cfg.DBMaxOpen,
		MaxIdle:     cfg.DBMaxIdle,
		MaxLifetime: cfg.DBMaxLifetime,
	})
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := db.Migrate(ctx, conn); err != nil {
		return err
	}

	clock := clockwork.NewRealClock()
	admins := store.NewAdminStore(conn, clock)
	certs := store.NewCertificateStore(conn, clock)

	hasher, err := auth.NewHasher(cfg.BcryptCost)
	if err != nil {
		return err
	}
	tokens, err := auth.NewTokenService(cfg.JWTSecret, cfg.JWTTTL, clock)
	if err != nil {
		return err
	}

	m := metrics.New()

	// bootstrap failure is logged, not fatal
	created, err := bootstrap.EnsureAdmin(ctx, admins, hasher, cfg.AdminEmail, cfg.AdminPassword)
	switch {
	case err != nil:
		m.Bootstrap("error")
		log.Errorw("bootstrap admin failed", "error", err)
	case created:
		m.Bootstrap("created")
		log.Infow("bootstrap admin created", "email", cfg.AdminEmail)
	default:
		m.Bootstrap("exists")
	}
	if cfg.IsProduction() && cfg.UsesDefaultAdmin() {
		log.Warnw("ADMIN_EMAIL or ADMIN_PASSWORD left at the development default")
	}

	deps := handlers.Deps{
		Admins:       admins,
		Certificates: certs,
		Tokens:       tokens,
		Hasher:       hasher,
		Metrics:      m,
		Log:          log,
	}
	if cfg.RedisURL != "" {
		limiter, err := kv.NewLimiter(ctx, cfg.RedisURL, cfg.LoginRateLimit, cfg.LoginRateWindow)
		if err != nil {
			log.Warnw("login throttling disabled", "error", err)
		} else {
			defer limiter.Close()
			deps.Limiter = limiter
		}
	}

	docsHandler, err := docs.Handler()
	if err != nil {
		return err
	}

	router := server.NewRouter(server.Options{
		Handler:        handlers.NewHandler(deps),
		Tokens:         tokens,
		DB:             conn,
		Metrics:        m,
		Docs:           docsHandler,
		Log:            log,
		TrustProxy:     cfg.TrustProxy,
		AllowedOrigins: splitOrigins(cfg.FrontendURL),
	})

	if addr == "" {
		addr = ":" + cfg.Port
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Infow("listening", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	log.Info("server exited")
	return nil
}

func splitOrigins(s string) []string {
	var out []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
