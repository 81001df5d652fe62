// Command nexthr runs the NextHR platform backend.
package main

import (
	"net/http"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/nexthr/nexthr-backend/internal/auth"
	"github.com/nexthr/nexthr-backend/internal/authn"
	"github.com/nexthr/nexthr-backend/internal/config"
	"github.com/nexthr/nexthr-backend/internal/httpapi"
	"github.com/nexthr/nexthr-backend/internal/password"
	"github.com/nexthr/nexthr-backend/internal/ratelimit"
	"github.com/nexthr/nexthr-backend/internal/store"
	"github.com/nexthr/nexthr-backend/internal/token"
)

func main() {
	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("configuration invalid", zap.Error(err))
	}

	db, err := sqlx.Connect("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatal("database connection failed", zap.Error(err))
	}
	defer func() { _ = db.Close() }()

	codec, err := token.NewCodec([]byte(cfg.JWTSecret))
	if err != nil {
		log.Fatal("token codec init failed", zap.Error(err))
	}
	issuer, err := token.NewIssuer(codec, cfg.TokenTTL)
	if err != nil {
		log.Fatal("token issuer init failed", zap.Error(err))
	}

	hasher, err := password.NewHasher(password.DefaultConfig())
	if err != nil {
		log.Fatal("password hasher init failed", zap.Error(err))
	}

	var limiter *ratelimit.LoginLimiter
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		limiter = ratelimit.NewLoginLimiter(rdb, ratelimit.Config{
			MaxAttempts: cfg.LoginMaxAttempts,
			Cooldown:    cfg.LoginCooldown,
			PerIP:       true,
		})
	}

	authService := auth.NewService(
		store.NewSystemUsers(db),
		store.NewAppUsers(db),
		store.NewOrganizations(db),
		hasher,
		issuer,
		limiter,
		log,
	)

	server := httpapi.NewServer(
		authService,
		store.NewEmployees(db),
		authn.New(codec, cfg.PublicPrefixes, log),
		httpapi.DefaultPolicy(cfg.PublicPrefixes),
		cfg.CORSOrigins,
		log,
	)

	log.Info("listening", zap.String("addr", cfg.HTTPAddr))
	if err := http.ListenAndServe(cfg.HTTPAddr, server.Handler()); err != nil {
		log.Fatal("server exited", zap.Error(err))
	}
}
