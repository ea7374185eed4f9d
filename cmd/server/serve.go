package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"acquisitions/internal/config"
	"acquisitions/internal/handler"
	"acquisitions/internal/logutil"
	"acquisitions/internal/middleware"
	"acquisitions/internal/repository"
	"acquisitions/internal/service"
	"acquisitions/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
)

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "port",
				Usage:   "Port to listen on, overrides SERVER_PORT",
				EnvVars: []string{"PORT"},
			},
			&cli.BoolFlag{
				Name:  "migrate",
				Usage: "Apply database migrations before serving",
				Value: true,
			},
		},
		Action: func(cctx *cli.Context) error {
			return serve(cctx.Context, cctx.String("port"), cctx.Bool("migrate"))
		},
	}
}

func serve(ctx context.Context, port string, migrate bool) error {
	startedAt := time.Now()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if port != "" {
		cfg.ServerPort = port
	}

	logger := logutil.New(cfg.LogLevel, !cfg.IsProduction())
	logutil.SetDefault(logger)
	ctx = logutil.WithLogger(ctx, logger)
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	hasher := utils.NewPasswordHasher(utils.DefaultHashCost)
	jwtUtil := utils.NewJWTUtil(cfg.JWTSecret, cfg.JWTExpiration)
	cookies := utils.NewCookieManager(cfg.CookieMaxAge, cfg.IsProduction())
	if cookies.MaxAge() != jwtUtil.Expiration() {
		logger.Warn().
			Dur("cookie_max_age", cookies.MaxAge()).
			Dur("jwt_expiration", jwtUtil.Expiration()).
			Msg("session cookie lifetime differs from token expiry")
	}

	// --- Database Connection ---
	dbPool, err := config.ConnectDB(ctx, &cfg.DB, logger)
	if err != nil {
		return err
	}
	defer dbPool.Close()

	if migrate {
		db := stdlib.OpenDBFromPool(dbPool)
		err := config.RunMigrations(ctx, db)
		_ = db.Close()
		if err != nil {
			return err
		}
		logger.Info().Msg("migrations applied")
	}

	// --- Wiring ---
	userRepo := repository.NewUserRepository(dbPool)
	authService := service.NewAuthService(userRepo, hasher)
	authHandler := handler.NewAuthHandler(authService, jwtUtil, cookies)

	limiter, closeLimiter, err := newLimiter(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeLimiter()

	router := handler.NewRouter(handler.RouterConfig{
		Auth:           authHandler,
		Tokens:         jwtUtil,
		Logger:         logger,
		Limiter:        limiter,
		CORSOrigins:    cfg.CORSAllowedOrigins,
		RequestTimeout: cfg.RequestTimeout,
		StartedAt:      startedAt,
	})

	// --- Start Server ---
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Str("env", cfg.Env).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// --- Graceful Shutdown ---
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	logger.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	logger.Info().Msg("server exiting")
	return nil
}

// newLimiter picks the shared Redis limiter when REDIS_URL is set and the
// in-process one otherwise.
func newLimiter(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (middleware.Limiter, func(), error) {
	noop := func() {}
	if cfg.RateLimitRequests == 0 {
		logger.Info().Msg("rate limiting disabled")
		return nil, noop, nil
	}
	if cfg.RedisURL == "" {
		return middleware.NewMemoryLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow), noop, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, noop, err
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn().Err(err).Msg("redis not reachable at startup, limiter will fail open until it is")
	}
	return middleware.NewRedisLimiter(client, cfg.RateLimitRequests, cfg.RateLimitWindow), func() { _ = client.Close() }, nil
}
