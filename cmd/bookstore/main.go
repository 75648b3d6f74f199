package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/MikeMC777/bookstore/internal/catalog"
	"github.com/MikeMC777/bookstore/internal/config"
	"github.com/MikeMC777/bookstore/internal/database"
	"github.com/MikeMC777/bookstore/internal/notify"
	"github.com/MikeMC777/bookstore/internal/order"
	"github.com/MikeMC777/bookstore/internal/payment"
	"github.com/MikeMC777/bookstore/internal/session"
	"github.com/MikeMC777/bookstore/internal/tracing"
	"github.com/MikeMC777/bookstore/internal/user"
)

// @title           Bookstore API
// @version         1.0
// @description     JSON endpoints of the bookstore: cart updates and PayPal payment helpers.
// @BasePath        /

var version = "dev"

func main() {
	app := &cli.App{
		Name:    "bookstore",
		Usage:   "online bookstore with PayPal checkout",
		Version: version,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the web shop and the gRPC health endpoint",
				Action: serveCmd,
			},
			{
				Name:   "migrate",
				Usage:  "apply pending database migrations and exit",
				Action: migrateCmd,
			},
		},
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("bookstore")
	}
}

func setupLogger(cfg config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	if cfg.Debug {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	if cfg.Debug {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
	zerolog.DefaultContextLogger = &log.Logger
}

func migrateCmd(*cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	setupLogger(cfg)
	return database.Migrate(cfg.Postgres)
}

func serveCmd(c *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	setupLogger(cfg)

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing, version)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			log.Error().Err(err).Msg("tracing shutdown")
		}
	}()

	if err := database.Migrate(cfg.Postgres); err != nil {
		return err
	}
	pool, err := database.NewPool(ctx, cfg.Postgres)
	if err != nil {
		return err
	}
	defer pool.Close()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	log.Info().Str("addr", cfg.Redis.Addr).Msg("connected to redis")

	mailer, err := notify.NewMailer(cfg.Email)
	if err != nil {
		return err
	}

	books := catalog.NewPGRepo(pool)
	orders := order.NewPGRepo(pool)
	orderSvc := order.NewService(orders, books, cfg.ShippingCost)
	paymentSvc := payment.NewService(payment.Options{
		Orders:   orders,
		IPNs:     payment.NewPGIPNRepo(pool),
		Verifier: payment.NewPostbackVerifier(cfg.PayPalActionURL()),
		Notifier: notify.NewNotifier(mailer, cfg.Email.DefaultFrom, cfg.ShippingCost),
		Placer:   orderSvc,
		Settings: payment.Settings{
			ReceiverEmail: cfg.PayPal.ReceiverEmail,
			Currency:      cfg.PayPal.CurrencyCode,
			ActionURL:     cfg.PayPalActionURL(),
			Shipping:      cfg.ShippingCost,
		},
		TrustReturn: cfg.PayPal.TrustReturn,
	})

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	router, err := newRouter(deps{
		cfg:      cfg,
		books:    books,
		users:    user.NewService(user.NewPGRepo(pool)),
		orders:   orderSvc,
		payments: paymentSvc,
		sessions: session.NewStore(rdb, cfg.Redis.SessionTTL),
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           otelhttp.NewHandler(router, "bookstore"),
		ReadHeaderTimeout: 10 * time.Second,
	}

	healthSrv := health.NewServer()
	grpcSrv := grpc.NewServer()
	healthpb.RegisterHealthServer(grpcSrv, healthSrv)
	reflection.Register(grpcSrv)
	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		return fmt.Errorf("grpc listen: %w", err)
	}

	errCh := make(chan error, 2)
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("http listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http: %w", err)
		}
	}()
	go func() {
		log.Info().Str("addr", cfg.GRPCAddr).Msg("grpc health listening")
		if err := grpcSrv.Serve(lis); err != nil {
			errCh <- fmt.Errorf("grpc: %w", err)
		}
	}()
	go watchHealth(ctx, healthSrv, func(ctx context.Context) error {
		if err := pool.Ping(ctx); err != nil {
			return err
		}
		return rdb.Ping(ctx).Err()
	})

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	case err = <-errCh:
		log.Error().Err(err).Msg("server failed, shutting down")
	}

	healthSrv.Shutdown()
	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if serr := srv.Shutdown(sctx); serr != nil {
		log.Error().Err(serr).Msg("http shutdown")
	}
	grpcSrv.GracefulStop()
	return err
}

// watchHealth flips the overall gRPC serving status with the readiness of
// Postgres and Redis.
func watchHealth(ctx context.Context, hs *health.Server, ping func(context.Context) error) {
	t := time.NewTicker(10 * time.Second)
	defer t.Stop()
	for {
		pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		status := healthpb.HealthCheckResponse_SERVING
		if err := ping(pctx); err != nil {
			status = healthpb.HealthCheckResponse_NOT_SERVING
			log.Warn().Err(err).Msg("dependency check failed")
		}
		cancel()
		hs.SetServingStatus("", status)

		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}
