package cli

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

	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/champions-academy/clubgate/internal/clubgate/service"
	"github.com/champions-academy/clubgate/internal/clubgate/store"
	"github.com/champions-academy/clubgate/internal/clubgate/store/memory"
	redisstore "github.com/champions-academy/clubgate/internal/clubgate/store/redis"
	"github.com/champions-academy/clubgate/internal/clubgate/store/sqlite"
	"github.com/champions-academy/clubgate/internal/config"
	"github.com/champions-academy/clubgate/internal/db"
	"github.com/champions-academy/clubgate/internal/grpcapi"
	"github.com/champions-academy/clubgate/internal/httpapi"
)

const shutdownTimeout = 5 * time.Second

type serveOptions struct {
	httpAddr string
	grpcAddr string
}

func newServeCommand(g *globalOptions) *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP and gRPC health servers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := g.load()
			if err != nil {
				return err
			}
			if opts.httpAddr != "" {
				cfg.HTTPAddr = opts.httpAddr
			}
			if opts.grpcAddr != "" {
				cfg.GRPCAddr = opts.grpcAddr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, log)
		},
	}

	cmd.Flags().StringVar(&opts.httpAddr, "http-addr", "", "HTTP listen address (overrides CLUBGATE_HTTP_ADDR)")
	cmd.Flags().StringVar(&opts.grpcAddr, "grpc-addr", "", "gRPC health listen address (overrides CLUBGATE_GRPC_ADDR)")
	return cmd
}

func serve(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	log.Info("starting clubgate", "env", cfg.Env, "db", cfg.DBPath)

	conn, err := db.Open(ctx, db.Config{Path: cfg.DBPath, Env: cfg.Env})
	if err != nil {
		return err
	}
	defer conn.Close()

	if cfg.SeedDev && cfg.Env == "dev" {
		if err := db.SeedDev(ctx, conn, seedOptions(cfg)); err != nil {
			return err
		}
		log.Info("dev seed loaded")
	}

	writer := db.NewWorker(conn)
	defer writer.Close()

	locker, closeLocker, err := newLocker(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeLocker()

	checkins := sqlite.NewCheckinStore(conn, writer)
	audit := sqlite.NewAuditStore(conn, writer)

	access := service.NewAccessService(service.Dependencies{
		Members:       sqlite.NewMemberStore(conn, writer),
		Subscriptions: sqlite.NewSubscriptionStore(conn, writer),
		Payments:      sqlite.NewPaymentStore(conn, writer),
		Checkins:      checkins,
		Audit:         audit,
		Locker:        locker,
		Logger:        log,
	}, accessPolicy(cfg))
	activity := service.NewActivityService(checkins, audit)

	httpSrv := httpapi.NewServer(httpapi.Dependencies{
		Logger:          log,
		Addr:            cfg.HTTPAddr,
		CORSOrigin:      cfg.CORSOrigin,
		AccessService:   access,
		ActivityService: activity,
		DB:              conn,
	})

	grpcSrv, err := grpcapi.NewServer(cfg.GRPCAddr, log)
	if err != nil {
		return err
	}
	grpcSrv.SetServing(true)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("http listening", "addr", cfg.HTTPAddr)
		if err := httpSrv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve HTTP: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return grpcSrv.Serve(gctx)
	})
	g.Go(func() error {
		grpcSrv.WatchDB(gctx, conn, 10*time.Second)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			log.Error("http shutdown", "error", err)
		}
		return nil
	})

	err = g.Wait()
	log.Info("clubgate stopped")
	return err
}

func newLocker(ctx context.Context, cfg config.Config, log *slog.Logger) (store.MemberLocker, func(), error) {
	if !cfg.UseRedisLock() {
		return memory.NewMemberLocker(), func() {}, nil
	}

	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("connect redis %s: %w", cfg.RedisAddr, err)
	}
	log.Info("using redis member lock", "addr", cfg.RedisAddr)

	return redisstore.NewMemberLocker(client, cfg.LockTTL, log), func() { _ = client.Close() }, nil
}

func accessPolicy(cfg config.Config) service.AccessPolicy {
	return service.AccessPolicy{
		DefaultLocation:   cfg.DefaultLocation,
		InsuranceFeeCents: cfg.InsuranceFeeCents,
		InsuranceNote:     cfg.InsuranceNote,
		ScanTimeout:       cfg.ScanTimeout,
		DuplicateWindow:   cfg.DuplicateWindow,
		Timezone:          cfg.Location(),
	}
}

func seedOptions(cfg config.Config) db.SeedDevOptions {
	return db.SeedDevOptions{
		Location:          cfg.Location(),
		InsuranceNote:     cfg.InsuranceNote,
		InsuranceFeeCents: cfg.InsuranceFeeCents,
	}
}
