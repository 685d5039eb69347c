package cmd

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/example/little-lemon/internal/app"
	"github.com/example/little-lemon/internal/application/bookings"
	"github.com/example/little-lemon/internal/domain/reservation"
	"github.com/example/little-lemon/internal/infrastructure/config"
	"github.com/example/little-lemon/internal/infrastructure/httpapi"
	"github.com/example/little-lemon/internal/infrastructure/metrics"
	"github.com/example/little-lemon/internal/infrastructure/postgres"
	"github.com/example/little-lemon/internal/infrastructure/simapi"
	"github.com/example/little-lemon/internal/infrastructure/snapshot"
	"github.com/example/little-lemon/internal/infrastructure/storage"
)

// deps is everything a command needs to talk to the bookings provider.
type deps struct {
	cfg      config.Config
	logger   *zap.Logger
	kv       storage.KV
	api      reservation.API
	provider *bookings.Provider
}

// setup loads config and builds storage, the reservation API and a started
// provider. quiet raises the log level to warn for one-shot commands.
func setup(ctx context.Context, quiet bool) (*deps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := app.NewLogger(cfg.Environment)
	if quiet {
		logger = logger.WithOptions(zap.IncreaseLevel(zapcore.WarnLevel))
	}

	kv, err := openKV(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	api, err := newAPI(cfg, logger)
	if err != nil {
		_ = kv.Close()
		return nil, err
	}

	p := bookings.NewProvider(api, snapshot.New(kv, cfg.StorageKey, logger),
		bookings.WithLogger(logger),
		bookings.WithLocation(cfg.Location),
		bookings.WithCallTimeout(cfg.APITimeout),
		bookings.WithMetrics(metrics.Bookings()),
	)
	phase := p.Start(ctx)
	logger.Debug("provider started", zap.Stringer("phase", phase))

	return &deps{cfg: cfg, logger: logger, kv: kv, api: api, provider: p}, nil
}

func (d *deps) Close() {
	d.provider.Flush()
	if err := d.kv.Close(); err != nil {
		d.logger.Warn("close storage", zap.Error(err))
	}
	_ = d.logger.Sync()
}

func openKV(ctx context.Context, cfg config.Config, logger *zap.Logger) (storage.KV, error) {
	switch cfg.StorageBackend {
	case storage.BackendMemory:
		logger.Warn("using in-memory storage; bookings are lost on exit")
		return storage.NewMemKV(), nil
	case storage.BackendPostgres:
		pool, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := postgres.Ping(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		return postgres.NewKVRepo(pool), nil
	case storage.BackendLevelDB:
		db, err := storage.OpenLevelDB(cfg.LevelDBPath)
		if err != nil {
			return nil, err
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.StorageBackend)
	}
}

func newAPI(cfg config.Config, logger *zap.Logger) (reservation.API, error) {
	if cfg.ReservationAPIURL != "" {
		logger.Info("using remote reservation api", zap.String("url", cfg.ReservationAPIURL))
		c, err := httpapi.New(cfg.ReservationAPIURL, cfg.APITimeout)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	return simapi.New(simapi.WithSuccessRate(cfg.SubmitSuccessRate), simapi.WithLogger(logger)), nil
}
