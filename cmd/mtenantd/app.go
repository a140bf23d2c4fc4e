package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/dmitrymomot/mtenant/pkg/cache"
	"github.com/dmitrymomot/mtenant/pkg/config"
	"github.com/dmitrymomot/mtenant/pkg/httpserver"
	"github.com/dmitrymomot/mtenant/pkg/logger"
	"github.com/dmitrymomot/mtenant/pkg/mongo"
	"github.com/dmitrymomot/mtenant/pkg/pg"
	"github.com/dmitrymomot/mtenant/pkg/redis"
	"github.com/dmitrymomot/mtenant/pkg/registry/gormstore"
	"github.com/dmitrymomot/mtenant/pkg/registry/mongostore"
	"github.com/dmitrymomot/mtenant/pkg/registry/pgstore"
	"github.com/dmitrymomot/mtenant/pkg/scoping"
	"github.com/dmitrymomot/mtenant/pkg/scoping/gormscope"
	"github.com/dmitrymomot/mtenant/pkg/tenancy"
)

var errUnknownDriver = errors.New("mtenantd: unknown DB_DRIVER")

// app holds the wired dependencies of the service.
type app struct {
	cfg         appConfig
	log         *slog.Logger
	db          *gorm.DB
	coordinator *tenancy.Coordinator
	scopes      *scoping.Registry
	checks      []httpserver.Check

	closeOnce sync.Once
	closers   []func()
}

func newApp(ctx context.Context, cfg appConfig, log *slog.Logger) (*app, error) {
	a := &app{cfg: cfg, log: logger.OrDefault(log)}
	if err := a.init(ctx); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) init(ctx context.Context) error {
	var err error
	if a.db, err = openDB(a.cfg); err != nil {
		return err
	}
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	a.onClose(func() { _ = sqlDB.Close() })
	a.checks = append(a.checks, sqlDB.PingContext)

	if err := a.db.WithContext(ctx).AutoMigrate(&Note{}); err != nil {
		return fmt.Errorf("migrate notes: %w", err)
	}

	opts := a.cfg.Tenancy.Options()
	opts.Logger = a.log
	if err := a.attachStorage(ctx, &opts); err != nil {
		return err
	}
	if err := a.attachCache(ctx, &opts); err != nil {
		return err
	}

	if a.coordinator, err = tenancy.New(opts); err != nil {
		return err
	}
	a.onClose(func() { _ = a.coordinator.Close() })

	a.scopes = scoping.NewRegistry()
	a.scopes.Register(Note{}.TableName())
	if err := a.scopes.Bind(a.coordinator, Note{}.TableName()); err != nil {
		return err
	}
	if err := a.db.Use(gormscope.New(a.scopes)); err != nil {
		return err
	}

	return nil
}

func openDB(cfg appConfig) (*gorm.DB, error) {
	gcfg := &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)}
	switch strings.ToLower(cfg.DBDriver) {
	case "sqlite", "":
		db, err := gorm.Open(sqlite.Open(cfg.DBDSN), gcfg)
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
		return db, nil
	case "postgres":
		return gorm.Open(postgres.Open(cfg.DBDSN), gcfg)
	default:
		return nil, fmt.Errorf("%w: %q", errUnknownDriver, cfg.DBDriver)
	}
}

// attachStorage opens the connection the configured registry backend needs.
func (a *app) attachStorage(ctx context.Context, opts *tenancy.Options) error {
	switch tenancy.StorageKind(strings.ToLower(string(opts.Storage))) {
	case tenancy.StorageGorm:
		opts.StorageSettings.Gorm = a.db
		return gormstore.New(a.db).AutoMigrate(ctx)

	case tenancy.StoragePostgres:
		var pgCfg pg.Config
		if err := config.Load(&pgCfg); err != nil {
			return err
		}
		pool, err := pg.Connect(ctx, pgCfg)
		if err != nil {
			return err
		}
		a.onClose(pool.Close)
		a.checks = append(a.checks, pg.Healthcheck(pool))
		if err := pgstore.Migrate(ctx, pool, pgCfg, a.log); err != nil {
			return err
		}
		opts.StorageSettings.Postgres = pool

	case tenancy.StorageMongo:
		var mCfg mongo.Config
		if err := config.Load(&mCfg); err != nil {
			return err
		}
		client, err := mongo.New(ctx, mCfg)
		if err != nil {
			return err
		}
		a.onClose(func() { _ = client.Disconnect(context.Background()) })
		a.checks = append(a.checks, mongo.Healthcheck(client))
		db := client.Database(mCfg.Database)
		if err := mongostore.New(db).EnsureIndexes(ctx); err != nil {
			return err
		}
		opts.StorageSettings.Mongo = db
	}
	return nil
}

func (a *app) attachCache(ctx context.Context, opts *tenancy.Options) error {
	if opts.Cache == "" {
		return nil
	}
	kind, err := cache.ParseKind(string(opts.Cache))
	if err != nil || kind != cache.KindRedis {
		// tenancy.New reports unknown kinds.
		return nil
	}

	var rCfg redis.Config
	if err := config.Load(&rCfg); err != nil {
		return err
	}
	client, err := redis.Connect(ctx, rCfg)
	if err != nil {
		return err
	}
	a.onClose(func() { _ = client.Close() })
	a.checks = append(a.checks, redis.Healthcheck(client))
	opts.CacheClient = client
	return nil
}

func (a *app) onClose(fn func()) {
	a.closers = append(a.closers, fn)
}

// Close releases resources in reverse order of acquisition. Safe to call twice.
func (a *app) Close() {
	a.closeOnce.Do(func() {
		for i := len(a.closers) - 1; i >= 0; i-- {
			a.closers[i]()
		}
	})
}
