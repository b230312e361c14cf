// Package app assembles the staging module and its host stand-in.
package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/emrgen/relstage/internal/binding"
	"github.com/emrgen/relstage/internal/cache"
	"github.com/emrgen/relstage/internal/clock"
	"github.com/emrgen/relstage/internal/compress"
	"github.com/emrgen/relstage/internal/config"
	"github.com/emrgen/relstage/internal/events"
	"github.com/emrgen/relstage/internal/host"
	"github.com/emrgen/relstage/internal/module"
	"github.com/emrgen/relstage/internal/queue"
	"github.com/emrgen/relstage/internal/staging"
	"github.com/emrgen/relstage/internal/store"
	"github.com/emrgen/relstage/internal/suppress"
	"github.com/emrgen/relstage/internal/translate"
	"github.com/sirupsen/logrus"
)

// Options tune New. Zero values select in-process defaults.
type Options struct {
	Mode  module.Mode
	Codec compress.Compress
	Queue queue.TaskQueue
	Cache cache.TranslationCache
	Clock clock.Clock
}

// App is one server: its store, the platform stand-in, and the staging
// module subscribed to the platform's events.
type App struct {
	Store      store.Store
	Bus        *events.Bus
	Objects    *host.Objects
	Engine     *host.Engine
	Builder    *staging.Builder
	Reconciler *binding.Reconciler
	Suppressor *suppress.Suppressor
	Module     *module.Module

	queue  queue.TaskQueue
	closer func() error
}

func New(s store.Store, opts Options) *App {
	if opts.Mode == "" {
		opts.Mode = module.ModeWithDocument
	}
	if opts.Queue == nil {
		opts.Queue = queue.NewNop()
	}

	bus := events.NewBus()
	builder := staging.NewBuilder(s, opts.Codec, opts.Queue, nil, opts.Clock)
	engine := host.NewEngine(s, bus, builder)
	objects := host.NewObjects(s, bus)
	translator := translate.NewGUIDTranslator(s, opts.Cache)
	reconciler := binding.NewReconciler(binding.NodeCategory, s, objects, translator, engine, builder.Clock())
	suppressor := suppress.NewSuppressor(s, builder.Clock())
	mod := module.New(opts.Mode, s, builder, reconciler, suppressor)

	if opts.Mode != module.ModeWithDocument {
		engine.LogBindingObjects(bus)
	}
	mod.Init(bus)

	return &App{
		Store:      s,
		Bus:        bus,
		Objects:    objects,
		Engine:     engine,
		Builder:    builder,
		Reconciler: reconciler,
		Suppressor: suppressor,
		Module:     mod,
		queue:      opts.Queue,
	}
}

// FromConfig opens the configured database, migrates it, and connects the
// configured cache and queue.
func FromConfig(ctx context.Context, cfg *config.Config) (*App, error) {
	db, err := config.OpenDB(cfg)
	if err != nil {
		return nil, err
	}

	s := store.NewGormStore(db)
	if err := s.Migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	codec, err := compress.New(cfg.Compression)
	if err != nil {
		return nil, err
	}

	opts := Options{Mode: module.ParseMode(cfg.NodeCategoryStagingMode), Codec: codec}

	var redis *cache.RedisTranslationCache
	if cfg.Redis.Addr != "" {
		redis = cache.NewRedisTranslationCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		opts.Cache = redis
	}

	if brokers := cfg.KafkaBrokers(); len(brokers) > 0 {
		q, err := queue.NewKafkaTaskQueue(strings.Join(brokers, ","), cfg.Kafka.Topic)
		if err != nil {
			return nil, err
		}
		opts.Queue = q
	}

	a := New(s, opts)
	a.closer = func() error {
		if redis != nil {
			return redis.Close()
		}
		return nil
	}

	a.Module.EnsureForeignKeys(ctx)
	logrus.Infof("relstage ready: driver=%s mode=%s codec=%s", cfg.Database.Driver, a.Module.Mode(), codec.Name())
	return a, nil
}

func (a *App) Close() error {
	err := a.queue.Close()
	if a.closer != nil {
		if cerr := a.closer(); err == nil {
			err = cerr
		}
	}
	return err
}
