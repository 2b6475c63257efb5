// Command notifyd serves notification dispatch over HTTP.
//
// Configuration comes from the environment (and an optional .env file):
// STORAGE_DRIVER selects memory or postgres, SEED_FILE loads a YAML
// configuration into the chosen storage, CACHE_DRIVER puts an lru or redis
// cache in front of configuration reads, EMAIL_TRANSPORT picks smtp, postmark
// or dev delivery.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrymomot/notifycenter/pkg/attachments"
	"github.com/dmitrymomot/notifycenter/pkg/cache"
	"github.com/dmitrymomot/notifycenter/pkg/config"
	"github.com/dmitrymomot/notifycenter/pkg/dispatchapi"
	"github.com/dmitrymomot/notifycenter/pkg/email"
	"github.com/dmitrymomot/notifycenter/pkg/email/templates"
	"github.com/dmitrymomot/notifycenter/pkg/gateway"
	"github.com/dmitrymomot/notifycenter/pkg/httpserver"
	"github.com/dmitrymomot/notifycenter/pkg/logger"
	"github.com/dmitrymomot/notifycenter/pkg/notification"
	"github.com/dmitrymomot/notifycenter/pkg/notification/pgstore"
	"github.com/dmitrymomot/notifycenter/pkg/pg"
	"github.com/dmitrymomot/notifycenter/pkg/redis"
)

type appConfig struct {
	Env             string        `env:"APP_ENV" envDefault:"development"`
	ServiceName     string        `env:"APP_NAME" envDefault:"notifyd"`
	Storage         string        `env:"STORAGE_DRIVER" envDefault:"memory"` // memory | postgres
	SeedFile        string        `env:"SEED_FILE"`
	Cache           string        `env:"CACHE_DRIVER" envDefault:"lru"` // none | lru | redis
	CacheTTL        time.Duration `env:"CACHE_TTL" envDefault:"5m"`
	CacheSize       int           `env:"CACHE_SIZE" envDefault:"1024"`
	AttachmentsRoot string        `env:"ATTACHMENTS_ROOT" envDefault:"./files"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		slog.Error("notifyd stopped", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var app appConfig
	if err := config.Load(&app); err != nil {
		return err
	}

	log := logger.New(
		logger.WithEnvironment(app.Env, app.ServiceName),
		logger.WithContextExtractors(dispatchapi.RequestIDExtractor()),
	)
	logger.SetAsDefault(log)

	var readiness []dispatchapi.Option

	storage, writer, closeStorage, err := openStorage(ctx, app, log, &readiness)
	if err != nil {
		return err
	}
	defer closeStorage()

	if app.SeedFile != "" {
		if err := notification.LoadYAMLFile(ctx, app.SeedFile, writer); err != nil {
			return fmt.Errorf("seed %s: %w", app.SeedFile, err)
		}
		log.LogAttrs(ctx, slog.LevelInfo, "configuration seeded", logger.Path(app.SeedFile))
	}

	storage, closeCache, err := withCache(ctx, app, storage, log, &readiness)
	if err != nil {
		return err
	}
	defer closeCache()

	var emailCfg email.Config
	if err := config.Load(&emailCfg); err != nil {
		return err
	}
	sender, err := email.New(emailCfg)
	if err != nil {
		return err
	}

	var gwCfg gateway.Config
	if err := config.Load(&gwCfg); err != nil {
		return err
	}

	layouts := templates.NewRegistry()
	layouts.Register("mail_bare", templates.Bare)

	emailOpts := []gateway.EmailOption{
		gateway.WithEmailLogger(log),
		gateway.WithLayouts(layouts),
	}
	if resolver, err := attachments.NewResolver(app.AttachmentsRoot, storage, attachments.WithLogger(log)); err == nil {
		emailOpts = append(emailOpts, gateway.WithAttachments(resolver))
	} else {
		log.LogAttrs(ctx, slog.LevelWarn, "attachments disabled", logger.Error(err))
	}

	manager := notification.NewManager(storage,
		notification.WithGateway(notification.GatewayEmail, gateway.NewEmail(gwCfg, storage, sender, emailOpts...)),
		notification.WithManagerLogger(log),
		notification.WithDefaultLanguage(gwCfg.DefaultLanguage),
	)

	var httpCfg httpserver.Config
	if err := config.Load(&httpCfg); err != nil {
		return err
	}
	srv := httpserver.NewFromConfig(httpCfg, httpserver.WithLogger(log))

	router := dispatchapi.Router(manager, append(readiness, dispatchapi.WithLogger(log))...)
	return srv.Run(ctx, router)
}

func openStorage(ctx context.Context, app appConfig, log *slog.Logger, readiness *[]dispatchapi.Option) (notification.Storage, notification.Writer, func(), error) {
	switch app.Storage {
	case "memory", "":
		s := notification.NewMemoryStorage()
		return s, s, func() {}, nil

	case "postgres":
		var cfg pg.Config
		if err := config.Load(&cfg); err != nil {
			return nil, nil, nil, err
		}
		pool, err := pg.Connect(ctx, cfg)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := pg.Migrate(ctx, pool, cfg, pgstore.Migrations, pgstore.MigrationsDir, log); err != nil {
			pool.Close()
			return nil, nil, nil, err
		}
		*readiness = append(*readiness, dispatchapi.WithReadinessCheck("postgres", pg.Healthcheck(pool)))
		s := pgstore.New(pool)
		return s, s, pool.Close, nil
	}
	return nil, nil, nil, fmt.Errorf("unknown STORAGE_DRIVER %q", app.Storage)
}

func withCache(ctx context.Context, app appConfig, next notification.Storage, log *slog.Logger, readiness *[]dispatchapi.Option) (notification.Storage, func(), error) {
	var c cache.Cache
	closeFn := func() {}

	switch app.Cache {
	case "none", "":
		return next, closeFn, nil
	case "lru":
		c = cache.NewLRU(app.CacheSize)
	case "redis":
		var cfg redis.Config
		if err := config.Load(&cfg); err != nil {
			return nil, nil, err
		}
		client, err := redis.Connect(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		*readiness = append(*readiness, dispatchapi.WithReadinessCheck("redis", redis.Healthcheck(client)))
		c = redis.NewCache(client, cfg.KeyPrefix)
		closeFn = func() {
			if err := client.Close(); err != nil {
				log.LogAttrs(ctx, slog.LevelWarn, "closing redis client", logger.Error(err))
			}
		}
	default:
		return nil, nil, fmt.Errorf("unknown CACHE_DRIVER %q", app.Cache)
	}

	return notification.NewCachedStorage(next, c, app.CacheTTL, notification.WithCacheLogger(log)), closeFn, nil
}
