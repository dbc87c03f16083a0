package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/tierklinik-dobersberg/cis-slotgrid/internal/calendar"
	"github.com/tierklinik-dobersberg/cis-slotgrid/internal/config"
	"github.com/tierklinik-dobersberg/cis-slotgrid/internal/datasource"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type App struct {
	Config  config.Config
	Source  datasource.Source
	Builder *calendar.Builder

	closers []func(context.Context) error
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	app := &App{
		Config: cfg,
	}

	source, err := app.newSource(ctx)
	if err != nil {
		_ = app.Close(ctx)

		return nil, err
	}

	app.Source = source
	app.Builder = calendar.NewBuilder(source)

	return app, nil
}

func (app *App) newSource(ctx context.Context) (datasource.Source, error) {
	var (
		source datasource.Source
		cfg    = app.Config
	)

	if cfg.DataSource.URL != "" {
		timeout, err := cfg.RequestTimeout()
		if err != nil {
			return nil, err
		}

		httpSource, err := datasource.NewHTTPSource(
			cfg.DataSource.URL,
			cfg.DataSource.Path,
			datasource.WithHTTPClient(&http.Client{
				Transport: otelhttp.NewTransport(http.DefaultTransport),
				Timeout:   timeout,
			}),
			datasource.WithRateLimit(cfg.DataSource.RequestsPerSecond, cfg.DataSource.Burst),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to prepare http data source: %w", err)
		}

		logrus.Infof("serving schedules from %s", cfg.DataSource.URL)
		source = httpSource
	} else {
		mongoSource, err := app.connectMongo(ctx)
		if err != nil {
			return nil, err
		}

		logrus.Infof("serving schedules from mongodb database %q", cfg.MongoDatabaseName)
		source = mongoSource
	}

	ttl, err := cfg.CacheTTL()
	if err != nil {
		return nil, err
	}

	if ttl <= 0 {
		logrus.Warn("schedule caching disabled")

		return source, nil
	}

	if cfg.Cache.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.Cache.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis URL: %w", err)
		}

		rdb := redis.NewClient(opts)
		app.closers = append(app.closers, func(context.Context) error {
			return rdb.Close()
		})

		source = datasource.NewRedisSource(rdb, ttl, source)
	}

	cached := datasource.NewCachedSource(source, ttl)
	cached.Start(ctx)

	return cached, nil
}

// ConnectMongo connects to the configured MongoDB database and prepares
// the snapshot collection.
func ConnectMongo(ctx context.Context, url, database string) (*datasource.MongoSource, *mongo.Client, error) {
	cli, err := mongo.Connect(ctx, options.Client().ApplyURI(url))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := cli.Ping(ctx, nil); err != nil {
		_ = cli.Disconnect(ctx)

		return nil, nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	source, err := datasource.NewMongoSource(ctx, cli.Database(database))
	if err != nil {
		_ = cli.Disconnect(ctx)

		return nil, nil, fmt.Errorf("failed to prepare schedule snapshot collection: %w", err)
	}

	return source, cli, nil
}

func (app *App) connectMongo(ctx context.Context) (*datasource.MongoSource, error) {
	source, cli, err := ConnectMongo(ctx, app.Config.MongoURL, app.Config.MongoDatabaseName)
	if err != nil {
		return nil, err
	}

	app.closers = append(app.closers, cli.Disconnect)

	return source, nil
}

// Close releases all connections held by the application.
func (app *App) Close(ctx context.Context) error {
	var firstErr error

	for _, fn := range app.closers {
		if err := fn(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	app.closers = nil

	return firstErr
}
