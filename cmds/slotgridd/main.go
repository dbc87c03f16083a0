package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/bufbuild/connect-go"
	"github.com/sirupsen/logrus"
	"github.com/tierklinik-dobersberg/apis/pkg/cors"
	"github.com/tierklinik-dobersberg/apis/pkg/log"
	"github.com/tierklinik-dobersberg/apis/pkg/server"
	"github.com/tierklinik-dobersberg/cis-slotgrid/internal/app"
	"github.com/tierklinik-dobersberg/cis-slotgrid/internal/config"
	"github.com/tierklinik-dobersberg/cis-slotgrid/internal/services"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	configPath := os.Getenv("CONFIG_FILE")

	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	if configPath == "" {
		workdir, err := os.Getwd()
		if err != nil {
			logrus.Fatalf("failed to get working directory: %s", err.Error())
		}

		configPath = filepath.Join(workdir, "config.yml")
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logrus.Fatalf("failed to load configuration: %s", err)
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logrus.Fatalf("invalid log level: %s", err)
	}
	logrus.SetLevel(level)

	app, err := app.New(ctx, cfg)
	if err != nil {
		logrus.Fatalf("failed to prepare application providers: %s", err)
	}

	interceptors := connect.WithInterceptors(
		log.NewLoggingInterceptor(),
	)

	serveMux := http.NewServeMux()

	slotGridService := services.New(app.Builder)
	path, handler := services.NewHandler(slotGridService, interceptors)
	serveMux.Handle(path, handler)

	corsOpts := cors.Config{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowCredentials: false, // we don't handle authentication on our own here
	}

	httpServer := server.Create(
		cfg.ListenAddress,
		cors.Wrap(corsOpts, serveMux),
	)

	logrus.Infof("listening on %s", cfg.ListenAddress)

	serveErr := server.Serve(ctx, httpServer)

	closeCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := app.Close(closeCtx); err != nil {
		logrus.Errorf("failed to close application: %s", err)
	}

	if serveErr != nil {
		logrus.Fatalf("failed to listen and serve: %s", serveErr)
	}
}
