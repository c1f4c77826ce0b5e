package main

import (
	"flag"

	"github.com/ghaggin/growtech/internal/config"
	"github.com/ghaggin/growtech/internal/site"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.Log.Production {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func main() {
	var configPath = flag.String("config", "", "path to a yaml config file")
	flag.Parse()

	newPath := func() config.Path {
		return config.Path(*configPath)
	}

	app := fx.New(
		fx.Provide(
			newPath,
			newLogger,
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		site.Module,
		fx.Invoke(site.RegisterHooks),
	)

	app.Run()
}
