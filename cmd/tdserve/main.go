package main

import (
	"context"
	"net/http"

	"github.com/spf13/afero"
	flag "github.com/spf13/pflag"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"tdprint/pkg/config"
	"tdprint/pkg/device/remote"
	"tdprint/pkg/device/td2000"
	"tdprint/pkg/device/virtual"
	"tdprint/pkg/proto"
)

var cfgPath = flag.String("config", "", "config file")
var listen = flag.String("listen", ":9123", "listen addr")
var mock = flag.Bool("mock", false, "log jobs instead of printing")
var debug = flag.Bool("debug", false, "set debug")

func main() {
	flag.Parse()

	fx.New(
		fx.Provide(
			func() (*zap.Logger, error) {
				if *debug {
					return zap.NewDevelopment()
				}
				return zap.NewProduction()
			},
			func() (*config.Config, *http.Server, error) {
				cfg, err := config.Load(*cfgPath)
				return cfg, &http.Server{Addr: *listen}, err
			},
			newDevice,
		),
		fx.Invoke(
			remote.Proxy,
		),
	).Run()
}

func newDevice(cfg *config.Config, logger *zap.Logger, lifecycle fx.Lifecycle) (proto.Control, error) {
	if *mock {
		return virtual.Mock(logger), nil
	}

	opts, err := cfg.PrinterOptions()
	if err != nil {
		return nil, err
	}

	ch, err := cfg.Open(afero.NewOsFs(), logger)
	if err != nil {
		return nil, err
	}

	printer := td2000.New(ch, logger, opts...)
	lifecycle.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return printer.Close()
		},
	})

	return printer, nil
}
