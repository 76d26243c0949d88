package main

import (
	"context"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/frontbuild/cmd/frontbuild/internal/commands"
	"github.com/wolfeidau/frontbuild/internal/logger"
)

var (
	version = "dev"
	cli     struct {
		Build      commands.BuildCmd      `cmd:"" help:"Build the assets once"`
		Watch      commands.WatchCmd      `cmd:"" help:"Build the assets and rebuild on change"`
		Serve      commands.ServeCmd      `cmd:"" help:"Watch the assets and serve them over HTTP"`
		Components commands.ComponentsCmd `cmd:"" help:"Print the async component registration block"`
		Debug      bool                   `help:"Enable debug mode." env:"FRONTBUILD_DEBUG"`
		Telemetry  bool                   `help:"Export build metrics and traces over OTLP." env:"FRONTBUILD_TELEMETRY"`
		Version    kong.VersionFlag
	}
)

func main() {
	ctx := context.Background()
	cmd := kong.Parse(&cli,
		kong.Description("Builds the site theme front-end assets."),
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))

	log.Logger = logger.Setup(cli.Debug)

	err := cmd.Run(&commands.Globals{Debug: cli.Debug, Telemetry: cli.Telemetry, Version: version})
	cmd.FatalIfErrorf(err)
}
