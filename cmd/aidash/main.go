package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"go.uber.org/zap"
)

// Globals are shared by every subcommand.
type Globals struct {
	Debug bool `help:"Enable development logging." env:"AIDASH_DEBUG"`

	stdout io.Writer
}

type cli struct {
	Globals

	Serve       serveCmd       `cmd:"" help:"Serve the dashboard UI and API."`
	Backend     backendCmd     `cmd:"" help:"Run the reference AI/SQL backend."`
	SeedBackend seedBackendCmd `cmd:"" name:"seed-backend" help:"Create and fill the demo tables used by the backend."`
	Library     libraryCmd     `cmd:"" help:"List the predefined widget library."`
	ChartTypes  chartTypesCmd  `cmd:"" name:"chart-types" help:"List the supported chart types."`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := cli{Globals: Globals{stdout: os.Stdout}}
	kctx := kong.Parse(&app,
		kong.Name("aidash"),
		kong.Description("AI/SQL widget dashboard with a reference query backend."),
		kong.UsageOnError(),
		kong.BindTo(ctx, (*context.Context)(nil)),
	)
	err := kctx.Run(&app.Globals)
	kctx.FatalIfErrorf(err)
}

func (g *Globals) logger() (*zap.Logger, error) {
	if g.Debug {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.DisableStacktrace = true
	return cfg.Build()
}

func (g *Globals) out() io.Writer {
	if g.stdout == nil {
		return os.Stdout
	}
	return g.stdout
}
