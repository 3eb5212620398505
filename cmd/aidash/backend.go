package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/goliatone/go-aidash/components/querybackend"
)

type databaseFlags struct {
	Driver string `default:"sqlite" env:"AIDASH_DB_DRIVER" help:"Database driver: sqlserver, pgx, mysql or sqlite."`
	DSN    string `name:"dsn" default:"aidash-demo.db" env:"AIDASH_DB_DSN" help:"Database connection string."`
}

type backendCmd struct {
	databaseFlags
	Addr string `default:":8000" env:"AIDASH_BACKEND_ADDR" help:"Listen address."`
	Seed bool   `help:"Load the demo tables before serving."`
}

func (cmd *backendCmd) Run(ctx context.Context, g *Globals) error {
	logger, err := g.logger()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	db, dialect, err := querybackend.Open(ctx, cmd.Driver, cmd.DSN)
	if err != nil {
		return err
	}
	defer db.Close()

	if cmd.Seed {
		if err := querybackend.Seed(ctx, db, dialect, querybackend.DefaultSeed()); err != nil {
			return err
		}
	}
	srv, err := querybackend.NewServer(querybackend.Options{
		DB:      db,
		Dialect: dialect,
		Logger:  logger.Named("backend"),
	})
	if err != nil {
		return err
	}
	logger.Info("backend listening", zap.String("addr", cmd.Addr), zap.String("driver", string(dialect)))
	return serveHTTP(ctx, cmd.Addr, srv.Routes(), logger)
}

type seedBackendCmd struct {
	databaseFlags
}

func (cmd *seedBackendCmd) Run(ctx context.Context, g *Globals) error {
	db, dialect, err := querybackend.Open(ctx, cmd.Driver, cmd.DSN)
	if err != nil {
		return err
	}
	defer db.Close()

	tables := querybackend.DefaultSeed()
	if err := querybackend.Seed(ctx, db, dialect, tables); err != nil {
		return err
	}
	for _, table := range tables {
		fmt.Fprintf(g.out(), "✓ %s (%d rows)\n", table.Name, len(table.Rows))
	}
	return nil
}
