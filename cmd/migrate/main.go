package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mokarr/appointpro/internal/infrastructure/clients/postgres"
	"github.com/mokarr/appointpro/internal/infrastructure/observability"
	"github.com/mokarr/appointpro/pkg/config"
	"github.com/rs/zerolog/log"
)

const usage = `Usage: migrate [command] [args]

Commands:
  up                   apply all pending migrations (default)
  up-to VERSION        apply migrations up to VERSION
  down                 roll back the latest migration
  down-to VERSION      roll back to VERSION
  redo                 roll back and re-apply the latest migration
  reset                roll back all migrations
  status               print the status of all migrations
  version              print the current schema version
`

func main() {
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	command := "up"
	var args []string
	if flag.NArg() > 0 {
		command = flag.Arg(0)
		args = flag.Args()[1:]
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	observability.InitLogger("appointpro-migrate", cfg.Log.Env, cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer client.Close()

	if err := client.RunMigrations(ctx, command, args...); err != nil {
		log.Error().Err(err).Str("command", command).Msg("Migration failed")
		client.Close()
		os.Exit(1)
	}
}
