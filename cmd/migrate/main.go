package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/Rrens/slidecraft/internal/config"
	"github.com/Rrens/slidecraft/internal/logging"
	"github.com/Rrens/slidecraft/internal/repository/postgres"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	down := flag.Int("down", 0, "roll back this many migrations instead of applying")
	source := flag.String("source", "file://migrations", "migration source URL")
	showVersion := flag.Bool("version", false, "print the applied schema version and exit")
	flag.Parse()

	// Load .env file if it exists
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	closer, err := logging.Setup(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	defer closer.Close()

	log.Info().
		Str("host", cfg.Database.Host).
		Int("port", cfg.Database.Port).
		Str("source", *source).
		Msg("Connecting to database")

	migrator, err := postgres.NewMigrator(cfg.Database.DSN(), *source)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open migrations")
	}
	defer migrator.Close()

	switch {
	case *showVersion:
		v, dirty, verr := migrator.Version()
		if verr != nil {
			log.Fatal().Err(verr).Msg("Failed to read schema version")
		}
		fmt.Printf("version %d (dirty: %t)\n", v, dirty)
	case *down > 0:
		err = migrator.Down(*down)
	default:
		err = migrator.Up()
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Migration failed")
	}
}
