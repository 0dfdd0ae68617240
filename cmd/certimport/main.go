// Command certimport loads a legacy certificate list (YAML or JSON, dates as
// dd/mm/yyyy) into the database in a single transaction.
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/vaughan-dsouza/certportal/internal/db"
	"github.com/vaughan-dsouza/certportal/internal/importer"
	"github.com/vaughan-dsouza/certportal/internal/logging"
	"github.com/vaughan-dsouza/certportal/internal/store"
)

func main() {
	file := pflag.StringP("file", "f", "", "legacy certificate list (YAML or JSON)")
	envFile := pflag.String("env-file", ".env", "dotenv file to load before reading the environment")
	databaseURL := pflag.String("database-url", "", "database URL (defaults to DATABASE_URL)")
	dryRun := pflag.Bool("dry-run", false, "validate the file without writing anything")
	pflag.Parse()

	logger, err := logging.New(false, "info")
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if *file == "" {
		pflag.Usage()
		os.Exit(2)
	}

	_ = godotenv.Load(*envFile)
	if *databaseURL == "" {
		*databaseURL = os.Getenv("DATABASE_URL")
	}
	if *databaseURL == "" {
		*databaseURL = "sqlite://certificados.db"
	}

	if err := run(*file, *databaseURL, *dryRun, logger); err != nil {
		logger.Fatalw("import failed", "file", *file, "error", err)
	}
}

func run(path, databaseURL string, dryRun bool, log *zap.SugaredLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if dryRun {
		n, err := importer.Import(ctx, f, nil, true)
		if err != nil {
			return err
		}
		log.Infow("dry run: file is valid", "records", n)
		return nil
	}

	conn, err := db.Connect(databaseURL, db.PoolConfig{MaxOpen: 2, MaxIdle: 2})
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := db.Migrate(ctx, conn); err != nil {
		return err
	}

	certs := store.NewCertificateStore(conn, clockwork.NewRealClock())
	n, err := importer.Import(ctx, f, certs, false)
	if err != nil {
		return err
	}

	log.Infow("certificates imported", "records", n)
	return nil
}
