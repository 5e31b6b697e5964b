package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"strconv"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/erplink/bridge/internal/infrastructure/config"
	"github.com/erplink/bridge/internal/infrastructure/logger"
	"github.com/erplink/bridge/internal/infrastructure/migration"
)

func main() {
	var (
		migrationsPath = flag.String("path", "migrations", "path to migration files")
		logLevel       = flag.String("log-level", "info", "log level (debug, info, warn, error)")
	)
	flag.Parse()

	log, err := logger.New(&logger.Config{
		Level:  *logLevel,
		Format: "console",
		Output: "stdout",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}
	command := args[0]

	// create and list work on the filesystem alone, no database needed
	switch command {
	case "create":
		if len(args) < 2 {
			log.Error("create requires a migration name")
			os.Exit(1)
		}
		upPath, downPath, err := migration.CreateMigration(*migrationsPath, args[1])
		if err != nil {
			log.Error("failed to create migration", zap.Error(err))
			os.Exit(1)
		}
		log.Info("migration files created", zap.String("up", upPath), zap.String("down", downPath))
		return
	case "list":
		files, err := migration.ListMigrations(*migrationsPath)
		if err != nil {
			log.Error("failed to list migrations", zap.Error(err))
			os.Exit(1)
		}
		if len(files) == 0 {
			log.Info("no migration files found", zap.String("path", *migrationsPath))
			return
		}
		for _, f := range files {
			fmt.Println(f)
		}
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Error("failed to load config", zap.Error(err))
		os.Exit(1)
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Error("failed to open database", zap.Error(err))
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Error("failed to connect to database", zap.Error(err),
			zap.String("host", cfg.Database.Host), zap.Int("port", cfg.Database.Port))
		os.Exit(1)
	}

	migrator, err := migration.New(db, *migrationsPath, log)
	if err != nil {
		log.Error("failed to create migrator", zap.Error(err))
		os.Exit(1)
	}
	defer migrator.Close()

	if err := runCommand(migrator, log, command, args[1:]); err != nil {
		log.Error("migration command failed", zap.Error(err))
		os.Exit(1)
	}
}

func runCommand(migrator *migration.Migrator, log *zap.Logger, command string, args []string) error {
	switch command {
	case "up":
		return migrator.Up()

	case "down":
		return migrator.Down()

	case "step":
		if len(args) < 1 {
			return fmt.Errorf("step requires a count, e.g. 'step 1' or 'step -1'")
		}
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid step count %q: %w", args[0], err)
		}
		return migrator.Steps(n)

	case "version":
		version, dirty, err := migrator.Version()
		if err != nil {
			return err
		}
		log.Info("current migration version", zap.Uint("version", version), zap.Bool("dirty", dirty))
		return nil

	case "force":
		if len(args) < 1 {
			return fmt.Errorf("force requires a version number")
		}
		v, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid version %q: %w", args[0], err)
		}
		return migrator.Force(v)

	case "drop":
		if len(args) < 1 || args[0] != "-confirm" {
			return fmt.Errorf("drop destroys all data; run 'drop -confirm' if you mean it")
		}
		return migrator.Drop()

	default:
		printUsage()
		return fmt.Errorf("unknown command %q", command)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Usage: migrate [flags] <command> [args]

Commands:
  up                 apply all pending migrations
  down               roll back all migrations
  step <n>           apply n migrations (negative rolls back)
  version            print the current migration version
  force <version>    set the version without running migrations
  drop -confirm      drop every object in the database
  create <name>      create a new pair of migration files
  list               list migration files

Flags:
  -path string       path to migration files (default "migrations")
  -log-level string  log level (default "info")`)
}
