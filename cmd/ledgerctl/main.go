package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	ledgerapp "github.com/buildledger/backend/internal/application/ledger"
	"github.com/buildledger/backend/internal/infrastructure/backup"
	"github.com/buildledger/backend/internal/infrastructure/config"
	"github.com/buildledger/backend/internal/infrastructure/logger"
	"github.com/buildledger/backend/internal/infrastructure/persistence"
	"github.com/buildledger/backend/internal/infrastructure/scheduler"
	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	var logLevel string
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Usage = printUsage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}
	command := args[0]

	log, err := logger.New(&logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	gormLevel := gormlogger.Warn
	if logLevel == "debug" {
		gormLevel = gormlogger.Info
	}
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, logger.NewGormLogger(log, gormLevel))
	if err != nil {
		log.Fatal("Failed to open database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	txm := persistence.NewTxManager(db.DB, log)
	snapshots := persistence.NewSnapshotManager(txm, log)

	switch command {
	case "migrate":
		err = runMigrate(ctx, db, log)
	case "check":
		err = runCheck(ctx, txm, log)
	case "export":
		err = runExport(ctx, snapshots, args[1:])
	case "import":
		err = runImport(ctx, snapshots, args[1:], log)
	case "backup":
		err = runBackup(ctx, cfg, txm, snapshots, log)
	case "watch":
		err = runWatch(ctx, cfg, txm, snapshots, log)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		log.Fatal("Command failed", zap.String("command", command), zap.Error(err))
	}
}

func runMigrate(ctx context.Context, db *persistence.Database, log *zap.Logger) error {
	migrator := persistence.NewMigrator(db.DB, log)
	if err := migrator.Run(ctx); err != nil {
		return err
	}
	applied, err := migrator.Applied(ctx)
	if err != nil {
		return err
	}
	log.Info("Schema up to date",
		zap.Int("schemaVersion", persistence.SchemaVersion),
		zap.Strings("applied", applied),
	)
	return nil
}

func runCheck(ctx context.Context, txm *persistence.TxManager, log *zap.Logger) error {
	violations, err := persistence.NewIntegrityChecker(txm).Check(ctx)
	if err != nil {
		return err
	}
	if len(violations) == 0 {
		log.Info("No integrity violations found")
		return nil
	}
	for _, v := range violations {
		fmt.Println(v.String())
	}
	return fmt.Errorf("found %d integrity violations", len(violations))
}

func runExport(ctx context.Context, snapshots *persistence.SnapshotManager, args []string) error {
	data, err := snapshots.Export(ctx)
	if err != nil {
		return err
	}
	if len(args) == 0 || args[0] == "-" {
		_, err = os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(args[0], data, 0o644)
}

func runImport(ctx context.Context, snapshots *persistence.SnapshotManager, args []string, log *zap.Logger) error {
	if len(args) == 0 {
		return fmt.Errorf("import requires a snapshot file argument")
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	if err := snapshots.Import(ctx, data); err != nil {
		return err
	}
	log.Info("Snapshot imported", zap.String("file", args[0]))
	return nil
}

func newBackupService(cfg *config.Config, txm *persistence.TxManager, snapshots *persistence.SnapshotManager, log *zap.Logger) (*ledgerapp.BackupService, error) {
	var (
		transport backup.Transport
		err       error
	)
	switch cfg.Backup.Transport {
	case "s3":
		transport, err = backup.NewS3Transport(&cfg.Backup, backup.WithS3Logger(log))
	case "local", "":
		transport, err = backup.NewLocalTransport(cfg.Backup.Dir)
	default:
		err = fmt.Errorf("unsupported backup transport: %q", cfg.Backup.Transport)
	}
	if err != nil {
		return nil, err
	}
	return ledgerapp.NewBackupService(txm, snapshots, transport, log), nil
}

func runBackup(ctx context.Context, cfg *config.Config, txm *persistence.TxManager, snapshots *persistence.SnapshotManager, log *zap.Logger) error {
	service, err := newBackupService(cfg, txm, snapshots, log)
	if err != nil {
		return err
	}
	return service.Run(ctx)
}

// runWatch keeps a backup scheduler alive until the process is interrupted.
func runWatch(ctx context.Context, cfg *config.Config, txm *persistence.TxManager, snapshots *persistence.SnapshotManager, log *zap.Logger) error {
	service, err := newBackupService(cfg, txm, snapshots, log)
	if err != nil {
		return err
	}
	// Writes from other processes bump the dirty flag through the shared
	// database file, so an existing ledger starts out unknown. Mark it dirty
	// to force one export up front.
	txm.MarkDirty()

	sched := scheduler.NewBackupScheduler(
		scheduler.BackupSchedulerConfig{PollInterval: cfg.Backup.PollInterval},
		service,
		txm,
		log,
	)
	if err := sched.Start(ctx); err != nil {
		return err
	}
	log.Info("Backup watcher running", zap.Duration("pollInterval", cfg.Backup.PollInterval))
	<-ctx.Done()
	sched.Stop()
	return nil
}

func printUsage() {
	fmt.Println("Ledger administration tool")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  ledgerctl [flags] <command> [args]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  migrate          Apply pending schema migrations")
	fmt.Println("  check            Run referential integrity checks against the ledger")
	fmt.Println("  export [file]    Write a full snapshot to file (or stdout)")
	fmt.Println("  import <file>    Replace the ledger with a snapshot file")
	fmt.Println("  backup           Export one snapshot through the configured transport")
	fmt.Println("  watch            Poll for changes and back up until interrupted")
	fmt.Println()
	fmt.Println("Flags:")
	flag.PrintDefaults()
}
