package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/2beens/fitnesstracker/internal/config"
	"github.com/2beens/fitnesstracker/internal/logging"
	"github.com/2beens/fitnesstracker/internal/progress"
	"github.com/2beens/fitnesstracker/internal/progress/storage"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// annotationWrites marks commands that change the stored progress.
const annotationWrites = "writes"

var writesAnnotation = map[string]string{annotationWrites: "true"}

// cliApp holds the state shared by all commands of one invocation.
type cliApp struct {
	env        string
	configPath string
	sqlitePath string
	jsonOut    bool
	logLevel   string

	store   *progress.Store
	leaser  storage.Leaser
	dirty   bool
	closers []func() error
	now     func() time.Time
}

func newRootCmd() (*cobra.Command, *cliApp) {
	app := &cliApp{now: time.Now}

	rootCmd := &cobra.Command{
		Use:   "trackerctl",
		Short: "trackerctl manages the 12-week fitness program progress",
		Long: `trackerctl reads and updates the progress of the 12-week fitness program
directly in its storage (sqlite or redis), without going through the service.

Commands that change the progress refuse to run while the service holds the
storage; use the service's HTTP API then, or stop it first.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.open(cmd.Context()); err != nil {
				return err
			}
			if cmd.Annotations[annotationWrites] == "true" {
				return app.checkNotLeased(cmd.Context())
			}
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&app.env, "env", "development", "config environment [dev | development | prod | production]")
	flags.StringVar(&app.configPath, "config", "./config.toml", "path for the TOML config file")
	flags.StringVar(&app.sqlitePath, "sqlite", "", "use this sqlite file, ignoring the config file")
	flags.BoolVar(&app.jsonOut, "json", false, "output as JSON")
	flags.StringVar(&app.logLevel, "log-level", "warn", "log level")

	rootCmd.AddCommand(
		newStatusCmd(app),
		newCheckinCmd(app),
		newWakeTimeCmd(app),
		newEnergyCmd(app),
		newExportCmd(app),
		newImportCmd(app),
		newWeekCmd(app),
	)
	return rootCmd, app
}

// execute runs the command line and always releases the storage, also when
// a command failed.
func execute(rootCmd *cobra.Command, app *cliApp) error {
	err := rootCmd.Execute()
	if closeErr := app.close(context.Background()); err == nil {
		err = closeErr
	}
	return err
}

func (app *cliApp) open(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	logging.Setup(logging.LoggerSetupParams{LogLevel: app.logLevel})
	// stdout is reserved for command output
	log.SetOutput(os.Stderr)

	slots, err := app.openStorage(ctx)
	if err != nil {
		return err
	}
	app.store = progress.Load(ctx, slots, progress.WithClock(app.now))
	return nil
}

// checkNotLeased refuses writes while a service flushes to the same storage,
// its next flush would overwrite them.
func (app *cliApp) checkNotLeased(ctx context.Context) error {
	owner, held, err := app.leaser.LeaseHolder(ctx, storage.ServiceLease)
	if err != nil {
		return fmt.Errorf("check progress storage lease: %w", err)
	}
	if held {
		return fmt.Errorf("progress storage is owned by the running service [%s]; use its HTTP API or stop it first", owner)
	}
	return nil
}

func (app *cliApp) openStorage(ctx context.Context) (progress.SlotStorage, error) {
	if app.sqlitePath != "" {
		return app.openSQLite(ctx, app.sqlitePath)
	}

	cfg, err := config.Load(app.env, app.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	switch cfg.StorageBackend {
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     net.JoinHostPort(cfg.RedisHost, cfg.RedisPort),
			Password: os.Getenv("FITNESS_TRACKER_REDIS_PASS"),
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		app.closers = append(app.closers, rdb.Close)
		redisStorage := storage.NewRedis(rdb, storage.DefaultRedisKeyPrefix)
		app.leaser = redisStorage
		return redisStorage, nil
	default:
		return app.openSQLite(ctx, cfg.SQLitePath)
	}
}

func (app *cliApp) openSQLite(ctx context.Context, path string) (progress.SlotStorage, error) {
	sqliteStorage, err := storage.NewSQLite(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite storage: %w", err)
	}
	app.closers = append(app.closers, sqliteStorage.Close)
	app.leaser = sqliteStorage
	return sqliteStorage, nil
}

// close flushes pending changes and releases the storage.
func (app *cliApp) close(ctx context.Context) error {
	var flushErr error
	if app.store != nil && app.dirty {
		flushErr = app.store.Flush(ctx)
		app.dirty = false
	}
	for i := len(app.closers) - 1; i >= 0; i-- {
		if err := app.closers[i](); err != nil {
			log.Errorf("close storage: %s", err)
		}
	}
	app.closers = nil
	return flushErr
}

// dateFlag resolves the --date flag, defaulting to today.
func (app *cliApp) dateFlag(raw string) (progress.Date, error) {
	if raw == "" {
		return app.store.Today(), nil
	}
	return progress.ParseDate(raw)
}
