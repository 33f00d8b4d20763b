package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/motomarkt/motomarkt-go/api"
	"github.com/motomarkt/motomarkt-go/config"
	"github.com/motomarkt/motomarkt-go/log"
	"github.com/motomarkt/motomarkt-go/session"
)

var (
	cfg       *config.Config
	appLogger log.Logger
	manager   *session.Manager
)

var rootCmd = &cobra.Command{
	Use:   "motoctl",
	Short: "motoctl is a CLI to interact with the motomarkt account API",
	Long:  `A command-line interface for logging in to the motomarkt marketplace, managing the locally persisted session, and inspecting the authenticated account.`,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to initialize configuration: %w", err)
		}
		appLogger = log.NewZerologAdapter(log.ParseLevel(cfg.LogLevel), cfg.LogPretty)

		store, err := buildStore(cfg)
		if err != nil {
			return err
		}

		backend := api.New(cfg.APIBaseURL, api.WithTimeout(cfg.HTTPTimeout()))
		manager = session.NewManager(backend, store,
			session.WithLogger(appLogger),
			session.WithExpiryHook(func(ctx context.Context) {
				appLogger.Info(ctx, "session ended, run 'motoctl auth login' to sign in again")
			}),
		)
		return nil
	},
	PersistentPostRun: func(*cobra.Command, []string) {
		if manager != nil {
			manager.Close()
		}
	},
}

// buildStore picks the session backend: redis when configured, otherwise the
// per-user session file.
func buildStore(cfg *config.Config) (session.Store, error) {
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		return session.NewRedisStore(client, "motomarkt", "cli", 30*24*time.Hour), nil
	}

	path := cfg.SessionFile
	if path == "" {
		var err error
		path, err = session.DefaultPath()
		if err != nil {
			return nil, err
		}
	}
	return session.NewFileStore(path), nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
