// Package cli implements the lorebook CLI commands.
package cli

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rcliao/lorebook/internal/activation"
	"github.com/rcliao/lorebook/internal/chat"
	"github.com/rcliao/lorebook/internal/config"
	"github.com/rcliao/lorebook/internal/logging"
	"github.com/rcliao/lorebook/internal/store"
)

var (
	dbPath     string
	configPath string

	cfg    *config.Config
	logger = zerolog.Nop()
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "lorebook",
	Short: "World info entries and keyword-triggered prompt injection",
	Long: "Manage lore entries, keep a chat log, and decide which entries get injected " +
		"into the next generation. SQLite-backed, single binary.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if path == "" {
			path = config.DefaultPath()
		}
		c, err := config.Load(path)
		if err != nil {
			return err
		}
		if dbPath != "" {
			c.DBPath = dbPath
		}
		l, err := logging.New(c.Log, os.Stderr)
		if err != nil {
			return err
		}
		cfg, logger = c, l
		return nil
	},
	SilenceUsage: true,
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Database path (default: $LOREBOOK_DB or ~/.lorebook/lorebook.db)")
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: $LOREBOOK_CONFIG or ~/.lorebook/config.yaml)")
}

func openStore() (*store.SQLiteStore, error) {
	return store.NewSQLiteStore(cfg.DBPath)
}

// openChat returns the configured chat source and a function releasing it.
func openChat(ctx context.Context, s *store.SQLiteStore) (chat.Source, func(), error) {
	if cfg.Chat.Source == config.SourceRedis {
		r, err := chat.NewRedisSource(ctx, cfg.Chat.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return r, func() { r.Close() }, nil
	}
	return s.ChatLog(), func() {}, nil
}

func newEvaluator() *activation.Evaluator {
	seed := cfg.Activation.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return activation.New(
		activation.WithRand(rand.New(rand.NewSource(seed))),
		activation.WithLogger(logger),
		activation.WithDefaultScanDepth(cfg.Activation.DefaultScanDepth),
	)
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
