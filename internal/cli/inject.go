package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/rcliao/lorebook/internal/inject"
	"github.com/rcliao/lorebook/internal/model"
	"github.com/rcliao/lorebook/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "inject",
		Short: "Run the before-generation hook",
		Long: "Evaluate every entry against the recent chat and write the result to the prompt table: " +
			"content for active entries, a clear for the rest. Use --dry-run to keep the table untouched.",
		Run: runInject,
	}

	cmd.Flags().StringP("book", "b", "", "Only entries of this book (default: all books)")
	cmd.Flags().String("chat", "default", "Chat id")
	cmd.Flags().Bool("dry-run", false, "Evaluate without writing the prompt table")

	RootCmd.AddCommand(cmd)
}

func runInject(cmd *cobra.Command, args []string) {
	book, _ := cmd.Flags().GetString("book")
	chatID, _ := cmd.Flags().GetString("chat")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	ctx := cmd.Context()

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	var sink inject.Sink = s.PromptSink()
	if dryRun {
		sink = inject.NewMemorySink()
	}

	ctrl, history, err := loadController(ctx, s, book, chatID, sink)
	if err != nil {
		exitErr("inject", err)
	}

	var hook inject.Hook
	ctrl.Attach(&hook)
	if err := hook.Fire(ctx, history); err != nil {
		exitErr("inject", err)
	}
	printJSON(ctrl.LastReport())
}

// loadController reads the entries of book (every book when empty), with
// disabled ones kept so their stale injections get cleared, and fetches
// enough history for the deepest scan.
func loadController(ctx context.Context, s *store.SQLiteStore, book, chatID string, sink inject.Sink) (*inject.Controller, []model.Message, error) {
	entries, err := s.List(ctx, store.ListParams{Book: book, IncludeDisabled: true})
	if err != nil {
		return nil, nil, err
	}

	ctrl := inject.NewController(newEvaluator(), sink, logger)
	ctrl.Load(entries)

	src, release, err := openChat(ctx, s)
	if err != nil {
		return nil, nil, err
	}
	defer release()

	history, err := src.Recent(ctx, chatID, ctrl.MaxScanDepth(cfg.Activation.DefaultScanDepth))
	if err != nil {
		return nil, nil, err
	}
	return ctrl, history, nil
}
