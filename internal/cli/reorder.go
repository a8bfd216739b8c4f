package cli

import (
	"github.com/spf13/cobra"

	"github.com/rcliao/lorebook/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "reorder [uid...]",
		Short: "Move entries to the front of a book",
		Long:  "Place the given entries first, in the given order. Entries not listed keep their relative order after them.",
		Args:  cobra.MinimumNArgs(1),
		Run:   runReorder,
	}

	cmd.Flags().StringP("book", "b", "", "Book (required)")
	cmd.MarkFlagRequired("book")

	RootCmd.AddCommand(cmd)
}

func runReorder(cmd *cobra.Command, args []string) {
	book, _ := cmd.Flags().GetString("book")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	if err := s.Reorder(cmd.Context(), book, args); err != nil {
		exitErr("reorder", err)
	}

	entries, err := s.List(cmd.Context(), store.ListParams{Book: book, IncludeDisabled: true})
	if err != nil {
		exitErr("reorder", err)
	}
	uids := make([]string, len(entries))
	for i, e := range entries {
		uids[i] = e.UID
	}
	printJSON(uids)
}
