package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/lorebook/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "put [content]",
		Short: "Create a lore entry",
		Long:  "Create a lore entry at the end of its book. Content can be a positional arg or piped via stdin.",
		Run:   runPut,
	}

	cmd.Flags().StringP("book", "b", "", "Book (required)")
	addEntryFlags(cmd)
	cmd.MarkFlagRequired("book")

	RootCmd.AddCommand(cmd)
}

func runPut(cmd *cobra.Command, args []string) {
	book, _ := cmd.Flags().GetString("book")

	content, err := readContent(args)
	if err != nil {
		exitErr("read stdin", err)
	}
	if strings.TrimSpace(content) == "" {
		exitErr("put", fmt.Errorf("content is required (positional arg or stdin)"))
	}

	p := store.PutParams{Book: book, Content: strings.TrimSpace(content)}
	if err := applyEntryFlags(cmd, &p); err != nil {
		exitErr("put", err)
	}
	if !p.Constant && len(p.Key) == 0 && len(p.KeySecondary) == 0 {
		logger.Warn().Str("book", book).Str("comment", p.Comment).Msg("keyword-mode entry has no keywords")
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	e, err := s.Put(cmd.Context(), p)
	if err != nil {
		exitErr("put", err)
	}
	printJSON(e)
}
