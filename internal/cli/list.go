package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/lorebook/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List lore entries in book order",
		Run:   runList,
	}

	cmd.Flags().StringP("book", "b", "", "Filter by book")
	cmd.Flags().BoolP("all", "a", false, "Include disabled entries")
	cmd.Flags().IntP("limit", "l", 0, "Max results (0 for all)")
	cmd.Flags().Bool("uids-only", false, "Only output book/uid pairs")

	RootCmd.AddCommand(cmd)
}

func runList(cmd *cobra.Command, args []string) {
	book, _ := cmd.Flags().GetString("book")
	all, _ := cmd.Flags().GetBool("all")
	limit, _ := cmd.Flags().GetInt("limit")
	uidsOnly, _ := cmd.Flags().GetBool("uids-only")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	entries, err := s.List(cmd.Context(), store.ListParams{
		Book:            book,
		IncludeDisabled: all,
		Limit:           limit,
	})
	if err != nil {
		exitErr("list", err)
	}

	if uidsOnly {
		for _, e := range entries {
			fmt.Printf("%s/%s\n", e.Book, e.UID)
		}
		return
	}
	printJSON(entries)
}
