package cli

import (
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "books",
		Short: "List all books",
		Run:   runBooks,
	}

	RootCmd.AddCommand(cmd)
}

func runBooks(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	books, err := s.ListBooks(cmd.Context())
	if err != nil {
		exitErr("list books", err)
	}
	printJSON(books)
}
