package cli

import (
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a book as world info JSON",
		Run:   runExport,
	}

	cmd.Flags().StringP("book", "b", "", "Book (required)")
	cmd.MarkFlagRequired("book")

	RootCmd.AddCommand(cmd)
}

func runExport(cmd *cobra.Command, args []string) {
	book, _ := cmd.Flags().GetString("book")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	file, err := s.ExportBook(cmd.Context(), book)
	if err != nil {
		exitErr("export", err)
	}
	printJSON(file)
}
