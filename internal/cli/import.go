package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/rcliao/lorebook/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import a book from world info JSON",
		Long:  "Import entries from world info JSON (a file or stdin). Expects the format produced by export.",
		Args:  cobra.MaximumNArgs(1),
		Run:   runImport,
	}

	cmd.Flags().StringP("book", "b", "", "Target book (required)")
	cmd.MarkFlagRequired("book")

	RootCmd.AddCommand(cmd)
}

func runImport(cmd *cobra.Command, args []string) {
	book, _ := cmd.Flags().GetString("book")

	var data []byte
	var err error
	if len(args) == 1 {
		data, err = os.ReadFile(args[0])
	} else {
		data, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		exitErr("read input", err)
	}

	var file store.WorldInfoFile
	if err := json.Unmarshal(data, &file); err != nil {
		exitErr("parse json", err)
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	imported, err := s.ImportBook(cmd.Context(), book, &file)
	if err != nil {
		exitErr("import", err)
	}

	fmt.Printf(`{"ok":true,"book":%q,"imported":%d}`+"\n", book, imported)
}
