package cli

import (
	"github.com/spf13/cobra"

	"github.com/rcliao/lorebook/internal/activation"
	"github.com/rcliao/lorebook/internal/inject"
)

func init() {
	cmd := &cobra.Command{
		Use:   "activate",
		Short: "Explain which entries would activate now",
		Long:  "Dry-run the activation policy against the recent chat and report the deciding step per entry.",
		Run:   runActivate,
	}

	cmd.Flags().StringP("book", "b", "", "Only entries of this book (default: all books)")
	cmd.Flags().String("chat", "default", "Chat id")

	RootCmd.AddCommand(cmd)
}

type explained struct {
	UID     string `json:"uid"`
	Book    string `json:"book"`
	Comment string `json:"comment"`
	activation.Decision
}

func runActivate(cmd *cobra.Command, args []string) {
	book, _ := cmd.Flags().GetString("book")
	chatID, _ := cmd.Flags().GetString("chat")
	ctx := cmd.Context()

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	ctrl, history, err := loadController(ctx, s, book, chatID, inject.NewMemorySink())
	if err != nil {
		exitErr("activate", err)
	}

	eval := newEvaluator()
	out := []explained{}
	for _, e := range ctrl.Entries() {
		out = append(out, explained{
			UID:      e.UID,
			Book:     e.Book,
			Comment:  e.Comment,
			Decision: eval.Explain(e, history),
		})
	}
	printJSON(out)
}
