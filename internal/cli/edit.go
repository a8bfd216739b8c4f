package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "edit [uid] [content]",
		Short: "Change fields of a lore entry",
		Long:  "Change the given fields of an entry. Fields without a flag keep their stored value.",
		Args:  cobra.MinimumNArgs(1),
		Run:   runEdit,
	}

	addEntryFlags(cmd)

	RootCmd.AddCommand(cmd)
}

func runEdit(cmd *cobra.Command, args []string) {
	uid := args[0]

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	current, err := s.Get(cmd.Context(), uid)
	if err != nil {
		exitErr("edit", err)
	}

	p := paramsFromEntry(current)
	if len(args) > 1 {
		p.Content = strings.TrimSpace(strings.Join(args[1:], " "))
	}
	if err := applyEntryFlags(cmd, &p); err != nil {
		exitErr("edit", err)
	}

	e, err := s.Update(cmd.Context(), uid, p)
	if err != nil {
		exitErr("edit", err)
	}
	printJSON(e)
}
