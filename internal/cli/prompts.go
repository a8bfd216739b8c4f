package cli

import (
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "prompts",
		Short: "List the current prompt injections",
		Run:   runPrompts,
	}

	RootCmd.AddCommand(cmd)
}

func runPrompts(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	injections, err := s.PromptSink().Injections(cmd.Context())
	if err != nil {
		exitErr("prompts", err)
	}
	printJSON(injections)
}
