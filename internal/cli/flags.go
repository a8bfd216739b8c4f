package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/lorebook/internal/model"
	"github.com/rcliao/lorebook/internal/store"
)

// addEntryFlags registers the editable entry fields shared by put and edit.
func addEntryFlags(cmd *cobra.Command) {
	cmd.Flags().String("comment", "", "Entry name")
	cmd.Flags().StringP("key", "k", "", "Comma-separated primary keywords")
	cmd.Flags().StringP("secondary", "s", "", "Comma-separated secondary keywords")
	cmd.Flags().Bool("constant", false, "Always inject, ignoring keywords")
	cmd.Flags().Bool("disable", false, "Never inject")
	cmd.Flags().IntP("probability", "p", 100, "Activation chance 0-100")
	cmd.Flags().Bool("case-sensitive", false, "Match keywords case-sensitively")
	cmd.Flags().Bool("whole-words", false, "Match keywords as whole words")
	cmd.Flags().Int("scan-depth", model.DefaultScanDepth, "Recent messages to scan")
	cmd.Flags().String("position", string(model.DefaultPosition), "Injection position: before_char, after_char, at_depth")
	cmd.Flags().Int("depth", model.DefaultDepth, "Injection depth for at_depth")
	cmd.Flags().String("role", string(model.DefaultRole), "Injection role: system, user, assistant")
	cmd.Flags().String("ext", "", "Extensions as a JSON object")
}

// applyEntryFlags copies every flag the user set onto p. Unset flags leave
// p untouched, so edit keeps the stored values.
func applyEntryFlags(cmd *cobra.Command, p *store.PutParams) error {
	f := cmd.Flags()
	if f.Changed("comment") {
		p.Comment, _ = f.GetString("comment")
	}
	if f.Changed("key") {
		s, _ := f.GetString("key")
		p.Key = splitList(s)
	}
	if f.Changed("secondary") {
		s, _ := f.GetString("secondary")
		p.KeySecondary = splitList(s)
	}
	if f.Changed("constant") {
		p.Constant, _ = f.GetBool("constant")
	}
	if f.Changed("disable") {
		p.Disable, _ = f.GetBool("disable")
	}
	if f.Changed("probability") {
		n, _ := f.GetInt("probability")
		if n < 0 || n > 100 {
			return fmt.Errorf("probability must be between 0 and 100, got %d", n)
		}
		p.Probability = &n
	}
	if f.Changed("case-sensitive") {
		p.CaseSensitive, _ = f.GetBool("case-sensitive")
	}
	if f.Changed("whole-words") {
		p.MatchWholeWords, _ = f.GetBool("whole-words")
	}
	if f.Changed("scan-depth") {
		n, _ := f.GetInt("scan-depth")
		p.ScanDepth = &n
	}
	if f.Changed("position") {
		s, _ := f.GetString("position")
		p.Position = model.Position(s)
	}
	if f.Changed("depth") {
		n, _ := f.GetInt("depth")
		p.Depth = &n
	}
	if f.Changed("role") {
		s, _ := f.GetString("role")
		p.Role = model.Role(s)
	}
	if f.Changed("ext") {
		s, _ := f.GetString("ext")
		var ext map[string]any
		if strings.TrimSpace(s) != "" {
			if err := json.Unmarshal([]byte(s), &ext); err != nil {
				return fmt.Errorf("parse --ext: %w", err)
			}
		}
		p.Extensions = ext
	}
	return nil
}

// paramsFromEntry turns a stored entry back into editable params.
func paramsFromEntry(e *model.LoreEntry) store.PutParams {
	depth := e.Depth
	return store.PutParams{
		Book:            e.Book,
		Comment:         e.Comment,
		Content:         e.Content,
		Key:             e.Key,
		KeySecondary:    e.KeySecondary,
		Constant:        e.Constant,
		Disable:         e.Disable,
		Probability:     e.Probability,
		CaseSensitive:   e.CaseSensitive,
		MatchWholeWords: e.MatchWholeWords,
		ScanDepth:       e.ScanDepth,
		Position:        e.Position,
		Depth:           &depth,
		Role:            e.Role,
		Extensions:      e.Extensions,
	}
}

// readContent takes content from positional args, then piped stdin.
func readContent(args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	stat, _ := os.Stdin.Stat()
	if (stat.Mode() & os.ModeCharDevice) == 0 {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	return "", nil
}

func splitList(s string) []string {
	var out []string
	for _, t := range strings.Split(s, ",") {
		t = strings.TrimSpace(t)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

func printJSON(v any) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
}
