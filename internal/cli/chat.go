package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/lorebook/internal/model"
)

func init() {
	chatCmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat history used for keyword scans",
	}
	chatCmd.PersistentFlags().String("chat", "default", "Chat id")

	addCmd := &cobra.Command{
		Use:   "add [text]",
		Short: "Append a message",
		Args:  cobra.MinimumNArgs(1),
		Run:   runChatAdd,
	}
	addCmd.Flags().String("name", "", "Speaker name")
	addCmd.Flags().Bool("user", false, "Message is from the user")

	tailCmd := &cobra.Command{
		Use:   "tail",
		Short: "Show the most recent messages",
		Run:   runChatTail,
	}
	tailCmd.Flags().IntP("n", "n", model.DefaultScanDepth, "Number of messages")

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every message of a chat",
		Run:   runChatClear,
	}

	chatCmd.AddCommand(addCmd, tailCmd, clearCmd)
	RootCmd.AddCommand(chatCmd)
}

func runChatAdd(cmd *cobra.Command, args []string) {
	chatID, _ := cmd.Flags().GetString("chat")
	name, _ := cmd.Flags().GetString("name")
	isUser, _ := cmd.Flags().GetBool("user")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	src, release, err := openChat(cmd.Context(), s)
	if err != nil {
		exitErr("open chat", err)
	}
	defer release()

	msg := model.Message{Name: name, Text: strings.Join(args, " "), IsUser: isUser}
	if err := src.Append(cmd.Context(), chatID, msg); err != nil {
		exitErr("chat add", err)
	}
	fmt.Printf(`{"ok":true,"chat":%q}`+"\n", chatID)
}

func runChatTail(cmd *cobra.Command, args []string) {
	chatID, _ := cmd.Flags().GetString("chat")
	n, _ := cmd.Flags().GetInt("n")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	src, release, err := openChat(cmd.Context(), s)
	if err != nil {
		exitErr("open chat", err)
	}
	defer release()

	msgs, err := src.Recent(cmd.Context(), chatID, n)
	if err != nil {
		exitErr("chat tail", err)
	}
	printJSON(msgs)
}

func runChatClear(cmd *cobra.Command, args []string) {
	chatID, _ := cmd.Flags().GetString("chat")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	src, release, err := openChat(cmd.Context(), s)
	if err != nil {
		exitErr("open chat", err)
	}
	defer release()

	if err := src.Clear(cmd.Context(), chatID); err != nil {
		exitErr("chat clear", err)
	}
	fmt.Printf(`{"ok":true,"chat":%q}`+"\n", chatID)
}
