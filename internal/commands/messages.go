package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/k1nky/pachca-client/internal/pachca"
)

var messagesFlags struct {
	user       bool
	thread     bool
	parent     int64
	files      []string
	images     []string
	urlButtons []string
	dataButton []string
	content    string
	remove     bool
}

var messagesCmd = &cobra.Command{
	Use:   "messages",
	Short: "Send, show, edit, thread and react to messages",
	Long: `Send, show, edit, thread and react to Pachca messages.

The target of "send" is a chat id or name. With --user it is a user id or
nickname (a direct message). With --thread it must be a thread id.

Examples:
  pachca messages send General "deploy finished"
  pachca messages send andrey "ping" --user
  pachca messages send General "report" --file report.pdf --image chart.png
  pachca messages send General "approve?" --url-button "Open=https://ci/42" --data-button "Ack=ack-42"
  pachca messages update 1234 --content "fixed typo"
  pachca messages thread 1234
  pachca messages react 1234 👍`,
}

var messagesSendCmd = &cobra.Command{
	Use:   "send <target> <content>",
	Short: "Send a message",
	Args:  cobra.ExactArgs(2),
	RunE:  runMessagesSend,
}

var messagesGetCmd = &cobra.Command{
	Use:   "get <message-id>",
	Short: "Show a message",
	Args:  cobra.ExactArgs(1),
	RunE:  runMessagesGet,
}

var messagesUpdateCmd = &cobra.Command{
	Use:   "update <message-id>",
	Short: "Edit a message",
	Args:  cobra.ExactArgs(1),
	RunE:  runMessagesUpdate,
}

var messagesThreadCmd = &cobra.Command{
	Use:   "thread <message-id>",
	Short: "Create (or show) the comment thread of a message",
	Args:  cobra.ExactArgs(1),
	RunE:  runMessagesThread,
}

var messagesReactCmd = &cobra.Command{
	Use:   "react <message-id> <emoji>",
	Short: "Add or remove a reaction",
	Args:  cobra.ExactArgs(2),
	RunE:  runMessagesReact,
}

func addAttachmentFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringArrayVar(&messagesFlags.files, "file", nil, "Attach a file (repeatable)")
	f.StringArrayVar(&messagesFlags.images, "image", nil, "Attach an image (repeatable)")
	f.StringArrayVar(&messagesFlags.urlButtons, "url-button", nil, "Add a link button text=url (repeatable)")
	f.StringArrayVar(&messagesFlags.dataButton, "data-button", nil, "Add a webhook button text=data (repeatable)")
}

func init() {
	sf := messagesSendCmd.Flags()
	sf.BoolVar(&messagesFlags.user, "user", false, "Target is a user (direct message)")
	sf.BoolVar(&messagesFlags.thread, "thread", false, "Target is a thread id")
	sf.Int64Var(&messagesFlags.parent, "parent", 0, "Reply to this message id")
	messagesSendCmd.MarkFlagsMutuallyExclusive("user", "thread")
	addAttachmentFlags(messagesSendCmd)

	messagesUpdateCmd.Flags().StringVar(&messagesFlags.content, "content", "", "New message text")
	addAttachmentFlags(messagesUpdateCmd)

	messagesReactCmd.Flags().BoolVar(&messagesFlags.remove, "remove", false, "Remove the reaction instead of adding it")

	messagesCmd.AddCommand(messagesSendCmd)
	messagesCmd.AddCommand(messagesGetCmd)
	messagesCmd.AddCommand(messagesUpdateCmd)
	messagesCmd.AddCommand(messagesThreadCmd)
	messagesCmd.AddCommand(messagesReactCmd)
}

func sendEntityType() pachca.EntityType {
	switch {
	case messagesFlags.user:
		return pachca.EntityUser
	case messagesFlags.thread:
		return pachca.EntityThread
	}
	return pachca.EntityDiscussion
}

func runMessagesSend(cmd *cobra.Command, args []string) error {
	buttons, err := buttonRows(messagesFlags.urlButtons, messagesFlags.dataButton)
	if err != nil {
		return err
	}
	target := args[0]
	if messagesFlags.user {
		target = strings.TrimPrefix(target, "@")
	}
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.close()

	msg, err := s.api.NewMessage(cmd.Context(), pachca.NewMessageOptions{
		EntityType:      sendEntityType(),
		Entity:          pachca.ParseRef(target),
		Content:         args[1],
		ParentMessageID: messagesFlags.parent,
		Files:           attachments(messagesFlags.files, messagesFlags.images),
		Buttons:         buttons,
	})
	if err != nil {
		return describeError("sending message", err)
	}
	if globalFlags.json {
		printOut(cmd, marshalJSONOrFallback(msg))
		return nil
	}
	printOut(cmd, fmt.Sprintf("✓ Sent message %d to %s %d\n", msg.ID, msg.EntityType, msg.EntityID))
	return nil
}

func runMessagesGet(cmd *cobra.Command, args []string) error {
	id, err := parseID("message id", args[0])
	if err != nil {
		return err
	}
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.close()

	msg, err := s.api.GetMessage(cmd.Context(), id)
	if err != nil {
		return describeError("getting message", err)
	}
	printOut(cmd, formatMessageOutput(msg, globalFlags.json))
	return nil
}

func formatMessageOutput(m *pachca.Message, asJSON bool) string {
	if asJSON {
		return marshalJSONOrFallback(m)
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Message:  %d\n", m.ID))
	sb.WriteString(fmt.Sprintf("Target:   %s %d (chat %d)\n", m.EntityType, m.EntityID, m.ChatID))
	if m.UserID != 0 {
		sb.WriteString(fmt.Sprintf("Author:   %d\n", m.UserID))
	}
	if m.CreatedAt != nil {
		sb.WriteString(fmt.Sprintf("Created:  %s\n", m.CreatedAt.Format("2006-01-02 15:04:05 MST")))
	}
	if m.ParentMessageID != 0 {
		sb.WriteString(fmt.Sprintf("Reply to: %d\n", m.ParentMessageID))
	}
	if m.Thread != nil {
		sb.WriteString(fmt.Sprintf("Thread:   %d (chat %d)\n", m.Thread.ID, m.Thread.ChatID))
	}
	for _, f := range m.Files {
		sb.WriteString(fmt.Sprintf("File:     %s [%s]\n", f.Name, f.FileType))
	}
	sb.WriteString("\n")
	sb.WriteString(m.Content)
	sb.WriteString("\n")
	return sb.String()
}

func runMessagesUpdate(cmd *cobra.Command, args []string) error {
	id, err := parseID("message id", args[0])
	if err != nil {
		return err
	}
	buttons, err := buttonRows(messagesFlags.urlButtons, messagesFlags.dataButton)
	if err != nil {
		return err
	}
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.close()

	msg, err := s.api.UpdateMessage(cmd.Context(), id, pachca.UpdateMessageOptions{
		Content: messagesFlags.content,
		Files:   attachments(messagesFlags.files, messagesFlags.images),
		Buttons: buttons,
	})
	if err != nil {
		return describeError("updating message", err)
	}
	if globalFlags.json {
		printOut(cmd, marshalJSONOrFallback(msg))
		return nil
	}
	printOut(cmd, fmt.Sprintf("✓ Updated message %d\n", msg.ID))
	return nil
}

func runMessagesThread(cmd *cobra.Command, args []string) error {
	id, err := parseID("message id", args[0])
	if err != nil {
		return err
	}
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.close()

	thread, err := s.api.NewThread(cmd.Context(), id)
	if err != nil {
		return describeError("creating thread", err)
	}
	if globalFlags.json {
		printOut(cmd, marshalJSONOrFallback(thread))
		return nil
	}
	printOut(cmd, fmt.Sprintf("✓ Thread %d for message %d (post with: pachca messages send %d <text> --thread)\n",
		thread.ID, thread.MessageID, thread.ID))
	return nil
}

func runMessagesReact(cmd *cobra.Command, args []string) error {
	id, err := parseID("message id", args[0])
	if err != nil {
		return err
	}
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.close()

	verb := "Added"
	if messagesFlags.remove {
		verb = "Removed"
		err = s.api.RemoveReaction(cmd.Context(), id, args[1])
	} else {
		err = s.api.AddReaction(cmd.Context(), id, args[1])
	}
	if err != nil {
		return describeError("reacting to message", err)
	}
	if globalFlags.json {
		printOut(cmd, marshalJSONOrFallback(map[string]any{"message_id": id, "code": args[1], "removed": messagesFlags.remove}))
		return nil
	}
	printOut(cmd, fmt.Sprintf("✓ %s %s on message %d\n", verb, args[1], id))
	return nil
}
