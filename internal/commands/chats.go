package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/k1nky/pachca-client/internal/pachca"
)

var chatsFlags struct {
	per          int
	page         int
	all          bool
	availability string
	after        string
	before       string

	members  []string
	tags     []string
	channel  bool
	public   bool
	name     string
	isPublic string
}

var chatsCmd = &cobra.Command{
	Use:   "chats",
	Short: "List, show, create and update chats",
	Long: `List, show, create and update Pachca chats.

Examples:
  pachca chats list                     # Chats you are a member of
  pachca chats list --all --availability public  # Every public chat
  pachca chats get General              # Show a chat by name
  pachca chats new Ops --member 12,34   # Create a chat
  pachca chats update Ops --name Oncall # Rename a chat`,
}

var chatsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List chats",
	Args:  cobra.NoArgs,
	RunE:  runChatsList,
}

var chatsGetCmd = &cobra.Command{
	Use:   "get <id-or-name>",
	Short: "Show a chat",
	Args:  cobra.ExactArgs(1),
	RunE:  runChatsGet,
}

var chatsNewCmd = &cobra.Command{
	Use:   "new <name>",
	Short: "Create a chat or channel",
	Args:  cobra.ExactArgs(1),
	RunE:  runChatsNew,
}

var chatsUpdateCmd = &cobra.Command{
	Use:   "update <id-or-name>",
	Short: "Rename a chat or change its visibility",
	Args:  cobra.ExactArgs(1),
	RunE:  runChatsUpdate,
}

func init() {
	lf := chatsListCmd.Flags()
	lf.IntVar(&chatsFlags.per, "per", 0, "Page size, 1-50 (default 50)")
	lf.IntVar(&chatsFlags.page, "page", 0, "Page number (default 1)")
	lf.BoolVar(&chatsFlags.all, "all", false, "Fetch every page")
	lf.StringVar(&chatsFlags.availability, "availability", pachca.AvailabilityIsMember, "is_member or public")
	lf.StringVar(&chatsFlags.after, "after", "", "Only chats with a message after this time")
	lf.StringVar(&chatsFlags.before, "before", "", "Only chats with a message before this time")

	nf := chatsNewCmd.Flags()
	nf.StringSliceVar(&chatsFlags.members, "member", nil, "Member user ids (repeatable or comma-separated)")
	nf.StringSliceVar(&chatsFlags.tags, "tag", nil, "Group tag ids (repeatable or comma-separated)")
	nf.BoolVar(&chatsFlags.channel, "channel", false, "Create a channel instead of a conversation")
	nf.BoolVar(&chatsFlags.public, "public", false, "Make the chat visible to everyone in the workspace")

	uf := chatsUpdateCmd.Flags()
	uf.StringVar(&chatsFlags.name, "name", "", "New chat name")
	uf.StringVar(&chatsFlags.isPublic, "public", "", "Set visibility: true or false")

	chatsCmd.AddCommand(chatsListCmd)
	chatsCmd.AddCommand(chatsGetCmd)
	chatsCmd.AddCommand(chatsNewCmd)
	chatsCmd.AddCommand(chatsUpdateCmd)
}

func chatsListOptions() (pachca.ListChatsOptions, error) {
	after, err := parseTimeFlag("after", chatsFlags.after)
	if err != nil {
		return pachca.ListChatsOptions{}, err
	}
	before, err := parseTimeFlag("before", chatsFlags.before)
	if err != nil {
		return pachca.ListChatsOptions{}, err
	}
	return pachca.ListChatsOptions{
		Per:                 chatsFlags.per,
		Page:                chatsFlags.page,
		Availability:        chatsFlags.availability,
		LastMessageAtAfter:  after,
		LastMessageAtBefore: before,
	}, nil
}

func runChatsList(cmd *cobra.Command, args []string) error {
	opts, err := chatsListOptions()
	if err != nil {
		return err
	}
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.close()

	chats, err := listChats(cmd.Context(), s.api, opts, chatsFlags.all)
	if err != nil {
		return err
	}
	printOut(cmd, formatChatsListOutput(chats, time.Now(), globalFlags.json))
	return nil
}

func listChats(ctx context.Context, api *pachca.Pachca, opts pachca.ListChatsOptions, all bool) ([]pachca.Chat, error) {
	var (
		chats []pachca.Chat
		err   error
	)
	if all {
		chats, err = api.ListAllChats(ctx, opts)
	} else {
		chats, err = api.ListChats(ctx, opts)
	}
	if err != nil {
		return nil, describeError("listing chats", err)
	}
	return chats, nil
}

func formatChatsListOutput(chats []pachca.Chat, now time.Time, asJSON bool) string {
	if asJSON {
		output := struct {
			Chats []pachca.Chat `json:"chats"`
			Count int           `json:"count"`
		}{
			Chats: chats,
			Count: len(chats),
		}
		if output.Chats == nil {
			output.Chats = []pachca.Chat{}
		}
		return marshalJSONOrFallback(output)
	}

	var sb strings.Builder
	if len(chats) == 0 {
		sb.WriteString("No chats found.\n")
		return sb.String()
	}

	sb.WriteString("CHATS:\n")
	for _, c := range chats {
		sb.WriteString(fmt.Sprintf("  %d  %s", c.ID, c.Name))
		var tags []string
		if c.Channel {
			tags = append(tags, "channel")
		}
		if c.Public {
			tags = append(tags, "public")
		}
		if len(tags) > 0 {
			sb.WriteString(fmt.Sprintf(" [%s]", strings.Join(tags, ", ")))
		}
		sb.WriteString(fmt.Sprintf(" - %d members, last message %s\n", len(c.MemberIDs), formatTimeAgo(c.LastMessageAt, now)))
	}
	sb.WriteString(fmt.Sprintf("\nTotal: %d chat(s)\n", len(chats)))
	return sb.String()
}

func runChatsGet(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.close()

	chat, err := s.api.GetChat(cmd.Context(), pachca.ParseRef(args[0]))
	if err != nil {
		return describeError("getting chat", err)
	}
	printOut(cmd, formatChatOutput(chat, globalFlags.json))
	return nil
}

func formatChatOutput(c *pachca.Chat, asJSON bool) string {
	if asJSON {
		return marshalJSONOrFallback(c)
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Chat:     %s\n", c.Name))
	sb.WriteString(fmt.Sprintf("ID:       %d\n", c.ID))
	kind := "conversation"
	if c.Channel {
		kind = "channel"
	}
	sb.WriteString(fmt.Sprintf("Kind:     %s\n", kind))
	sb.WriteString(fmt.Sprintf("Public:   %t\n", c.Public))
	if c.OwnerID != 0 {
		sb.WriteString(fmt.Sprintf("Owner:    %d\n", c.OwnerID))
	}
	sb.WriteString(fmt.Sprintf("Members:  %d\n", len(c.MemberIDs)))
	if c.MeetRoomURL != "" {
		sb.WriteString(fmt.Sprintf("Meet:     %s\n", c.MeetRoomURL))
	}
	return sb.String()
}

func runChatsNew(cmd *cobra.Command, args []string) error {
	members, err := parseIDs("--member", chatsFlags.members)
	if err != nil {
		return err
	}
	tags, err := parseIDs("--tag", chatsFlags.tags)
	if err != nil {
		return err
	}
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.close()

	chat, err := s.api.NewChat(cmd.Context(), pachca.NewChatOptions{
		Name:        args[0],
		MemberIDs:   members,
		GroupTagIDs: tags,
		Channel:     chatsFlags.channel,
		Public:      chatsFlags.public,
	})
	if err != nil {
		return describeError("creating chat", err)
	}
	if globalFlags.json {
		printOut(cmd, marshalJSONOrFallback(chat))
		return nil
	}
	printOut(cmd, fmt.Sprintf("✓ Created chat %q (ID: %d)\n", chat.Name, chat.ID))
	return nil
}

func chatsUpdateOptions(cmd *cobra.Command) (pachca.UpdateChatOptions, error) {
	var opts pachca.UpdateChatOptions
	if cmd.Flags().Changed("name") {
		name := chatsFlags.name
		opts.Name = &name
	}
	if cmd.Flags().Changed("public") {
		switch strings.ToLower(chatsFlags.isPublic) {
		case "true", "yes", "1":
			v := true
			opts.Public = &v
		case "false", "no", "0":
			v := false
			opts.Public = &v
		default:
			return opts, fmt.Errorf("--public: expected true or false, got %q", chatsFlags.isPublic)
		}
	}
	if opts.Name == nil && opts.Public == nil {
		return opts, fmt.Errorf("nothing to update: pass --name or --public")
	}
	return opts, nil
}

func runChatsUpdate(cmd *cobra.Command, args []string) error {
	opts, err := chatsUpdateOptions(cmd)
	if err != nil {
		return err
	}
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.close()

	chat, err := s.api.UpdateChat(cmd.Context(), pachca.ParseRef(args[0]), opts)
	if err != nil {
		return describeError("updating chat", err)
	}
	if globalFlags.json {
		printOut(cmd, marshalJSONOrFallback(chat))
		return nil
	}
	printOut(cmd, fmt.Sprintf("✓ Updated chat %q (ID: %d)\n", chat.Name, chat.ID))
	return nil
}
