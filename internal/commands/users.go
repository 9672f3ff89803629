package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/k1nky/pachca-client/internal/pachca"
)

var usersFlags struct {
	per   int
	page  int
	all   bool
	query string
}

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "List and show users",
	Long: `List and show members of the Pachca workspace.

Examples:
  pachca users list --query ivan   # Search by name, nickname, email or phone
  pachca users list --all          # Every user, all pages
  pachca users get andrey          # Show a user by nickname`,
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List users",
	Args:  cobra.NoArgs,
	RunE:  runUsersList,
}

var usersGetCmd = &cobra.Command{
	Use:   "get <id-or-nickname>",
	Short: "Show a user",
	Args:  cobra.ExactArgs(1),
	RunE:  runUsersGet,
}

func init() {
	lf := usersListCmd.Flags()
	lf.IntVar(&usersFlags.per, "per", 0, "Page size, 1-50 (default 50)")
	lf.IntVar(&usersFlags.page, "page", 0, "Page number (default 1)")
	lf.BoolVar(&usersFlags.all, "all", false, "Fetch every page")
	lf.StringVar(&usersFlags.query, "query", "", "Search string")

	usersCmd.AddCommand(usersListCmd)
	usersCmd.AddCommand(usersGetCmd)
}

func runUsersList(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.close()

	opts := pachca.ListUsersOptions{Per: usersFlags.per, Page: usersFlags.page, Query: usersFlags.query}
	users, err := listUsers(cmd.Context(), s.api, opts, usersFlags.all)
	if err != nil {
		return err
	}
	printOut(cmd, formatUsersListOutput(users, globalFlags.json))
	return nil
}

func listUsers(ctx context.Context, api *pachca.Pachca, opts pachca.ListUsersOptions, all bool) ([]pachca.User, error) {
	var (
		users []pachca.User
		err   error
	)
	if all {
		users, err = api.ListAllUsers(ctx, opts)
	} else {
		users, err = api.ListUsers(ctx, opts)
	}
	if err != nil {
		return nil, describeError("listing users", err)
	}
	return users, nil
}

func displayName(u pachca.User) string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

func formatUsersListOutput(users []pachca.User, asJSON bool) string {
	if asJSON {
		output := struct {
			Users []pachca.User `json:"users"`
			Count int           `json:"count"`
		}{
			Users: users,
			Count: len(users),
		}
		if output.Users == nil {
			output.Users = []pachca.User{}
		}
		return marshalJSONOrFallback(output)
	}

	var sb strings.Builder
	if len(users) == 0 {
		sb.WriteString("No users found.\n")
		return sb.String()
	}

	sb.WriteString("USERS:\n")
	for _, u := range users {
		sb.WriteString(fmt.Sprintf("  %d  @%s", u.ID, u.Nickname))
		if name := displayName(u); name != "" {
			sb.WriteString(fmt.Sprintf(" (%s)", name))
		}
		switch {
		case u.Bot:
			sb.WriteString(" [bot]")
		case u.Suspended:
			sb.WriteString(" [suspended]")
		}
		if u.Title != "" {
			sb.WriteString(fmt.Sprintf(" - %s", u.Title))
		}
		sb.WriteString("\n")
	}
	sb.WriteString(fmt.Sprintf("\nTotal: %d user(s)\n", len(users)))
	return sb.String()
}

func runUsersGet(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.close()

	user, err := s.api.GetUser(cmd.Context(), pachca.ParseRef(strings.TrimPrefix(args[0], "@")))
	if err != nil {
		return describeError("getting user", err)
	}
	printOut(cmd, formatUserOutput(user, globalFlags.json))
	return nil
}

func formatUserOutput(u *pachca.User, asJSON bool) string {
	if asJSON {
		return marshalJSONOrFallback(u)
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("User:       @%s\n", u.Nickname))
	sb.WriteString(fmt.Sprintf("ID:         %d\n", u.ID))
	if name := displayName(*u); name != "" {
		sb.WriteString(fmt.Sprintf("Name:       %s\n", name))
	}
	if u.Email != "" {
		sb.WriteString(fmt.Sprintf("Email:      %s\n", u.Email))
	}
	if u.Department != "" {
		sb.WriteString(fmt.Sprintf("Department: %s\n", u.Department))
	}
	if u.Title != "" {
		sb.WriteString(fmt.Sprintf("Title:      %s\n", u.Title))
	}
	if u.Role != "" {
		sb.WriteString(fmt.Sprintf("Role:       %s\n", u.Role))
	}
	if u.Bot {
		sb.WriteString("Bot:        yes\n")
	}
	if u.Suspended {
		sb.WriteString("Suspended:  yes\n")
	}
	return sb.String()
}
