// Package commands implements the pachca CLI commands.
package commands

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var versionInfo struct {
	version string
	commit  string
	date    string
}

// SetVersionInfo sets version information from main (populated by goreleaser).
func SetVersionInfo(version, commit, date string) {
	versionInfo.version = version
	versionInfo.commit = commit
	versionInfo.date = date
	rootCmd.Version = versionString()
}

func versionString() string {
	s := versionInfo.version
	if versionInfo.commit != "" && versionInfo.commit != "none" {
		s += fmt.Sprintf(" (commit %s)", versionInfo.commit)
	}
	if versionInfo.date != "" && versionInfo.date != "unknown" {
		s += fmt.Sprintf(" built %s", versionInfo.date)
	}
	return s
}

// Global flags shared by every command.
var globalFlags struct {
	configPath string
	token      string
	json       bool
	debug      bool
}

var rootCmd = &cobra.Command{
	Use:   "pachca",
	Short: "Command-line client for the Pachca API",
	Long: `pachca talks to the Pachca chat service API.

Chats and users can be given by numeric id or by name (chat name, user
nickname). Names are resolved through a short-lived listing cache.

Commands:
  pachca chats      - List, show, create and update chats
  pachca users      - List and show users
  pachca messages   - Send, show, edit, thread and react to messages
  pachca upload     - Upload a file and print its key
  pachca status     - Show the current profile and status
  pachca config     - Manage the .pachca config file

Environment variables:
  PACHCA_TOKEN   - Access token (overrides access_token in .pachca)
  PACHCA_URL     - API root (default: https://api.pachca.com/api/shared/v1/)
  HTTPS_PROXY, HTTP_PROXY, NO_PROXY - Used when .pachca has no proxy section`,
	// Don't show usage/errors on errors from subcommands (main.go handles errors)
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Disable cobra's auto-generated commands - they pollute the namespace
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&globalFlags.configPath, "config", "", "Use an alternate .pachca config file")
	pf.StringVar(&globalFlags.token, "token", "", "Access token (overrides PACHCA_TOKEN and the config file)")
	pf.BoolVar(&globalFlags.json, "json", false, "Output as JSON")
	pf.BoolVar(&globalFlags.debug, "debug", false, "Log requests and cache activity to stderr")

	rootCmd.AddCommand(chatsCmd)
	rootCmd.AddCommand(usersCmd)
	rootCmd.AddCommand(messagesCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(configCmd)
}

func loadDotenvBestEffort() {
	_ = godotenv.Load()
}

// Execute runs the root command.
func Execute() error {
	loadDotenvBestEffort()
	return rootCmd.Execute()
}

// printOut writes command output to stdout.
func printOut(cmd *cobra.Command, s string) {
	fmt.Fprint(cmd.OutOrStdout(), s)
}
