// pachca - command-line client for the Pachca chat service API
//
// Lists and manages chats, users and messages, uploads files and resolves
// chat names and user nicknames to ids through a short-lived listing cache.
package main

import (
	"fmt"
	"os"

	"github.com/k1nky/pachca-client/internal/commands"
)

// Version information (set by goreleaser)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)

	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
