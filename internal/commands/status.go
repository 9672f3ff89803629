package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/k1nky/pachca-client/internal/pachca"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current profile and status",
	Long: `Show who the access token belongs to and their current status.
Useful to check that the token and base URL are configured correctly.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

// StatusResult is the profile of the token owner plus their status.
type StatusResult struct {
	BaseURL string         `json:"base_url"`
	Profile *pachca.User   `json:"profile"`
	Status  *pachca.Status `json:"status,omitempty"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.close()

	result, err := fetchStatus(cmd.Context(), s.api)
	if err != nil {
		return err
	}
	result.BaseURL = s.cfg.APIBaseURL()
	printOut(cmd, formatStatusOutput(result, time.Now(), globalFlags.json))
	return nil
}

func fetchStatus(ctx context.Context, api *pachca.Pachca) (*StatusResult, error) {
	profile, err := api.GetProfile(ctx)
	if err != nil {
		return nil, describeError("getting profile", err)
	}
	status, err := api.GetStatus(ctx)
	if err != nil {
		return nil, describeError("getting status", err)
	}
	return &StatusResult{Profile: profile, Status: status}, nil
}

func formatStatusOutput(r *StatusResult, now time.Time, asJSON bool) string {
	if asJSON {
		return marshalJSONOrFallback(r)
	}

	var sb strings.Builder
	if r.BaseURL != "" {
		sb.WriteString(fmt.Sprintf("API:      %s\n", r.BaseURL))
	}
	if r.Profile != nil {
		sb.WriteString(fmt.Sprintf("Signed in as @%s (ID: %d)", r.Profile.Nickname, r.Profile.ID))
		if name := displayName(*r.Profile); name != "" {
			sb.WriteString(fmt.Sprintf(", %s", name))
		}
		sb.WriteString("\n")
	}
	if r.Status == nil || (r.Status.Emoji == "" && r.Status.Title == "") {
		sb.WriteString("Status:   none\n")
		return sb.String()
	}
	sb.WriteString(fmt.Sprintf("Status:   %s %s", r.Status.Emoji, r.Status.Title))
	if r.Status.ExpiresAt != nil {
		if left := r.Status.ExpiresAt.Sub(now); left > 0 {
			sb.WriteString(fmt.Sprintf(" (expires in %s)", left.Round(time.Minute)))
		} else {
			sb.WriteString(" (expired)")
		}
	}
	sb.WriteString("\n")
	return sb.String()
}
