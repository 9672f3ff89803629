package commands

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/k1nky/pachca-client/internal/client"
	"github.com/k1nky/pachca-client/internal/config"
	"github.com/k1nky/pachca-client/internal/pachca"
)

// parseID parses a positive numeric id argument.
func parseID(what, s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", what, s)
	}
	return id, nil
}

// parseIDs parses a list of numeric ids from repeated or comma-separated flags.
func parseIDs(what string, values []string) ([]int64, error) {
	var ids []int64
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			id, err := parseID(what, part)
			if err != nil {
				return nil, err
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// parseButton parses "text=value" into a button built by mk.
func parseButton(spec string, mk func(text, value string) (pachca.Button, error)) (pachca.Button, error) {
	text, value, ok := strings.Cut(spec, "=")
	if !ok {
		return pachca.Button{}, fmt.Errorf("button %q: expected text=value", spec)
	}
	return mk(strings.TrimSpace(text), strings.TrimSpace(value))
}

// buttonRows builds one row per flag occurrence, URL buttons first.
func buttonRows(urlSpecs, dataSpecs []string) ([][]pachca.Button, error) {
	var rows [][]pachca.Button
	for _, s := range urlSpecs {
		b, err := parseButton(s, pachca.URLButton)
		if err != nil {
			return nil, err
		}
		rows = append(rows, []pachca.Button{b})
	}
	for _, s := range dataSpecs {
		b, err := parseButton(s, pachca.DataButton)
		if err != nil {
			return nil, err
		}
		rows = append(rows, []pachca.Button{b})
	}
	return rows, nil
}

// attachments builds file descriptors for --file and --image paths.
func attachments(files, images []string) []*pachca.File {
	var out []*pachca.File
	for _, p := range files {
		out = append(out, pachca.NewFile(p, "", pachca.FileTypeFile))
	}
	for _, p := range images {
		out = append(out, pachca.NewFile(p, "", pachca.FileTypeImage))
	}
	return out
}

// describeError turns library errors into messages suited for the terminal.
func describeError(action string, err error) error {
	var (
		apiErr *client.Error
		netErr net.Error
	)
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
		return fmt.Errorf("%s: request timed out: %w", action, err)
	case errors.As(err, &apiErr) && apiErr.StatusCode == 401:
		return fmt.Errorf("%s: access token rejected, check %s or access_token in %s: %w",
			action, config.EnvToken, config.FileName, err)
	}
	return fmt.Errorf("%s: %w", action, err)
}
