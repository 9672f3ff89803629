package pachca

import (
	"fmt"

	"github.com/k1nky/pachca-client/internal/apierr"
)

// Button is an inline message button. Exactly one of URL and Data is set.
type Button struct {
	Text string `json:"text"`
	URL  string `json:"url,omitempty"`
	Data string `json:"data,omitempty"`
}

// URLButton returns a button that opens url.
func URLButton(text, url string) (Button, error) {
	if err := validateButton(text, url); err != nil {
		return Button{}, err
	}
	return Button{Text: text, URL: url}, nil
}

// DataButton returns a button that sends data back to the bot's webhook.
func DataButton(text, data string) (Button, error) {
	if err := validateButton(text, data); err != nil {
		return Button{}, err
	}
	return Button{Text: text, Data: data}, nil
}

func validateButton(text, value string) error {
	if text == "" {
		return fmt.Errorf("text should be not empty: %w", apierr.ErrInvalidArgument)
	}
	if value == "" {
		return fmt.Errorf("value should be not empty: %w", apierr.ErrInvalidArgument)
	}
	return nil
}
