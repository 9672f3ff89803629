package pachca

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/k1nky/pachca-client/internal/apierr"
)

func TestButton_EmptyText(t *testing.T) {
	_, err := URLButton("", "value_a")
	assert.ErrorIs(t, err, apierr.ErrInvalidArgument)
}

func TestButton_EmptyValue(t *testing.T) {
	_, err := DataButton("text_a", "")
	assert.ErrorIs(t, err, apierr.ErrInvalidArgument)
}

func TestButton_ValidArgs(t *testing.T) {
	got, err := DataButton("text_a", "value_a")
	require.NoError(t, err)
	assert.Equal(t, Button{Text: "text_a", Data: "value_a"}, got)

	got, err = URLButton("text_a", "https://example.com")
	require.NoError(t, err)
	assert.Equal(t, Button{Text: "text_a", URL: "https://example.com"}, got)
}
