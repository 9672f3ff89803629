package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/k1nky/pachca-client/internal/apierr"
)

// Error represents a non-success response from the Pachca API.
type Error struct {
	// Kind is one of apierr.ErrBadRequest, apierr.ErrEntryNotFound or
	// apierr.ErrUnexpectedResponse.
	Kind       error
	StatusCode int
	// Detail is the server-provided "errors" value, or the raw response text.
	Detail string
}

func (e *Error) Error() string {
	if errors.Is(e.Kind, apierr.ErrUnexpectedResponse) {
		return fmt.Sprintf("unexpected response with status code %d", e.StatusCode)
	}
	detail := e.Detail
	if detail == "" {
		detail = "no details"
	}
	return fmt.Sprintf("%v (status %d): %s", e.Kind, e.StatusCode, detail)
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// Classify maps a response status to an error kind. It returns nil for
// 200, 201 and 204.
func Classify(status int, body []byte) error {
	switch status {
	case http.StatusOK, http.StatusCreated, http.StatusNoContent:
		return nil
	}
	if status >= 400 && status < 500 {
		kind := apierr.ErrBadRequest
		if status == http.StatusNotFound {
			kind = apierr.ErrEntryNotFound
		}
		return &Error{Kind: kind, StatusCode: status, Detail: ExtractDetail(body)}
	}
	return &Error{Kind: apierr.ErrUnexpectedResponse, StatusCode: status}
}

// ExtractDetail returns the value of the "errors" field when body is a JSON
// object carrying one, and the raw text otherwise. A string value is returned
// unquoted; any other value is rendered as compact JSON.
func ExtractDetail(body []byte) string {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil {
		return string(body)
	}
	raw, ok := obj["errors"]
	if !ok {
		return string(body)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, raw); err != nil {
		return string(raw)
	}
	return compact.String()
}

// BodyKind tags the shape of a decoded response body.
type BodyKind int

const (
	// BodyText is a body that is not valid JSON (including an empty body).
	BodyText BodyKind = iota
	// BodyEnvelope is a JSON object with a "data" field; Raw holds that field.
	BodyEnvelope
	// BodyJSON is any other JSON value; Raw holds it unchanged.
	BodyJSON
)

func (k BodyKind) String() string {
	switch k {
	case BodyEnvelope:
		return "envelope"
	case BodyJSON:
		return "json"
	default:
		return "text"
	}
}

// Body is a decoded response body.
type Body struct {
	Kind BodyKind
	// Raw is the JSON value for BodyEnvelope and BodyJSON.
	Raw json.RawMessage
	// Text is the raw response text for BodyText.
	Text string
}

// DecodeBody performs the three-way decode of a response body.
func DecodeBody(raw []byte) Body {
	if !json.Valid(raw) {
		return Body{Kind: BodyText, Text: string(raw)}
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err == nil {
		if data, ok := obj["data"]; ok {
			return Body{Kind: BodyEnvelope, Raw: data}
		}
	}
	return Body{Kind: BodyJSON, Raw: json.RawMessage(raw)}
}

// Decode unmarshals the JSON value into v. Text bodies cannot be decoded.
func (b *Body) Decode(v any) error {
	if b.Kind == BodyText {
		return fmt.Errorf("decoding response: body is not JSON: %q", truncate(b.Text, 128))
	}
	if err := json.Unmarshal(b.Raw, v); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// Value returns the body as a generic Go value: the unmarshalled JSON for
// JSON kinds, the text for BodyText.
func (b *Body) Value() any {
	if b.Kind == BodyText {
		return b.Text
	}
	var v any
	if err := json.Unmarshal(b.Raw, &v); err != nil {
		return string(b.Raw)
	}
	return v
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
