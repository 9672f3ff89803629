package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/k1nky/pachca-client/internal/apierr"
)

func newTestClient(t *testing.T, serverURL string, opts ...Option) *Client {
	t.Helper()
	opts = append([]Option{WithBaseURL(serverURL + "/api/shared/v1/")}, opts...)
	c, err := New("secret-token", opts...)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return c
}

func TestRequestURL(t *testing.T) {
	c, err := New("")
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	tests := []struct {
		path string
		want string
	}{
		{"chats", "https://api.pachca.com/api/shared/v1/chats"},
		{"messages/12/reactions", "https://api.pachca.com/api/shared/v1/messages/12/reactions"},
		{"https://uploads.example.com/bucket", "https://uploads.example.com/bucket"},
	}
	for _, tt := range tests {
		got, err := c.RequestURL(tt.path)
		if err != nil {
			t.Fatalf("RequestURL(%q) error: %v", tt.path, err)
		}
		if got != tt.want {
			t.Errorf("RequestURL(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestWithBaseURL_AddsTrailingSlash(t *testing.T) {
	c, err := New("", WithBaseURL("http://localhost:8080/api"))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	got, _ := c.RequestURL("users")
	if got != "http://localhost:8080/api/users" {
		t.Errorf("RequestURL() = %q", got)
	}
}

func TestNew_InvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
	}{
		{"relative base url", WithBaseURL("api/v1")},
		{"zero timeout", WithTimeout(0)},
		{"nil http client", WithHTTPClient(nil)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New("token", tt.opt)
			if !errors.Is(err, apierr.ErrInvalidConfiguration) {
				t.Errorf("New() error = %v, want ErrInvalidConfiguration", err)
			}
		})
	}
}

func TestGet_QueryAndAuth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("Expected GET, got %s", r.Method)
		}
		if r.URL.Path != "/api/shared/v1/some_method" {
			t.Errorf("Expected /api/shared/v1/some_method, got %s", r.URL.Path)
		}
		if got := r.URL.RawQuery; got != "arg1=value1&arg2=value2" {
			t.Errorf("Expected query arg1=value1&arg2=value2, got %s", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret-token" {
			t.Errorf("Expected Authorization 'Bearer secret-token', got '%s'", got)
		}
		if r.ContentLength > 0 {
			t.Errorf("GET should carry no body, got %d bytes", r.ContentLength)
		}
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	body, err := c.Get(context.Background(), "some_method", map[string][]string{
		"arg1": {"value1"},
		"arg2": {"value2"},
	})
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if body.Kind != BodyEnvelope {
		t.Errorf("Kind = %s, want envelope", body.Kind)
	}
}

func TestPost_JSONBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("Expected Content-Type application/json, got %s", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret-token" {
			t.Errorf("Expected Authorization 'Bearer secret-token', got '%s'", got)
		}
		var req map[string]string
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("Failed to decode request: %v", err)
		}
		if diff := cmp.Diff(map[string]string{"arg1": "value1", "arg2": "value2"}, req); diff != "" {
			t.Errorf("request body mismatch (-want +got):\n%s", diff)
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"id":7}}`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	body, err := c.Post(context.Background(), "some_method", map[string]string{"arg1": "value1", "arg2": "value2"})
	if err != nil {
		t.Fatalf("Post() error: %v", err)
	}
	var got struct {
		ID int `json:"id"`
	}
	if err := body.Decode(&got); err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if got.ID != 7 {
		t.Errorf("ID = %d, want 7", got.ID)
	}
}

func TestDo_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"errors":"chat not found"}`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	_, err := c.Get(context.Background(), "chats/1", nil)
	if !errors.Is(err, apierr.ErrEntryNotFound) {
		t.Fatalf("Get() error = %v, want ErrEntryNotFound", err)
	}
	var clientErr *Error
	if !errors.As(err, &clientErr) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if clientErr.Detail != "chat not found" {
		t.Errorf("Detail = %q, want 'chat not found'", clientErr.Detail)
	}
}

func TestDo_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"errors": "internal server error"}`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	_, err := c.Post(context.Background(), "messages", map[string]any{})
	if !errors.Is(err, apierr.ErrUnexpectedResponse) {
		t.Fatalf("Post() error = %v, want ErrUnexpectedResponse", err)
	}
	if err.Error() != "unexpected response with status code 500" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestDo_SilentErrorLogsAndDecodes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"errors":"token revoked"}`))
	}))
	defer server.Close()

	core, logs := observer.New(zapcore.ErrorLevel)
	c := newTestClient(t, server.URL, WithRaiseOnError(false), WithLogger(zap.New(core)))

	body, err := c.Get(context.Background(), "profile", nil)
	if err != nil {
		t.Fatalf("Get() error = %v, want nil with raise_on_error disabled", err)
	}
	if body.Kind != BodyJSON {
		t.Errorf("Kind = %s, want json", body.Kind)
	}
	if logs.FilterMessage("request failed").Len() != 1 {
		t.Errorf("expected one 'request failed' log entry, got %v", logs.All())
	}
}

func TestPostChecked_RaisesWhenSilent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"errors":"uploads disabled"}`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, WithRaiseOnError(false))
	if _, err := c.Post(context.Background(), "uploads", nil); err != nil {
		t.Fatalf("Post() error = %v, want nil with raise_on_error disabled", err)
	}
	_, err := c.PostChecked(context.Background(), "uploads", nil)
	if !errors.Is(err, apierr.ErrBadRequest) {
		t.Fatalf("PostChecked() error = %v, want ErrBadRequest", err)
	}
}

func TestDo_Unreachable(t *testing.T) {
	c, err := New("token", WithBaseURL("http://localhost:99999"))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	_, err = c.Get(context.Background(), "chats", nil)
	if err == nil {
		t.Fatal("Expected error for unreachable server")
	}
	if !strings.Contains(err.Error(), "sending request") {
		t.Errorf("error = %v, want sending request wrap", err)
	}
}

func TestDo_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	c := newTestClient(t, server.URL, WithTimeout(50*time.Millisecond))
	_, err := c.Get(context.Background(), "chats", nil)
	var timeoutErr interface{ Timeout() bool }
	if !errors.As(err, &timeoutErr) || !timeoutErr.Timeout() {
		t.Fatalf("Get() error = %v, want a timeout error", err)
	}
}

func TestUpload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/bucket" {
			t.Errorf("Expected /bucket, got %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("ParseMultipartForm() error: %v", err)
		}
		if got := r.FormValue("policy"); got != "p0l1cy" {
			t.Errorf("policy = %q", got)
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("FormFile() error: %v", err)
		}
		defer f.Close()
		data, _ := io.ReadAll(f)
		if string(data) != "hello" || hdr.Filename != "hello.txt" {
			t.Errorf("file = %q (%s)", data, hdr.Filename)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	c := newTestClient(t, "http://api.invalid")
	body, err := c.Upload(context.Background(), server.URL+"/bucket",
		map[string]string{"policy": "p0l1cy", "key": "attaches/${filename}"},
		"hello.txt", strings.NewReader("hello"))
	if err != nil {
		t.Fatalf("Upload() error: %v", err)
	}
	if body.Kind != BodyText || body.Text != "" {
		t.Errorf("body = %+v, want empty text", body)
	}
}

func TestUpload_Rejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`<Error><Code>AccessDenied</Code></Error>`))
	}))
	defer server.Close()

	c := newTestClient(t, "http://api.invalid")
	_, err := c.Upload(context.Background(), server.URL, nil, "a.txt", strings.NewReader("a"))
	if !errors.Is(err, apierr.ErrBadRequest) {
		t.Fatalf("Upload() error = %v, want ErrBadRequest", err)
	}
	var clientErr *Error
	if errors.As(err, &clientErr) && !strings.Contains(clientErr.Detail, "AccessDenied") {
		t.Errorf("Detail = %q, want raw text", clientErr.Detail)
	}
}

func TestUpload_RejectedWhenSilent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	c := newTestClient(t, "http://api.invalid", WithRaiseOnError(false))
	_, err := c.Upload(context.Background(), server.URL, nil, "a.txt", strings.NewReader("a"))
	if !errors.Is(err, apierr.ErrBadRequest) {
		t.Fatalf("Upload() error = %v, want ErrBadRequest with raise_on_error disabled", err)
	}
}
