package pachca

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/k1nky/pachca-client/internal/apierr"
	"github.com/k1nky/pachca-client/internal/client"
)

// FileType is how an attachment is rendered.
type FileType string

const (
	FileTypeFile  FileType = "file"
	FileTypeImage FileType = "image"
)

// keyFilenamePlaceholder is substituted with the display name in the pre-signed key.
const keyFilenamePlaceholder = "${filename}"

// File is a local file to attach to a message. Size and Key are set by a
// successful UploadFile and are empty before.
type File struct {
	Path string
	Name string
	Type FileType
	Size int64
	Key  string
}

// NewFile describes the file at path. An empty name defaults to the base name
// of path and an empty type to FileTypeFile.
func NewFile(path, name string, typ FileType) *File {
	if name == "" {
		name = filepath.Base(path)
	}
	if typ == "" {
		typ = FileTypeFile
	}
	return &File{Path: path, Name: name, Type: typ}
}

// Prepared reports whether the file has been uploaded.
func (f *File) Prepared() bool {
	return f.Key != ""
}

// attachment is the message payload entry for an uploaded file.
type attachment struct {
	Key      string   `json:"key"`
	Name     string   `json:"name"`
	FileType FileType `json:"file_type"`
	Size     int64    `json:"size"`
}

func (f *File) attachment() attachment {
	return attachment{Key: f.Key, Name: f.Name, FileType: f.Type, Size: f.Size}
}

func (f *File) prepare(key string, size int64) {
	f.Key = strings.ReplaceAll(key, keyFilenamePlaceholder, f.Name)
	f.Size = size
}

// UploadFile pre-signs an upload, sends the file bytes to the returned direct
// URL and marks f as prepared.
func (p *Pachca) UploadFile(ctx context.Context, f *File) error {
	if f == nil || f.Path == "" {
		return fmt.Errorf("file path should be not empty: %w", apierr.ErrInvalidArgument)
	}
	if f.Type != FileTypeFile && f.Type != FileTypeImage {
		return fmt.Errorf("file type should be %s or %s, got %q: %w", FileTypeFile, FileTypeImage, f.Type, apierr.ErrInvalidArgument)
	}
	fh, err := os.Open(f.Path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", f.Path, err)
	}
	defer func() { _ = fh.Close() }()
	info, err := fh.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", f.Path, err)
	}

	// Both steps report failures regardless of raise-on-error: f must stay
	// unprepared unless the bytes reached storage.
	body, err := p.client.PostChecked(ctx, methodUploads, nil)
	if err != nil {
		return fmt.Errorf("pre-signing upload of %s: %w", f.Name, err)
	}
	fields, err := presignFields(body)
	if err != nil {
		return fmt.Errorf("pre-signing upload of %s: %w", f.Name, err)
	}
	directURL := fields["direct_url"]
	delete(fields, "direct_url")
	if directURL == "" {
		return fmt.Errorf("pre-sign response has no direct_url: %w", apierr.ErrUnexpectedResponse)
	}
	key := fields["key"]

	if _, err := p.client.Upload(ctx, directURL, fields, f.Name, fh); err != nil {
		return fmt.Errorf("uploading %s: %w", f.Name, err)
	}
	f.prepare(key, info.Size())
	p.logger.Debug("file uploaded", zap.String("name", f.Name), zap.String("key", f.Key), zap.Int64("size", f.Size))
	return nil
}

// presignFields flattens the pre-sign response into form fields. Strings are
// unquoted; numbers and other scalars keep their JSON text.
func presignFields(body *client.Body) (map[string]string, error) {
	var raw map[string]json.RawMessage
	if err := body.Decode(&raw); err != nil {
		return nil, err
	}
	fields := make(map[string]string, len(raw))
	for k, v := range raw {
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			fields[k] = s
			continue
		}
		fields[k] = strings.TrimSpace(string(v))
	}
	return fields, nil
}

// uploadFiles uploads files one after another and stops at the first failure.
func (p *Pachca) uploadFiles(ctx context.Context, files []*File) ([]attachment, error) {
	if len(files) == 0 {
		return nil, nil
	}
	out := make([]attachment, 0, len(files))
	for _, f := range files {
		if err := p.UploadFile(ctx, f); err != nil {
			return nil, err
		}
		out = append(out, f.attachment())
	}
	return out, nil
}
