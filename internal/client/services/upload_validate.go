package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/dmitrijs2005/impify/internal/client/models"
	"github.com/dmitrijs2005/impify/internal/filex"
)

// MaxUploadSize is the largest accepted file, in bytes.
const MaxUploadSize = 50 * 1024 * 1024

// AllowedExtensions is the upload allow-list, lowercase with leading dot.
var AllowedExtensions = []string{
	".pdf", ".docx", ".doc", ".txt", ".md", ".jpg",
	".jpeg", ".png", ".gif", ".bmp", ".tiff", ".webp",
}

// FailureReason classifies why an upload did not succeed.
type FailureReason string

const (
	ReasonNoFileSelected   FailureReason = "no_file_selected"
	ReasonFileTooLarge     FailureReason = "file_too_large"
	ReasonUnsupportedType  FailureReason = "unsupported_type"
	ReasonRateLimited      FailureReason = "rate_limited"
	ReasonPayloadTooLarge  FailureReason = "payload_too_large"
	ReasonUnsupportedMedia FailureReason = "unsupported_media"
	ReasonUploadFailed     FailureReason = "upload_failed"
)

// File is a local file offered for upload.
type File struct {
	Name string
	Size int64
	Open func() (io.ReadCloser, error)
}

// LocalFile describes the regular file at path.
func LocalFile(path string) (*File, error) {
	st, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if st.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	return &File{
		Name: filepath.Base(path),
		Size: st.Size(),
		Open: func() (io.ReadCloser, error) { return os.Open(path) },
	}, nil
}

// BytesFile wraps in-memory content.
func BytesFile(name string, data []byte) *File {
	return &File{
		Name: name,
		Size: int64(len(data)),
		Open: func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(data)), nil },
	}
}

// ValidationError rejects a file before any network call.
type ValidationError struct {
	Reason FailureReason
}

func (e *ValidationError) Error() string {
	switch e.Reason {
	case ReasonNoFileSelected:
		return "No file selected"
	case ReasonFileTooLarge:
		return "File size too large. Maximum size is 50MB"
	case ReasonUnsupportedType:
		return "File type not supported. Please use: " + strings.Join(AllowedExtensions, ", ")
	default:
		return string(e.Reason)
	}
}

// ValidateFile checks presence, size and extension, in that order. It does
// not touch the file's content.
func ValidateFile(f *File) error {
	if f == nil {
		return &ValidationError{Reason: ReasonNoFileSelected}
	}
	if f.Size > MaxUploadSize {
		return &ValidationError{Reason: ReasonFileTooLarge}
	}
	if !slices.Contains(AllowedExtensions, filex.Extension(f.Name)) {
		return &ValidationError{Reason: ReasonUnsupportedType}
	}
	return nil
}

// ExtractCreatedID finds the new note id in an upload response. Locations
// are tried in order: note.id, id, noteId. Malformed or empty values are
// skipped.
func ExtractCreatedID(body []byte) (models.ID, bool) {
	var shape struct {
		Note   json.RawMessage `json:"note"`
		ID     json.RawMessage `json:"id"`
		NoteID json.RawMessage `json:"noteId"`
	}
	if err := json.Unmarshal(body, &shape); err != nil {
		return "", false
	}

	var nested struct {
		ID json.RawMessage `json:"id"`
	}
	var candidates []json.RawMessage
	if len(shape.Note) > 0 && json.Unmarshal(shape.Note, &nested) == nil {
		candidates = append(candidates, nested.ID)
	}
	candidates = append(candidates, shape.ID, shape.NoteID)

	for _, raw := range candidates {
		if len(raw) == 0 {
			continue
		}
		var id models.ID
		if err := json.Unmarshal(raw, &id); err != nil || id == "" {
			continue
		}
		return id, true
	}
	return "", false
}
