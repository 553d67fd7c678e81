// Package report funnels test diagnostics — step markers, screenshots,
// captured game logs — into a report sink. The sink itself is an external
// concern; this package only defines the seam and ships a directory-backed
// default so artifacts survive CI runs.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// MimeType is the content type recorded with an attachment.
type MimeType string

const (
	Text MimeType = "text/plain"
	JSON MimeType = "application/json"
	XML  MimeType = "application/xml"
	HTML MimeType = "text/html"
	CSV  MimeType = "text/csv"
	PNG  MimeType = "image/png"
)

// TypeForPath selects a content type from the file extension, defaulting to
// plain text.
func TypeForPath(path string) MimeType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".log":
		return Text
	case ".json":
		return JSON
	case ".xml":
		return XML
	case ".html":
		return HTML
	case ".csv":
		return CSV
	case ".png":
		return PNG
	default:
		return Text
	}
}

// Sink receives report steps and attachments for one test run.
type Sink interface {
	// Step records a report step marker.
	Step(name string)
	// Attach records raw bytes under the given name and content type.
	Attach(name string, mime MimeType, body []byte)
}

// DirSink is the default Sink: steps append to report.log and attachments
// are written as files, all under a single directory.
type DirSink struct {
	dir string

	mu sync.Mutex
}

// NewDirSink creates the directory (and its attachments subdirectory) if
// absent and returns a sink writing into it.
func NewDirSink(dir string) (*DirSink, error) {
	if err := os.MkdirAll(filepath.Join(dir, "attachments"), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create report directory %s: %w", dir, err)
	}
	return &DirSink{dir: dir}, nil
}

// Step appends a timestamped step line to report.log. Errors are dropped:
// the report must never fail a test.
func (s *DirSink) Step(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(filepath.Join(s.dir, "report.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return
	}
	defer f.Close()
	fmt.Fprintf(f, "%s %s\n", time.Now().Format(time.RFC3339), name)
}

// Attach writes the body under attachments/<name>. Errors are dropped for
// the same reason as Step.
func (s *DirSink) Attach(name string, mime MimeType, body []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Attachment names come from test and file names; keep only the base
	// so a crafted name cannot escape the directory.
	path := filepath.Join(s.dir, "attachments", filepath.Base(name))
	_ = os.WriteFile(path, body, 0o644)
}
