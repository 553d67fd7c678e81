package harness

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/driftline/uiharness/pkg/gamedriver"
	"github.com/driftline/uiharness/pkg/harness/report"
)

// gameLogBuffer collects log notifications pushed by the game into a
// per-run file. Records arrive on the driver's delivery goroutine while the
// test runs on its own, so every write is serialized by the mutex. The
// filename→path map mirrors what has been written and is cleared on flush.
type gameLogBuffer struct {
	mu       sync.Mutex
	dir      string
	filename string
	files    map[string]string
}

// newGameLogBuffer names the run file {className}-Logs-{runStamp}.txt under
// dir. Nothing touches the filesystem until the first record arrives.
func newGameLogBuffer(dir, className, runStamp string) *gameLogBuffer {
	return &gameLogBuffer{
		dir:      dir,
		filename: fmt.Sprintf("%s-Logs-%s.txt", className, runStamp),
		files:    make(map[string]string),
	}
}

// record appends one notification (message plus stack trace) to the run
// file, creating directory and file on first use.
func (b *gameLogBuffer) record(n gamedriver.LogNotification) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := os.MkdirAll(b.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create log directory %s: %w", b.dir, err)
	}

	path := filepath.Join(b.dir, b.filename)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "%s\nStackTrace : %s\n", n.Message, n.StackTrace); err != nil {
		return fmt.Errorf("failed to append to log file %s: %w", path, err)
	}

	b.files[b.filename] = path
	return nil
}

// flush attaches every buffered log file to the report and clears the
// buffer. Attachment failures are the reporter's (soft) problem.
func (b *gameLogBuffer) flush(rep *report.Reporter) {
	b.mu.Lock()
	files := b.files
	b.files = make(map[string]string)
	b.mu.Unlock()

	for filename, path := range files {
		rep.AttachFile(path, filename)
	}
}
