package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Screenshotter captures the game viewport as PNG bytes. The primary game
// driver satisfies this; the lifecycle manager injects it once the driver
// is connected.
type Screenshotter interface {
	Screenshot() ([]byte, error)
}

// Reporter logs test progress and attaches diagnostics to the sink. It is
// scoped to one test class and never fails the test: every screenshot or
// attachment problem is logged and swallowed.
type Reporter struct {
	log  *zap.Logger
	sink Sink
	dir  string // where screenshot PNGs are written

	mu      sync.Mutex
	shooter Screenshotter
}

// New returns a reporter writing screenshots under artifactsDir. The
// screenshotter starts out unset; screenshot requests before the primary
// driver connects degrade to a warning.
func New(log *zap.Logger, sink Sink, artifactsDir string) *Reporter {
	return &Reporter{log: log, sink: sink, dir: artifactsDir}
}

// SetScreenshotter registers the handle used for screenshots. Called by the
// lifecycle manager when the primary driver starts.
func (r *Reporter) SetScreenshotter(s Screenshotter) {
	r.mu.Lock()
	r.shooter = s
	r.mu.Unlock()
}

// Log records a timestamped message as a report step, optionally with a
// screenshot.
func (r *Reporter) Log(message string, withScreenshot bool) {
	stamped := fmt.Sprintf("[%s] %s", time.Now().Format("2006-01-02 15:04:05"), message)
	r.log.Info(message)
	r.sink.Step(stamped)

	if withScreenshot {
		r.TakeScreenshot("")
	}
}

// TakeScreenshot captures the game viewport, writes <name>.png under the
// artifacts directory and attaches it to the report. An empty name gets a
// timestamped default. Fails soft: when no screenshotter is registered or
// the capture fails, it warns and returns.
func (r *Reporter) TakeScreenshot(name string) {
	r.mu.Lock()
	shooter := r.shooter
	r.mu.Unlock()

	if shooter == nil {
		r.log.Warn("cannot take screenshot: primary driver not registered")
		return
	}

	png, err := shooter.Screenshot()
	if err != nil {
		r.log.Warn("failed to take screenshot", zap.Error(err))
		return
	}

	if name == "" {
		name = fmt.Sprintf("screenshot_%d", time.Now().Unix())
	}

	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		r.log.Warn("failed to create screenshot directory", zap.String("dir", r.dir), zap.Error(err))
		return
	}
	path := filepath.Join(r.dir, name+".png")
	if err := os.WriteFile(path, png, 0o644); err != nil {
		r.log.Warn("failed to write screenshot", zap.String("path", path), zap.Error(err))
		return
	}

	r.sink.Step("screenshot taken: " + name)
	r.sink.Attach(name+".png", PNG, png)
}

// AttachFile attaches the file's raw bytes to the report under the given
// name (or the file's base name without extension when empty), with a
// content type derived from the extension. Fails soft when the path does
// not exist or cannot be read.
func (r *Reporter) AttachFile(path, name string) {
	if name == "" {
		base := filepath.Base(path)
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}

	if _, err := os.Stat(path); err != nil {
		r.Log(fmt.Sprintf("cannot attach file: not found at %s", path), false)
		return
	}

	body, err := os.ReadFile(path)
	if err != nil {
		r.log.Warn("failed to read attachment", zap.String("path", path), zap.Error(err))
		return
	}

	r.sink.Attach(name, TypeForPath(path), body)
	r.Log(fmt.Sprintf("file attached to report: %s", name), false)
}
