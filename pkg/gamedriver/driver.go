// Package gamedriver provides the client for the in-process game automation
// server. The game embeds an automation endpoint that exposes scene and UI
// element queries over a websocket; this package speaks that protocol and
// hides it behind the Driver interface so harness and page-object code never
// touch the wire.
package gamedriver

import (
	"errors"
	"fmt"
	"time"
)

// By is the identification strategy half of a locator.
type By string

const (
	// ByName matches the object's name in the scene hierarchy.
	ByName By = "name"
	// ByPath matches a full hierarchy path (e.g. "/Canvas/Menu/PlayButton").
	ByPath By = "path"
	// ByTag matches the object's tag.
	ByTag By = "tag"
	// ByComponent matches objects carrying the named component.
	ByComponent By = "component"
)

// Locator identifies a UI element: a strategy plus a value.
type Locator struct {
	By    By
	Value string
}

// Name returns a ByName locator for the given object name.
func Name(value string) Locator {
	return Locator{By: ByName, Value: value}
}

// String returns the locator in "strategy=value" form for messages.
func (l Locator) String() string {
	return fmt.Sprintf("%s=%s", l.By, l.Value)
}

// Object is a snapshot of a UI element at the time it was located.
// It carries no connection state; all verbs go through the Driver.
type Object struct {
	ID      int64   `json:"id"`
	Name    string  `json:"name"`
	Enabled bool    `json:"enabled"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Z       float64 `json:"z"`
}

// LogNotification is a log line pushed by the game while connected.
type LogNotification struct {
	Message    string `json:"message"`
	StackTrace string `json:"stackTrace"`
}

// Driver is the verb surface of the primary automation client. The concrete
// implementation is Client; tests substitute fakes.
type Driver interface {
	// FindObject locates an element right now, without waiting.
	FindObject(loc Locator) (Object, error)
	// WaitForObject polls FindObject at the given interval until the element
	// is present or the timeout elapses.
	WaitForObject(loc Locator, timeout, interval time.Duration) (Object, error)
	// Click clicks the object and waits for the click to be processed.
	Click(obj Object) error
	// Tap taps the object count times.
	Tap(obj Object, count int) error
	// SetText replaces the object's text content.
	SetText(obj Object, text string) error
	// GetText returns the object's text content.
	GetText(obj Object) (string, error)
	// CurrentScene returns the name of the loaded scene.
	CurrentScene() (string, error)
	// LoadScene loads the named scene.
	LoadScene(name string) error
	// Screenshot captures the game viewport as PNG bytes.
	Screenshot() ([]byte, error)
	// OnLogNotification registers a listener for pushed game log lines.
	// Listeners run on the client's delivery goroutine.
	OnLogNotification(fn func(LogNotification))
	// Close disconnects from the automation server.
	Close() error
}

// ErrClosed is returned for calls made after the connection is gone.
var ErrClosed = errors.New("gamedriver: connection closed")

// CommandError is a failure reported by the automation server for a single
// command, e.g. an element that does not exist.
type CommandError struct {
	Command string
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("gamedriver: command %q failed: %s", e.Command, e.Message)
}

// NotFoundError reports that no element matched a locator within the wait
// window.
type NotFoundError struct {
	Locator Locator
	Timeout time.Duration
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("gamedriver: no element matched %s within %s", e.Locator, e.Timeout)
}
