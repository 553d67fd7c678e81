// Package testutil provides test doubles shared by the harness, report and
// views package tests: a scriptable game driver, an in-memory report sink
// and failing mobile/browser stubs for teardown tests.
package testutil

import (
	"sync"
	"time"

	"github.com/driftline/uiharness/pkg/gamedriver"
	"github.com/driftline/uiharness/pkg/harness/report"
)

// Attachment is one recorded sink attachment.
type Attachment struct {
	Name string
	Mime report.MimeType
	Body []byte
}

// MemorySink records steps and attachments for assertions.
type MemorySink struct {
	mu          sync.Mutex
	steps       []string
	attachments []Attachment
}

var _ report.Sink = (*MemorySink)(nil)

func (s *MemorySink) Step(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.steps = append(s.steps, name)
}

func (s *MemorySink) Attach(name string, mime report.MimeType, body []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attachments = append(s.attachments, Attachment{Name: name, Mime: mime, Body: body})
}

// Steps returns a copy of the recorded step names.
func (s *MemorySink) Steps() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.steps))
	copy(out, s.steps)
	return out
}

// Attachments returns a copy of the recorded attachments.
func (s *MemorySink) Attachments() []Attachment {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Attachment, len(s.attachments))
	copy(out, s.attachments)
	return out
}

// FakeDriver is a scriptable gamedriver.Driver. Zero value is usable: no
// objects exist and every lookup fails with NotFound semantics.
type FakeDriver struct {
	mu sync.Mutex

	// Objects present in the fake scene, keyed by locator value.
	Objects map[string]gamedriver.Object
	// Texts holds per-object text content, keyed by object ID.
	Texts map[int64]string
	// Scene is returned by CurrentScene.
	Scene string
	// ScreenshotPNG is returned by Screenshot when ScreenshotErr is nil.
	ScreenshotPNG []byte

	// Injected failures.
	FindErr       error
	ClickErr      error
	SceneErr      error
	ScreenshotErr error
	CloseErr      error

	// Recorded interactions.
	Clicked    []string
	Tapped     []string
	SetTexts   map[int64]string
	CloseCalls int

	listeners []func(gamedriver.LogNotification)
}

var _ gamedriver.Driver = (*FakeDriver)(nil)

// AddObject makes an object findable by its name.
func (d *FakeDriver) AddObject(obj gamedriver.Object) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Objects == nil {
		d.Objects = make(map[string]gamedriver.Object)
	}
	d.Objects[obj.Name] = obj
}

// RemoveObject makes an object unfindable again.
func (d *FakeDriver) RemoveObject(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.Objects, name)
}

func (d *FakeDriver) FindObject(loc gamedriver.Locator) (gamedriver.Object, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.FindErr != nil {
		return gamedriver.Object{}, d.FindErr
	}
	obj, ok := d.Objects[loc.Value]
	if !ok {
		return gamedriver.Object{}, &gamedriver.CommandError{Command: "findObject", Message: "object not found"}
	}
	return obj, nil
}

func (d *FakeDriver) WaitForObject(loc gamedriver.Locator, timeout, interval time.Duration) (gamedriver.Object, error) {
	if interval <= 0 {
		interval = time.Millisecond
	}
	deadline := time.Now().Add(timeout)
	for {
		obj, err := d.FindObject(loc)
		if err == nil {
			return obj, nil
		}
		if !time.Now().Before(deadline) {
			return gamedriver.Object{}, &gamedriver.NotFoundError{Locator: loc, Timeout: timeout}
		}
		time.Sleep(interval)
	}
}

func (d *FakeDriver) Click(obj gamedriver.Object) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.ClickErr != nil {
		return d.ClickErr
	}
	d.Clicked = append(d.Clicked, obj.Name)
	return nil
}

func (d *FakeDriver) Tap(obj gamedriver.Object, count int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := 0; i < count; i++ {
		d.Tapped = append(d.Tapped, obj.Name)
	}
	return nil
}

func (d *FakeDriver) SetText(obj gamedriver.Object, text string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.SetTexts == nil {
		d.SetTexts = make(map[int64]string)
	}
	d.SetTexts[obj.ID] = text
	return nil
}

func (d *FakeDriver) GetText(obj gamedriver.Object) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.Texts[obj.ID], nil
}

func (d *FakeDriver) CurrentScene() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.SceneErr != nil {
		return "", d.SceneErr
	}
	return d.Scene, nil
}

func (d *FakeDriver) LoadScene(name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Scene = name
	return nil
}

func (d *FakeDriver) Screenshot() ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.ScreenshotErr != nil {
		return nil, d.ScreenshotErr
	}
	return d.ScreenshotPNG, nil
}

func (d *FakeDriver) OnLogNotification(fn func(gamedriver.LogNotification)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners = append(d.listeners, fn)
}

// EmitLog delivers a log notification to registered listeners, mimicking
// the client's delivery goroutine when called from a separate goroutine.
func (d *FakeDriver) EmitLog(n gamedriver.LogNotification) {
	d.mu.Lock()
	listeners := make([]func(gamedriver.LogNotification), len(d.listeners))
	copy(listeners, d.listeners)
	d.mu.Unlock()
	for _, fn := range listeners {
		fn(n)
	}
}

func (d *FakeDriver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.CloseCalls++
	return d.CloseErr
}

// FakeMobile is a MobileDriver stub with an injectable Quit failure.
type FakeMobile struct {
	QuitErr   error
	QuitCalls int
}

func (m *FakeMobile) Quit() error {
	m.QuitCalls++
	return m.QuitErr
}

// FakeBrowser is a BrowserDriver stub with injectable failures.
type FakeBrowser struct {
	NavigateErr error
	CloseErr    error

	NavigatedTo []string
	CloseCalls  int
}

func (b *FakeBrowser) Navigate(url string) error {
	if b.NavigateErr != nil {
		return b.NavigateErr
	}
	b.NavigatedTo = append(b.NavigatedTo, url)
	return nil
}

func (b *FakeBrowser) Close() error {
	b.CloseCalls++
	return b.CloseErr
}
