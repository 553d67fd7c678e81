// Package views holds the page objects for the game's screens: typed
// facades over the game driver's find/wait/click/read primitives. Views
// keep no state beyond the driver container and their locator tables.
package views

import (
	"fmt"
	"time"

	"github.com/driftline/uiharness/pkg/gamedriver"
	"github.com/driftline/uiharness/pkg/harness"
	"github.com/driftline/uiharness/pkg/harness/report"
)

const (
	// DefaultTimeout bounds waits for an element to appear.
	DefaultTimeout = 10 * time.Second
	// DefaultPoll is the interval between presence checks while waiting.
	DefaultPoll = 500 * time.Millisecond
	// defaultSettle is the pause after a click or tap, giving the game a
	// frame or two to react before the next verb runs.
	defaultSettle = 500 * time.Millisecond
)

// BaseView carries the shared verbs every page object builds on.
type BaseView struct {
	Drivers *harness.DriverContainer
	rep     *report.Reporter

	// Settle is the pause applied after clicks and taps. Tests against
	// fakes set it to zero.
	Settle time.Duration
}

// NewBaseView builds the shared layer from the class's driver container and
// reporter.
func NewBaseView(drivers *harness.DriverContainer, rep *report.Reporter) BaseView {
	return BaseView{Drivers: drivers, rep: rep, Settle: defaultSettle}
}

// Game returns the primary game driver.
func (v *BaseView) Game() gamedriver.Driver {
	return v.Drivers.Game
}

// WaitForObject blocks until the element is present, polling at interval,
// and fails with a descriptive error (after capturing a screenshot) when
// the timeout elapses.
func (v *BaseView) WaitForObject(loc gamedriver.Locator, timeout, interval time.Duration) (gamedriver.Object, error) {
	v.rep.Log(fmt.Sprintf("waiting for element %s to be present", loc.Value), false)

	obj, err := v.Game().WaitForObject(loc, timeout, interval)
	if err != nil {
		v.rep.Log(fmt.Sprintf("element %s was not found within %s", loc.Value, timeout), true)
		return gamedriver.Object{}, fmt.Errorf(
			"element %q was not found within %s, check that it exists and the game loaded correctly: %w",
			loc.Value, timeout, err)
	}
	return obj, nil
}

// FindElement locates the element right now, capturing a screenshot and
// returning a descriptive error when it is absent.
func (v *BaseView) FindElement(loc gamedriver.Locator) (gamedriver.Object, error) {
	obj, err := v.Game().FindObject(loc)
	if err != nil {
		v.rep.Log(fmt.Sprintf("element %s not found", loc.Value), true)
		return gamedriver.Object{}, fmt.Errorf(
			"element %q was not found, verify it exists in the current scene: %w", loc.Value, err)
	}
	return obj, nil
}

// ClickObject waits for the element, clicks it and lets the game settle.
func (v *BaseView) ClickObject(loc gamedriver.Locator, timeout time.Duration) error {
	obj, err := v.WaitForObject(loc, timeout, DefaultPoll)
	if err != nil {
		return err
	}
	if err := v.Game().Click(obj); err != nil {
		return fmt.Errorf("failed to click %q: %w", loc.Value, err)
	}
	v.settle()
	return nil
}

// TapObject waits for the element, taps it count times and lets the game
// settle.
func (v *BaseView) TapObject(loc gamedriver.Locator, count int, timeout time.Duration) error {
	obj, err := v.WaitForObject(loc, timeout, DefaultPoll)
	if err != nil {
		return err
	}
	if err := v.Game().Tap(obj, count); err != nil {
		return fmt.Errorf("failed to tap %q: %w", loc.Value, err)
	}
	v.settle()
	return nil
}

// SetText waits for the element and replaces its text content.
func (v *BaseView) SetText(loc gamedriver.Locator, text string, timeout time.Duration) error {
	obj, err := v.WaitForObject(loc, timeout, DefaultPoll)
	if err != nil {
		return err
	}
	if err := v.Game().SetText(obj, text); err != nil {
		return fmt.Errorf("failed to set text on %q: %w", loc.Value, err)
	}
	return nil
}

// GetText waits for the element and returns its text content.
func (v *BaseView) GetText(loc gamedriver.Locator, timeout time.Duration) (string, error) {
	obj, err := v.WaitForObject(loc, timeout, DefaultPoll)
	if err != nil {
		return "", err
	}
	text, err := v.Game().GetText(obj)
	if err != nil {
		return "", fmt.Errorf("failed to read text from %q: %w", loc.Value, err)
	}
	return text, nil
}

// IsObjectPresent reports whether the element can be located right now.
// Lookup errors collapse to false; use FindElement when the cause matters.
func (v *BaseView) IsObjectPresent(loc gamedriver.Locator) bool {
	_, err := v.Game().FindObject(loc)
	return err == nil
}

// CurrentScene returns the name of the loaded scene.
func (v *BaseView) CurrentScene() (string, error) {
	return v.Game().CurrentScene()
}

// LoadScene loads the named scene.
func (v *BaseView) LoadScene(name string) error {
	return v.Game().LoadScene(name)
}

// Wait sleeps for the given duration. Prefer WaitForObject; this exists for
// the rare animation with no observable end state.
func (v *BaseView) Wait(d time.Duration) {
	time.Sleep(d)
}

func (v *BaseView) settle() {
	if v.Settle > 0 {
		time.Sleep(v.Settle)
	}
}
