package harness

import (
	"fmt"

	"github.com/tebeka/selenium"
)

// MobileSession is a WebDriver session against an Appium server, used to
// drive the device around the game (permissions dialogs, app switching).
type MobileSession struct {
	// WD is the underlying WebDriver session, exposed for tests that need
	// device-level verbs the harness does not wrap.
	WD selenium.WebDriver
}

var _ MobileDriver = (*MobileSession)(nil)

// mobileCapabilities builds the per-platform capability set.
// Returns nil when the platform has no mobile automation support.
func mobileCapabilities(cfg Config) selenium.Capabilities {
	switch cfg.Platform {
	case Android:
		return selenium.Capabilities{
			"platformName":         "Android",
			"automationName":       "UiAutomator2",
			"newCommandTimeout":    2000,
			"autoGrantPermissions": true,
			"deviceName":           cfg.DeviceName,
			"appPackage":           cfg.AppBundleID,
		}
	case IOS:
		return selenium.Capabilities{
			"platformName": "iOS",
			"deviceName":   cfg.DeviceName,
			"bundleId":     cfg.AppBundleID,
		}
	default:
		return nil
	}
}

// NewMobileSession starts a WebDriver session on the Appium endpoint with
// capabilities derived from the configured platform.
func NewMobileSession(cfg Config) (*MobileSession, error) {
	caps := mobileCapabilities(cfg)
	if caps == nil {
		return nil, fmt.Errorf("mobile automation not supported on platform %q", cfg.Platform)
	}

	wd, err := selenium.NewRemote(caps, cfg.AppiumURL)
	if err != nil {
		return nil, fmt.Errorf("failed to start mobile session at %s: %w", cfg.AppiumURL, err)
	}
	return &MobileSession{WD: wd}, nil
}

// Quit ends the WebDriver session.
func (s *MobileSession) Quit() error {
	return s.WD.Quit()
}
