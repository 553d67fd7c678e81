package harness

import "github.com/driftline/uiharness/pkg/gamedriver"

// MobileDriver is the slice of a mobile automation session the lifecycle
// manager needs. The concrete implementation is MobileSession.
type MobileDriver interface {
	Quit() error
}

// BrowserDriver is the slice of a browser session the lifecycle manager
// needs. The concrete implementation is BrowserClient.
type BrowserDriver interface {
	Navigate(url string) error
	Close() error
}

// DriverContainer holds the active driver handles for one test class.
// Game is mandatory once setup succeeds; Mobile and Browser are nil unless
// their feature flag is enabled for the current platform. The container is
// owned by a single Harness and must not outlive it.
type DriverContainer struct {
	Game    gamedriver.Driver
	Mobile  MobileDriver
	Browser BrowserDriver
}
