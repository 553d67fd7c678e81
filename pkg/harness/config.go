// Package harness provisions and tears down the drivers a UI test class
// needs: the in-process game automation client, an optional mobile driver
// and an optional browser driver. It owns the fixture lifecycle — ordered
// startup, game log capture, independent teardown and report flushing —
// so test suites stay a thin layer of assertions.
package harness

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Platform selects which build of the game is under test.
type Platform string

const (
	// Android targets the Android build via a mobile driver.
	Android Platform = "android"
	// IOS targets the iOS build via a mobile driver.
	IOS Platform = "ios"
	// WebGL targets the browser build.
	WebGL Platform = "webgl"
)

// Decode implements envconfig.Decoder, accepting the platform name in any
// case.
func (p *Platform) Decode(value string) error {
	switch strings.ToLower(value) {
	case "android":
		*p = Android
	case "ios":
		*p = IOS
	case "webgl":
		*p = WebGL
	default:
		return fmt.Errorf("unknown platform %q (want android, ios or webgl)", value)
	}
	return nil
}

// Config is the immutable snapshot of environment-derived settings for one
// test process. Build it once with FromEnv and pass it explicitly; nothing
// in this module reads the environment after that.
type Config struct {
	// Game automation endpoint.
	ServerHost     string        `envconfig:"GAME_SERVER_HOST" default:"127.0.0.1"`
	ServerPort     int           `envconfig:"GAME_SERVER_PORT" default:"13000"`
	AppName        string        `envconfig:"GAME_APP_NAME" default:"__default__"`
	ConnectTimeout time.Duration `envconfig:"GAME_CONNECT_TIMEOUT" default:"60s"`

	// Target platform and device.
	Platform    Platform `envconfig:"TEST_PLATFORM" default:"android"`
	DeviceName  string   `envconfig:"DEVICE_NAME" default:"android"`
	AppBundleID string   `envconfig:"APP_BUNDLE_ID" default:"com.example.app"`

	// Optional secondary drivers.
	WithAppium  bool   `envconfig:"RUN_TESTS_WITH_APPIUM" default:"false"`
	WithBrowser bool   `envconfig:"RUN_TESTS_WITH_BROWSER" default:"false"`
	AppiumURL   string `envconfig:"APPIUM_SERVER_URL" default:"http://127.0.0.1:4723/wd/hub"`
	WebURL      string `envconfig:"WEBGL_URL" default:"https://example.com/game"`

	// Where screenshots and captured game logs land, relative to the
	// working directory unless absolute.
	ArtifactsDir string `envconfig:"ARTIFACTS_DIR" default:"screenshots-and-logs"`
}

// FromEnv reads the configuration from environment variables, applying
// defaults for anything unset.
func FromEnv() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to read configuration from environment: %w", err)
	}
	return cfg, nil
}
