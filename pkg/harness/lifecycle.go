package harness

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/driftline/uiharness/pkg/gamedriver"
	"github.com/driftline/uiharness/pkg/harness/report"
)

// options collects the injectable pieces of a Harness. Defaults build the
// real drivers; tests swap in fakes through the With* options.
type options struct {
	logger     *zap.Logger
	sink       report.Sink
	browserCfg BrowserConfig

	gameDial    func(Config) (gamedriver.Driver, error)
	mobileDial  func(Config) (MobileDriver, error)
	browserDial func(Config) (BrowserDriver, error)
}

// Option customizes Start.
type Option func(*options)

// WithLogger sets the logger used by the harness and reporter.
func WithLogger(log *zap.Logger) Option {
	return func(o *options) { o.logger = log }
}

// WithSink sets the report sink. Default: a DirSink under the artifacts
// directory.
func WithSink(sink report.Sink) Option {
	return func(o *options) { o.sink = sink }
}

// WithBrowserConfig overrides browser launch options for the default
// browser dialer.
func WithBrowserConfig(cfg BrowserConfig) Option {
	return func(o *options) { o.browserCfg = cfg }
}

// WithGameDialer replaces how the primary game driver is established.
func WithGameDialer(dial func(Config) (gamedriver.Driver, error)) Option {
	return func(o *options) { o.gameDial = dial }
}

// WithMobileDialer replaces how the mobile driver is established.
func WithMobileDialer(dial func(Config) (MobileDriver, error)) Option {
	return func(o *options) { o.mobileDial = dial }
}

// WithBrowserDialer replaces how the browser driver is established.
func WithBrowserDialer(dial func(Config) (BrowserDriver, error)) Option {
	return func(o *options) { o.browserDial = dial }
}

// Harness owns the driver set for one test class: it starts them in order,
// captures game logs for the duration, and guarantees teardown plus report
// flushing regardless of how setup or the tests went.
type Harness struct {
	cfg     Config
	log     *zap.Logger
	rep     *report.Reporter
	logs    *gameLogBuffer
	class   string
	Drivers *DriverContainer

	mu      sync.Mutex
	stopped bool
}

// Start provisions the drivers for a test class:
//
//  1. Mobile driver, when RUN_TESTS_WITH_APPIUM is set and the platform has
//     mobile support.
//  2. Browser driver, when RUN_TESTS_WITH_BROWSER is set and the platform
//     is webgl; it is pointed at the configured game URL.
//  3. The primary game driver, unconditionally. Its screenshot handle is
//     registered with the reporter and a listener starts capturing pushed
//     game logs into a per-run file.
//
// Any failure aborts setup immediately; there is no partial-start retry.
// Once driver startup has begun the Harness is returned even on error, so a
// deferred Stop can release whatever did start.
func Start(className string, cfg Config, opts ...Option) (*Harness, error) {
	o := options{browserCfg: DefaultBrowserConfig()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		log, err := zap.NewDevelopment()
		if err != nil {
			return nil, fmt.Errorf("failed to build logger: %w", err)
		}
		o.logger = log
	}
	if o.sink == nil {
		sink, err := report.NewDirSink(cfg.ArtifactsDir)
		if err != nil {
			return nil, err
		}
		o.sink = sink
	}
	if o.gameDial == nil {
		o.gameDial = dialGame
	}
	if o.mobileDial == nil {
		o.mobileDial = func(cfg Config) (MobileDriver, error) { return NewMobileSession(cfg) }
	}
	if o.browserDial == nil {
		browserCfg := o.browserCfg
		o.browserDial = func(cfg Config) (BrowserDriver, error) { return NewBrowserClient(browserCfg) }
	}

	h := &Harness{
		cfg:     cfg,
		log:     o.logger,
		rep:     report.New(o.logger, o.sink, cfg.ArtifactsDir),
		logs:    newGameLogBuffer(cfg.ArtifactsDir, className, time.Now().Format("20060102_150405")),
		class:   className,
		Drivers: &DriverContainer{},
	}

	h.rep.Log("setting up test environment", false)
	h.rep.Log(fmt.Sprintf("platform: %s", cfg.Platform), false)
	h.rep.Log(fmt.Sprintf("running with mobile driver: %t", cfg.WithAppium), false)
	h.rep.Log(fmt.Sprintf("running with browser driver: %t", cfg.WithBrowser), false)

	if cfg.WithAppium {
		switch cfg.Platform {
		case Android, IOS:
			mobile, err := o.mobileDial(cfg)
			if err != nil {
				return h, fmt.Errorf("failed to start mobile driver: %w", err)
			}
			h.Drivers.Mobile = mobile
			h.rep.Log("mobile driver started", false)
		default:
			h.rep.Log(fmt.Sprintf("mobile driver not supported on platform %s", cfg.Platform), false)
		}
	}

	if cfg.WithBrowser {
		if cfg.Platform == WebGL {
			browser, err := o.browserDial(cfg)
			if err != nil {
				return h, fmt.Errorf("failed to start browser driver: %w", err)
			}
			h.Drivers.Browser = browser
			if err := browser.Navigate(cfg.WebURL); err != nil {
				return h, fmt.Errorf("failed to open game URL: %w", err)
			}
			h.rep.Log(fmt.Sprintf("browser driver started at %s", cfg.WebURL), false)
		} else {
			h.rep.Log(fmt.Sprintf("browser driver not needed on platform %s", cfg.Platform), false)
		}
	}

	h.rep.Log(fmt.Sprintf("connecting to the game at %s:%d", cfg.ServerHost, cfg.ServerPort), false)
	game, err := o.gameDial(cfg)
	if err != nil {
		return h, fmt.Errorf("failed to connect to the game: %w", err)
	}
	h.Drivers.Game = game
	h.rep.SetScreenshotter(game)
	h.rep.Log("successfully connected to the game", false)

	// The listener runs on the driver's delivery goroutine; the buffer
	// serializes its own writes.
	game.OnLogNotification(func(n gamedriver.LogNotification) {
		if err := h.logs.record(n); err != nil {
			o.logger.Warn("failed to record game log", zap.Error(err))
		}
	})

	h.rep.Log("all drivers started successfully", false)
	return h, nil
}

// dialGame is the default game dialer, connecting over the automation
// websocket.
func dialGame(cfg Config) (gamedriver.Driver, error) {
	return gamedriver.Connect(gamedriver.ConnectConfig{
		Host:           cfg.ServerHost,
		Port:           cfg.ServerPort,
		AppName:        cfg.AppName,
		ConnectTimeout: cfg.ConnectTimeout,
	})
}

// Reporter returns the class-scoped reporter.
func (h *Harness) Reporter() *report.Reporter {
	return h.rep
}

// Config returns the configuration the harness was started with.
func (h *Harness) Config() Config {
	return h.cfg
}

// Stop tears the class down: each started driver is stopped independently —
// one driver failing to stop never prevents the next attempt — then the
// buffered game logs are flushed into the report and cleared. Failures are
// logged, not fatal; the aggregate error is returned for observability
// only. Safe to call after a failed Start, and idempotent.
func (h *Harness) Stop() error {
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		return nil
	}
	h.stopped = true
	h.mu.Unlock()

	var errs error
	if h.Drivers.Game != nil {
		if err := h.Drivers.Game.Close(); err != nil {
			h.rep.Log(fmt.Sprintf("error stopping game driver: %v", err), false)
			errs = multierr.Append(errs, err)
		}
	}
	if h.Drivers.Browser != nil {
		if err := h.Drivers.Browser.Close(); err != nil {
			h.rep.Log(fmt.Sprintf("error stopping browser driver: %v", err), false)
			errs = multierr.Append(errs, err)
		}
	}
	if h.Drivers.Mobile != nil {
		if err := h.Drivers.Mobile.Quit(); err != nil {
			h.rep.Log(fmt.Sprintf("error stopping mobile driver: %v", err), false)
			errs = multierr.Append(errs, err)
		}
	}

	h.logs.flush(h.rep)
	h.rep.Log("all drivers stopped and cleanup completed", false)
	return errs
}

// OnTestFailure captures a screenshot named {testName}_Failed and attaches
// it to the report. Never fails: with no game driver established it only
// warns.
func (h *Harness) OnTestFailure(testName string) {
	h.rep.Log(fmt.Sprintf("test %s failed, capturing screenshot", testName), false)
	h.rep.TakeScreenshot(testName + "_Failed")
}
