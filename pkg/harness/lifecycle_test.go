package harness

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/driftline/uiharness/pkg/gamedriver"
	"github.com/driftline/uiharness/pkg/harness/testutil"
)

// fixtures bundles the fakes a lifecycle test wires into Start.
type fixtures struct {
	game    *testutil.FakeDriver
	mobile  *testutil.FakeMobile
	browser *testutil.FakeBrowser
	sink    *testutil.MemorySink
}

func newFixtures() *fixtures {
	return &fixtures{
		game:    &testutil.FakeDriver{Scene: "MainMenu", ScreenshotPNG: []byte("png")},
		mobile:  &testutil.FakeMobile{},
		browser: &testutil.FakeBrowser{},
		sink:    &testutil.MemorySink{},
	}
}

func (f *fixtures) opts() []Option {
	return []Option{
		WithLogger(zap.NewNop()),
		WithSink(f.sink),
		WithGameDialer(func(Config) (gamedriver.Driver, error) { return f.game, nil }),
		WithMobileDialer(func(Config) (MobileDriver, error) { return f.mobile, nil }),
		WithBrowserDialer(func(Config) (BrowserDriver, error) { return f.browser, nil }),
	}
}

func testConfig(t *testing.T) Config {
	t.Helper()
	return Config{
		ServerHost:   "127.0.0.1",
		ServerPort:   13000,
		AppName:      "test",
		Platform:     Android,
		WebURL:       "http://localhost:9000/game",
		ArtifactsDir: t.TempDir(),
	}
}

func TestStart_PrimaryOnly(t *testing.T) {
	f := newFixtures()
	cfg := testConfig(t)

	h, err := Start("MenuSuite", cfg, f.opts()...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Stop() })

	assert.Same(t, f.game, h.Drivers.Game)
	assert.Nil(t, h.Drivers.Mobile)
	assert.Nil(t, h.Drivers.Browser)
}

func TestStart_MobileEnabled(t *testing.T) {
	f := newFixtures()
	cfg := testConfig(t)
	cfg.WithAppium = true

	h, err := Start("MenuSuite", cfg, f.opts()...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Stop() })

	require.NotNil(t, h.Drivers.Mobile)
}

func TestStart_MobileUnsupportedOnWebGL(t *testing.T) {
	f := newFixtures()
	cfg := testConfig(t)
	cfg.Platform = WebGL
	cfg.WithAppium = true

	h, err := Start("MenuSuite", cfg, f.opts()...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Stop() })

	assert.Nil(t, h.Drivers.Mobile)
	assert.True(t, stepsContain(f.sink.Steps(), "not supported"))
}

func TestStart_BrowserOnWebGLNavigates(t *testing.T) {
	f := newFixtures()
	cfg := testConfig(t)
	cfg.Platform = WebGL
	cfg.WithBrowser = true

	h, err := Start("MenuSuite", cfg, f.opts()...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Stop() })

	require.NotNil(t, h.Drivers.Browser)
	assert.Equal(t, []string{"http://localhost:9000/game"}, f.browser.NavigatedTo)
}

func TestStart_BrowserSkippedOffWebGL(t *testing.T) {
	f := newFixtures()
	cfg := testConfig(t)
	cfg.WithBrowser = true // platform stays android

	h, err := Start("MenuSuite", cfg, f.opts()...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Stop() })

	assert.Nil(t, h.Drivers.Browser)
}

func TestStart_GameConnectFailureReportsCause(t *testing.T) {
	f := newFixtures()
	cfg := testConfig(t)
	cfg.WithAppium = true

	cause := errors.New("connection refused")
	opts := f.opts()
	opts = append(opts, WithGameDialer(func(Config) (gamedriver.Driver, error) { return nil, cause }))

	h, err := Start("MenuSuite", cfg, opts...)
	require.Error(t, err)
	require.NotNil(t, h, "harness must be returned so deferred Stop can run")
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "failed to connect to the game")

	// The mobile driver started before the failure; Stop must release it.
	_ = h.Stop()
	assert.Equal(t, 1, f.mobile.QuitCalls)
}

func TestStop_IndependentPerDriver(t *testing.T) {
	f := newFixtures()
	f.game.CloseErr = errors.New("game hung")
	f.browser.CloseErr = errors.New("browser hung")

	cfg := testConfig(t)
	cfg.Platform = WebGL
	cfg.WithBrowser = true

	h, err := Start("MenuSuite", cfg, f.opts()...)
	require.NoError(t, err)
	// Mobile is unsupported on webgl; attach one by hand to prove the
	// third stop is still attempted after the first two fail.
	h.Drivers.Mobile = f.mobile

	stopErr := h.Stop()

	assert.Equal(t, 1, f.game.CloseCalls)
	assert.Equal(t, 1, f.browser.CloseCalls)
	assert.Equal(t, 1, f.mobile.QuitCalls)

	require.Error(t, stopErr)
	assert.Contains(t, stopErr.Error(), "game hung")
	assert.Contains(t, stopErr.Error(), "browser hung")
}

func TestStop_Idempotent(t *testing.T) {
	f := newFixtures()
	h, err := Start("MenuSuite", testConfig(t), f.opts()...)
	require.NoError(t, err)

	require.NoError(t, h.Stop())
	require.NoError(t, h.Stop())
	assert.Equal(t, 1, f.game.CloseCalls)
}

func TestStop_FlushesGameLogs(t *testing.T) {
	f := newFixtures()
	cfg := testConfig(t)

	h, err := Start("MenuSuite", cfg, f.opts()...)
	require.NoError(t, err)

	f.game.EmitLog(gamedriver.LogNotification{Message: "first", StackTrace: "st1"})
	f.game.EmitLog(gamedriver.LogNotification{Message: "second", StackTrace: "st2"})

	require.NoError(t, h.Stop())

	var logAtt *testutil.Attachment
	atts := f.sink.Attachments()
	for i := range atts {
		if strings.Contains(atts[i].Name, "MenuSuite-Logs-") {
			logAtt = &atts[i]
			break
		}
	}
	require.NotNil(t, logAtt, "expected a game log attachment")

	body := string(logAtt.Body)
	firstIdx := strings.Index(body, "first")
	secondIdx := strings.Index(body, "second")
	require.GreaterOrEqual(t, firstIdx, 0)
	require.Greater(t, secondIdx, firstIdx, "notifications must be flushed in arrival order")
	assert.Contains(t, body, "StackTrace : st1")
}

func TestOnTestFailure_CapturesNamedScreenshot(t *testing.T) {
	f := newFixtures()
	cfg := testConfig(t)

	h, err := Start("MenuSuite", cfg, f.opts()...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Stop() })

	h.OnTestFailure("TestCanStartNewGame")

	_, statErr := os.Stat(filepath.Join(cfg.ArtifactsDir, "TestCanStartNewGame_Failed.png"))
	assert.NoError(t, statErr)

	names := attachmentNames(f.sink.Attachments())
	assert.Contains(t, names, "TestCanStartNewGame_Failed.png")
}

func TestOnTestFailure_NoDriverNeverPanics(t *testing.T) {
	f := newFixtures()
	cfg := testConfig(t)

	opts := f.opts()
	opts = append(opts, WithGameDialer(func(Config) (gamedriver.Driver, error) {
		return nil, errors.New("unreachable")
	}))

	h, err := Start("MenuSuite", cfg, opts...)
	require.Error(t, err)

	require.NotPanics(t, func() { h.OnTestFailure("TestAnything") })
	assert.NotContains(t, attachmentNames(f.sink.Attachments()), "TestAnything_Failed.png")
}

func stepsContain(steps []string, substr string) bool {
	for _, s := range steps {
		if strings.Contains(s, substr) {
			return true
		}
	}
	return false
}

func attachmentNames(atts []testutil.Attachment) []string {
	names := make([]string, 0, len(atts))
	for _, a := range atts {
		names = append(names, a.Name)
	}
	return names
}
