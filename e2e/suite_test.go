//go:build e2e

package e2e

import (
	"strings"

	"github.com/stretchr/testify/suite"

	"github.com/driftline/uiharness/pkg/harness"
	"github.com/driftline/uiharness/pkg/views"
)

// harnessSuite is the base for every e2e suite: one driver set per suite,
// torn down exactly once regardless of how setup went, with a screenshot
// captured for each failing test.
type harnessSuite struct {
	suite.Suite

	Harness  *harness.Harness
	MainMenu *views.MainMenuView
	Gameplay *views.GameplayView
}

func (s *harnessSuite) SetupSuite() {
	cfg, err := harness.FromEnv()
	s.Require().NoError(err, "failed to read configuration from environment")

	h, err := harness.Start(s.T().Name(), cfg)
	// Keep the handle even when setup failed so TearDownSuite can release
	// whatever did start.
	s.Harness = h
	s.Require().NoError(err, "exception during driver setup")

	s.MainMenu = views.NewMainMenuView(h.Drivers, h.Reporter())
	s.Gameplay = views.NewGameplayView(h.Drivers, h.Reporter())
}

func (s *harnessSuite) TearDownSuite() {
	if s.Harness == nil {
		return
	}
	if err := s.Harness.Stop(); err != nil {
		// Teardown problems are diagnostics, never test failures.
		s.T().Logf("teardown: %v", err)
	}
}

func (s *harnessSuite) TearDownTest() {
	if s.Harness == nil || !s.T().Failed() {
		return
	}
	s.Harness.OnTestFailure(testBaseName(s.T().Name()))
}

// testBaseName strips the suite prefix from a subtest name so screenshot
// files get a clean "TestX_Failed.png" name.
func testBaseName(name string) string {
	if i := strings.LastIndex(name, "/"); i >= 0 {
		return name[i+1:]
	}
	return name
}
