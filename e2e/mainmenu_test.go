//go:build e2e

package e2e

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

// MainMenuSuite covers the main menu screen.
type MainMenuSuite struct {
	harnessSuite
}

func TestMainMenu(t *testing.T) {
	suite.Run(t, new(MainMenuSuite))
}

// TestMainMenuLoads verifies the game came up with a scene loaded. It
// should always pass against a healthy build.
func (s *MainMenuSuite) TestMainMenuLoads() {
	s.Harness.Reporter().Log("testing main menu loads successfully", true)

	scene, err := s.MainMenu.CurrentScene()
	s.Require().NoError(err)
	s.Require().NotEmpty(scene, "game did not launch successfully, expected a scene to be loaded")
}

// TestCanStartNewGame walks the happy path from the menu into gameplay.
func (s *MainMenuSuite) TestCanStartNewGame() {
	s.Require().NoError(s.MainMenu.WaitForReady(10 * time.Second))
	s.Require().NoError(s.MainMenu.StartNewGame("TestPlayer"))

	s.Require().NoError(s.Gameplay.WaitForReady(10 * time.Second))
	s.Require().True(s.Gameplay.IsMainCharacterPresent(),
		"main character should be present after starting a new game")
}
