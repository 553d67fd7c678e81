package views

import (
	"fmt"
	"time"

	"github.com/driftline/uiharness/pkg/gamedriver"
	"github.com/driftline/uiharness/pkg/harness"
	"github.com/driftline/uiharness/pkg/harness/report"
)

// GameplayView drives the in-game screen.
type GameplayView struct {
	BaseView

	pauseButton   gamedriver.Locator
	resumeButton  gamedriver.Locator
	mainCharacter gamedriver.Locator
	gameHUD       gamedriver.Locator
}

// NewGameplayView builds the gameplay page object.
func NewGameplayView(drivers *harness.DriverContainer, rep *report.Reporter) *GameplayView {
	return &GameplayView{
		BaseView:      NewBaseView(drivers, rep),
		pauseButton:   gamedriver.Name("PauseButton"),
		resumeButton:  gamedriver.Name("ResumeButton"),
		mainCharacter: gamedriver.Name("MainCharacter"),
		gameHUD:       gamedriver.Name("GameHUD"),
	}
}

// WaitForReady blocks until the HUD is present.
func (v *GameplayView) WaitForReady(timeout time.Duration) error {
	if _, err := v.WaitForObject(v.gameHUD, timeout, DefaultPoll); err != nil {
		return err
	}
	v.rep.Log("gameplay is ready", false)
	return nil
}

// PauseGame clicks the pause button.
func (v *GameplayView) PauseGame() error {
	obj, err := v.FindElement(v.pauseButton)
	if err != nil {
		return err
	}
	if err := v.Game().Click(obj); err != nil {
		return fmt.Errorf("failed to pause the game: %w", err)
	}
	v.settle()
	v.rep.Log("game paused", false)
	return nil
}

// ResumeGame clicks the resume button on the pause overlay.
func (v *GameplayView) ResumeGame() error {
	obj, err := v.FindElement(v.resumeButton)
	if err != nil {
		return err
	}
	if err := v.Game().Click(obj); err != nil {
		return fmt.Errorf("failed to resume the game: %w", err)
	}
	v.settle()
	v.rep.Log("game resumed", false)
	return nil
}

// IsPaused reports whether the pause overlay's resume button is showing.
// Lookup errors collapse to false.
func (v *GameplayView) IsPaused() bool {
	obj, err := v.Game().FindObject(v.resumeButton)
	if err != nil {
		v.rep.Log("resume button not found, game is not paused", false)
		return false
	}
	v.rep.Log(fmt.Sprintf("game paused: %t", obj.Enabled), false)
	return obj.Enabled
}

// IsMainCharacterPresent reports whether the main character is in the scene
// and enabled. Lookup errors collapse to false.
func (v *GameplayView) IsMainCharacterPresent() bool {
	obj, err := v.Game().FindObject(v.mainCharacter)
	if err != nil {
		v.rep.Log("main character not found", false)
		return false
	}
	v.rep.Log(fmt.Sprintf("main character present: %t", obj.Enabled), false)
	return obj.Enabled
}

// MainCharacterPosition returns the character's world position.
func (v *GameplayView) MainCharacterPosition() (x, y, z float64, err error) {
	obj, err := v.FindElement(v.mainCharacter)
	if err != nil {
		return 0, 0, 0, err
	}
	v.rep.Log(fmt.Sprintf("main character position: %g, %g, %g", obj.X, obj.Y, obj.Z), false)
	return obj.X, obj.Y, obj.Z, nil
}

// IsHUDVisible reports whether the HUD is present and enabled. Lookup
// errors collapse to false.
func (v *GameplayView) IsHUDVisible() bool {
	obj, err := v.Game().FindObject(v.gameHUD)
	if err != nil {
		v.rep.Log("gameplay HUD not found", false)
		return false
	}
	v.rep.Log(fmt.Sprintf("gameplay HUD visible: %t", obj.Enabled), false)
	return obj.Enabled
}
