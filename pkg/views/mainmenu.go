package views

import (
	"fmt"
	"time"

	"github.com/driftline/uiharness/pkg/gamedriver"
	"github.com/driftline/uiharness/pkg/harness"
	"github.com/driftline/uiharness/pkg/harness/report"
)

// MainMenuView drives the main menu screen.
type MainMenuView struct {
	BaseView

	playButton      gamedriver.Locator
	menuPanel       gamedriver.Locator
	playerNameInput gamedriver.Locator
	settingsButton  gamedriver.Locator
}

// NewMainMenuView builds the main menu page object.
func NewMainMenuView(drivers *harness.DriverContainer, rep *report.Reporter) *MainMenuView {
	return &MainMenuView{
		BaseView:        NewBaseView(drivers, rep),
		playButton:      gamedriver.Name("PlayButton"),
		menuPanel:       gamedriver.Name("MainMenuPanel"),
		playerNameInput: gamedriver.Name("PlayerNameInput"),
		settingsButton:  gamedriver.Name("SettingsButton"),
	}
}

// WaitForReady blocks until the menu panel is present.
func (v *MainMenuView) WaitForReady(timeout time.Duration) error {
	if _, err := v.WaitForObject(v.menuPanel, timeout, DefaultPoll); err != nil {
		return err
	}
	v.rep.Log("main menu is ready", false)
	return nil
}

// ClickPlayButton clicks the play button.
func (v *MainMenuView) ClickPlayButton() error {
	obj, err := v.FindElement(v.playButton)
	if err != nil {
		return err
	}
	if err := v.Game().Click(obj); err != nil {
		return fmt.Errorf("failed to click play button: %w", err)
	}
	v.settle()
	v.rep.Log("clicked play button", false)
	return nil
}

// IsVisible reports whether the menu panel is present and enabled.
func (v *MainMenuView) IsVisible() bool {
	obj, err := v.Game().FindObject(v.menuPanel)
	if err != nil {
		v.rep.Log("main menu panel not found", false)
		return false
	}
	v.rep.Log(fmt.Sprintf("main menu panel visible: %t", obj.Enabled), false)
	return obj.Enabled
}

// EnterPlayerName types the player name into the name input.
func (v *MainMenuView) EnterPlayerName(name string) error {
	obj, err := v.FindElement(v.playerNameInput)
	if err != nil {
		return err
	}
	if err := v.Game().SetText(obj, name); err != nil {
		return fmt.Errorf("failed to enter player name: %w", err)
	}
	v.rep.Log(fmt.Sprintf("entered player name: %s", name), false)
	return nil
}

// OpenSettings clicks through to the settings screen.
func (v *MainMenuView) OpenSettings() error {
	obj, err := v.FindElement(v.settingsButton)
	if err != nil {
		return err
	}
	if err := v.Game().Click(obj); err != nil {
		return fmt.Errorf("failed to open settings: %w", err)
	}
	v.settle()
	v.rep.Log("navigated to settings", false)
	return nil
}

// StartNewGame waits for the menu, enters the player name and hits play.
func (v *MainMenuView) StartNewGame(playerName string) error {
	if err := v.WaitForReady(DefaultTimeout); err != nil {
		return err
	}
	if !v.IsVisible() {
		return fmt.Errorf("main menu is not visible, cannot start new game")
	}
	if err := v.EnterPlayerName(playerName); err != nil {
		return err
	}
	if err := v.ClickPlayButton(); err != nil {
		return err
	}
	v.rep.Log(fmt.Sprintf("started new game for player: %s", playerName), false)
	return nil
}
