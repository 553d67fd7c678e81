// gamecheck is a connectivity smoke tool for the game automation endpoint.
//
// Before debugging a red CI run, point it at the build under test:
//
//	gamecheck --host 127.0.0.1 --port 13000
//
// It connects the same way the e2e harness does, prints the current scene
// and can save a screenshot, so "is the game reachable at all" is a
// one-command question.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/driftline/uiharness/pkg/gamedriver"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		host       string
		port       int
		appName    string
		timeout    time.Duration
		screenshot string
	)

	cmd := &cobra.Command{
		Use:   "gamecheck",
		Short: "Check connectivity to the game automation endpoint",
		Long: `gamecheck connects to the game's automation server the same way the
e2e harness does, reports the current scene and optionally saves a
screenshot of the viewport.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := zap.NewDevelopment()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			log.Info("connecting to the game",
				zap.String("host", host),
				zap.Int("port", port),
				zap.String("app", appName))

			client, err := gamedriver.Connect(gamedriver.ConnectConfig{
				Host:           host,
				Port:           port,
				AppName:        appName,
				ConnectTimeout: timeout,
			})
			if err != nil {
				return err
			}
			defer func() {
				if err := client.Close(); err != nil {
					log.Warn("error closing connection", zap.Error(err))
				}
			}()

			scene, err := client.CurrentScene()
			if err != nil {
				return fmt.Errorf("connected, but failed to read the current scene: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "connected: current scene is %q\n", scene)

			if screenshot != "" {
				png, err := client.Screenshot()
				if err != nil {
					return fmt.Errorf("failed to capture screenshot: %w", err)
				}
				if err := os.WriteFile(screenshot, png, 0o644); err != nil {
					return fmt.Errorf("failed to write %s: %w", screenshot, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "screenshot saved to %s\n", screenshot)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&host, "host", "127.0.0.1", "automation server host")
	cmd.Flags().IntVar(&port, "port", 13000, "automation server port")
	cmd.Flags().StringVar(&appName, "app", "__default__", "app instance to attach to")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "connect timeout")
	cmd.Flags().StringVar(&screenshot, "screenshot", "", "save a viewport screenshot to this path")

	return cmd
}
