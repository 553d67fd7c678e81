//go:build e2e

// Package e2e provides end-to-end UI tests against a live game build.
//
// These tests are isolated from the standard test suite via build tags.
// They require a running game with the automation server enabled (and,
// depending on configuration, an Appium server or a Chrome install for the
// WebGL build).
//
// Running E2E tests:
//
//	go test -tags=e2e ./e2e/...
//
// Running all tests except E2E:
//
//	go test ./...
//
// Configuration comes from the environment (see harness.Config):
// GAME_SERVER_HOST/PORT, TEST_PLATFORM, RUN_TESTS_WITH_APPIUM,
// RUN_TESTS_WITH_BROWSER, WEBGL_URL and friends.
//
// Test isolation:
// Each suite provisions its own driver set and tears it down, including
// after failed setup. Screenshots and captured game logs land under the
// screenshots-and-logs directory.
package e2e
