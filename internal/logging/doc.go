// Package logging provides the structured logger shared by the CLI, the
// player and the web server. It wraps zerolog behind a small interface so
// components can be handed a no-op logger in tests and in the full-screen TUI.
package logging
