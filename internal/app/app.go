// Package app provides the application context for kolibri-server-ctl.
// It allows dependency injection for testing.
package app

import (
	"github.com/learningequality/kolibri-server-ctl/internal/config"
	"github.com/learningequality/kolibri-server-ctl/internal/logging"
	"github.com/learningequality/kolibri-server-ctl/internal/options"
	"github.com/learningequality/kolibri-server-ctl/internal/system"
)

// App holds the application dependencies
type App struct {
	// Paths holds the resolved file locations
	Paths *config.Paths

	// Tool is the host-level tool configuration
	Tool *config.ToolConfig

	// FS is the filesystem used for all file side effects
	FS system.FileSystem

	// Exec runs all external processes
	Exec system.CommandExecutor
}

// Option is a function that configures the App
type Option func(*App)

// WithPaths sets custom paths
func WithPaths(paths *config.Paths) Option {
	return func(a *App) {
		a.Paths = paths
	}
}

// WithToolConfig sets a custom tool config
func WithToolConfig(tool *config.ToolConfig) Option {
	return func(a *App) {
		a.Tool = tool
	}
}

// WithFS sets a custom filesystem
func WithFS(fs system.FileSystem) Option {
	return func(a *App) {
		a.FS = fs
	}
}

// WithExecutor sets a custom command executor
func WithExecutor(exec system.CommandExecutor) Option {
	return func(a *App) {
		a.Exec = exec
	}
}

// New creates a new App with the given options. Unset dependencies fall
// back to the real OS implementations, the tool config on disk, and paths
// derived from it.
func New(opts ...Option) *App {
	app := &App{}

	for _, opt := range opts {
		opt(app)
	}

	if app.FS == nil {
		app.FS = system.DefaultFS()
	}
	if app.Exec == nil {
		app.Exec = system.DefaultExecutor()
	}

	if app.Tool == nil {
		tool, err := config.LoadToolConfig(app.FS, config.DefaultToolConfigPath)
		if err != nil {
			logging.Debug("failed to load tool config, using defaults", "error", err)
			tool = config.DefaultToolConfig()
		}
		app.Tool = tool
	}

	if app.Paths == nil {
		paths, err := config.ResolvePaths(app.Tool)
		if err != nil {
			logging.Debug("failed to resolve paths from tool config", "error", err)
			paths, _ = config.NewPaths(config.DefaultHome(), "")
		}
		app.Paths = paths
	}

	return app
}

// Options returns a store over the deployment options file.
func (a *App) Options() *options.Store {
	return options.NewStore(a.FS, a.Paths.OptionsPath)
}

// Default is the default application instance
var Default = New()

// SetDefault sets the default application instance (used for testing)
func SetDefault(app *App) {
	Default = app
}

// ResetDefault resets to the default application instance
func ResetDefault() {
	Default = New()
}
