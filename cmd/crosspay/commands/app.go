// Package commands provides CLI command implementations for the crosspay engine.
// It contains the serve, schedule, pay, list, cancel, status, and version
// commands with their associated flags and handlers.
package commands

import (
	"fmt"

	"crosspay-engine/infrastructure/config"
	"github.com/spf13/cobra"
)

// App holds state shared by all subcommands. The dependency container is
// built on first use, after cobra has parsed the persistent flags, so
// --config is honored.
type App struct {
	ConfigPath string

	container *config.Container
}

// NewApp creates the shared command state.
func NewApp() *App {
	return &App{}
}

// Container returns the dependency container, building it on first call.
func (a *App) Container() (*config.Container, error) {
	if a.container != nil {
		return a.container, nil
	}

	cfg, err := config.LoadConfig(a.ConfigPath)
	if err != nil {
		return nil, err
	}

	container, err := config.NewContainer(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize: %w", err)
	}

	a.container = container
	return a.container, nil
}

// Close releases the container if one was built.
func (a *App) Close() {
	if a.container != nil {
		_ = a.container.Close()
	}
}

// NewRootCommand creates the root command and registers all subcommands.
func NewRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "crosspay",
		Short: "Asynchronous payment execution and cross-chain routing engine",
		Long: `Crosspay executes payment intents as confirmed on-chain transfers.
A scheduler discovers due payments, a durable worker pool routes and
executes them with retries, bridging funds across chains when needed, and
a confirmation tracker resolves every submitted transaction to a terminal
state.`,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&app.ConfigPath, "config", "c", "", "config file path")

	// Add commands
	rootCmd.AddCommand(
		NewServeCommand(app),
		NewScheduleCommand(app),
		NewPayCommand(app),
		NewListCommand(app),
		NewCancelCommand(app),
		NewStatusCommand(app),
		NewVersionCommand(),
	)

	return rootCmd
}
