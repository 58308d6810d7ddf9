// Package main provides the command-line interface for pkgm.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/lerenn/pkgm/cmd/pkgm/internal/cli"
	"github.com/lerenn/pkgm/cmd/pkgm/plugins"
	"github.com/lerenn/pkgm/pkg/core"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pkgm",
		Short: "pkgm - package manager with lifecycle plugins",
		Long: `A package manager front-end that runs third-party plugins around every action.

Plugins are JavaScript, Lua or command manifest files found in the configured plugin
directories. Each may implement any of the lifecycle hooks: onCommand, beforeInstall,
afterInstall, beforeUninstall, afterUninstall, beforeUpdate, afterUpdate, beforeAudit,
afterAudit, beforeClean and afterClean.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Add global flags
	rootCmd.PersistentFlags().BoolVarP(&cli.Quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVarP(&cli.Verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&cli.ConfigPath, "config", "c", "", "Specify a custom config file path")
	rootCmd.PersistentFlags().StringArrayVar(&cli.PluginDirs, "plugin-dir", nil,
		"Scan this plugin directory instead of the configured ones (repeatable)")

	rootCmd.AddCommand(createActionCmds()...)
	rootCmd.AddCommand(plugins.CreatePluginsCmd(), createInitCmd())

	return rootCmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		log.Print(err)
		os.Exit(core.ExitCode(err))
	}
}
