// Package plugins provides plugin inspection commands for the pkgm CLI.
package plugins

import (
	"github.com/spf13/cobra"
)

// CreatePluginsCmd creates the plugins command with its subcommands.
func CreatePluginsCmd() *cobra.Command {
	pluginsCmd := &cobra.Command{
		Use:     "plugins",
		Aliases: []string{"plugin", "p"},
		Short:   "Inspect installed plugins",
		Long:    `Commands to inspect the plugins pkgm discovers.`,
	}

	pluginsCmd.AddCommand(createListCmd())

	return pluginsCmd
}
