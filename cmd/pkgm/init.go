package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/lerenn/pkgm/cmd/pkgm/internal/cli"
	"github.com/lerenn/pkgm/pkg/fs"
)

func createInitCmd() *cobra.Command {
	var force bool

	initCmd := &cobra.Command{
		Use:   "init [--force]",
		Short: "Initialize pkgm configuration",
		Long: `Write the default configuration file and create the plugin directories it lists.

Flags:
  --force   Overwrite an existing configuration file with the defaults`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			manager := cli.NewConfigManager()
			fsys := fs.NewFS()

			path, err := fsys.ExpandPath(manager.GetConfigPath())
			if err != nil {
				return err
			}
			exists, err := fsys.Exists(path)
			if err != nil {
				return err
			}
			if exists && !force {
				return fmt.Errorf("%w: %s (use --force to overwrite)", errAlreadyInitialized, path)
			}

			cfg := manager.DefaultConfig()
			if err := manager.SaveConfig(cfg); err != nil {
				return err
			}

			for _, dir := range cfg.PluginDirs {
				expanded, err := fsys.ExpandPath(dir)
				if err != nil {
					return err
				}
				// Relative directories belong to projects.
				if !filepath.IsAbs(expanded) {
					continue
				}
				if err := fsys.MkdirAll(expanded, 0o755); err != nil {
					return fmt.Errorf("failed to create plugin directory %s: %w", expanded, err)
				}
			}

			if !cli.Quiet {
				fmt.Fprintf(cmd.OutOrStdout(), "pkgm initialized: %s\n", path)
			}
			return nil
		},
	}

	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing configuration file")

	return initCmd
}
