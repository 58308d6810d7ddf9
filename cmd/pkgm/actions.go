package main

import (
	"github.com/spf13/cobra"

	"github.com/lerenn/pkgm/cmd/pkgm/internal/cli"
	"github.com/lerenn/pkgm/pkg/core"
	"github.com/lerenn/pkgm/pkg/invocation"
	"github.com/lerenn/pkgm/pkg/lifecycle"
)

type actionDoc struct {
	use     string
	aliases []string
	short   string
	long    string
}

var actionDocs = map[core.Action]actionDoc{
	core.Install: {
		use:     "install [packages...]",
		aliases: []string{"i", "add"},
		short:   "Install packages",
		long: `Install the given packages, or every dependency of the project when none is given.

Runs the beforeInstall hooks, the configured core command, then the afterInstall hooks.

Examples:
  pkgm install
  pkgm install left-pad -- --save-dev

Arguments after -- are passed to the core command untouched.`,
	},
	core.Update: {
		use:     "update [packages...]",
		aliases: []string{"up", "upgrade"},
		short:   "Update packages",
		long: `Update the given packages, or every dependency of the project when none is given.

Runs the beforeUpdate hooks, the configured core command, then the afterUpdate hooks.

Examples:
  pkgm update
  pkgm update lodash`,
	},
	core.Uninstall: {
		use:     "uninstall <packages...>",
		aliases: []string{"remove", "rm"},
		short:   "Uninstall packages",
		long: `Remove the given packages from the project.

Runs the beforeUninstall hooks, the configured core command, then the afterUninstall hooks.

Examples:
  pkgm uninstall left-pad`,
	},
	core.Audit: {
		use:   "audit",
		short: "Audit installed packages",
		long: `Audit the installed packages for known problems.

Runs the beforeAudit hooks, the configured core command, then the afterAudit hooks. Audit hooks
run in parallel by default (see hooks.parallel in the configuration).

Examples:
  pkgm audit
  pkgm audit --verbose`,
	},
	core.Clean: {
		use:   "clean",
		short: "Remove caches and build artifacts",
		long: `Remove caches and build artifacts of the project.

Runs the beforeClean hooks, the configured core command, then the afterClean hooks.

Examples:
  pkgm clean`,
	},
}

func createActionCmds() []*cobra.Command {
	cmds := make([]*cobra.Command, 0, len(core.Actions()))
	for _, action := range core.Actions() {
		cmds = append(cmds, createActionCmd(action))
	}
	return cmds
}

func createActionCmd(action core.Action) *cobra.Command {
	doc := actionDocs[action]

	var args cobra.PositionalArgs = cobra.ArbitraryArgs
	switch action {
	case core.Uninstall:
		args = cobra.MinimumNArgs(1)
	case core.Audit, core.Clean:
		args = cobra.NoArgs
	}

	return &cobra.Command{
		Use:     doc.use,
		Aliases: doc.aliases,
		Short:   doc.short,
		Long:    doc.long,
		Args:    args,
		RunE: func(cmd *cobra.Command, positional []string) error {
			engine, err := cli.NewEngine()
			if err != nil {
				return err
			}

			return engine.Runner.Run(cmd.Context(), lifecycle.Request{
				Action: action,
				Args:   positional,
				Flags:  invocation.Flags{Verbose: cli.Verbose},
			})
		},
	}
}
