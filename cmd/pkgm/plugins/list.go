package plugins

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lerenn/pkgm/cmd/pkgm/internal/cli"
	"github.com/lerenn/pkgm/pkg/hooks"
	"github.com/lerenn/pkgm/pkg/invocation"
)

func createListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List discovered plugins and their hooks",
		Long: `List every plugin in discovery order with the hooks it implements.

Bundled plugins come first, then the files of each plugin directory in name order. Files that
failed to load are reported after the list.

Examples:
  pkgm plugins list
  pkgm plugins list --plugin-dir ./plugins`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			engine, err := cli.NewEngine()
			if err != nil {
				return err
			}
			flags := invocation.Flags{Verbose: cli.Verbose}
			if err := engine.Runner.Dispatch(cmd.Context(), "plugins list", nil, flags); err != nil {
				return err
			}

			displayPlugins(cmd.OutOrStdout(), engine.Registry.Plugins())
			displayLoadErrors(cmd.ErrOrStderr(), engine.LoadErrors)
			return nil
		},
	}
}

func displayPlugins(w io.Writer, plugs []*hooks.Plugin) {
	if len(plugs) == 0 {
		fmt.Fprintln(w, "No plugins found.")
		return
	}

	for _, p := range plugs {
		names := p.Hooks()
		if len(names) == 0 {
			fmt.Fprintf(w, "  %s (%s): no hooks\n", p.ID, p.Runtime)
			continue
		}

		parts := make([]string, len(names))
		for i, name := range names {
			parts[i] = name.String()
		}
		fmt.Fprintf(w, "  %s (%s): %s\n", p.ID, p.Runtime, strings.Join(parts, ", "))
	}
}

func displayLoadErrors(w io.Writer, errs []error) {
	if len(errs) == 0 {
		return
	}

	fmt.Fprintf(w, "\n%d plugin(s) failed to load:\n", len(errs))
	for _, err := range errs {
		fmt.Fprintf(w, "  %v\n", err)
	}
}
