//go:build unit || integration

package javascript

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/lerenn/pkgm/pkg/fs"
	"github.com/lerenn/pkgm/pkg/hooks"
	"github.com/lerenn/pkgm/pkg/invocation"
	"github.com/lerenn/pkgm/pkg/logger"
	"github.com/lerenn/pkgm/pkg/plugins"
)

func writePlugin(t *testing.T, name, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func openPlugin(t *testing.T, src string) (plugins.Export, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	rt := NewRuntime(fs.NewFS(), logger.NewFromZap(zap.New(core)))
	export, err := rt.Open(writePlugin(t, "plugin.js", src))
	require.NoError(t, err)
	return export, logs
}

func handlerFor(t *testing.T, export plugins.Export, key string) hooks.Handler {
	t.Helper()
	for _, entry := range export.Entries {
		if entry.Key == key {
			require.NotNil(t, entry.Handler, "%s is not callable", key)
			return entry.Handler
		}
	}
	t.Fatalf("export %s not found", key)
	return nil
}

func newCall(t *testing.T, name hooks.Name) (hooks.Call, *invocation.Context) {
	t.Helper()
	ictx, err := invocation.NewBuilder(fs.NewFS()).Build("install", []string{"lodash", "react"}, t.TempDir(), invocation.Flags{Verbose: true})
	require.NoError(t, err)
	return hooks.Call{
		Hook:     name,
		PluginID: "/plugins/plugin.js",
		Command:  ictx.Command(),
		Args:     ictx.Args(),
		Context:  hooks.CallContext{Cwd: ictx.Cwd(), Verbose: ictx.Verbose()},
		Scope:    ictx.Scope("/plugins/plugin.js"),
	}, ictx
}

func invoke(ctx context.Context, h hooks.Handler, call hooks.Call) error {
	return <-h.Invoke(ctx, call)
}
