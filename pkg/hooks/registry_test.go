//go:build unit

package hooks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_EntriesFollowRegistrationOrder(t *testing.T) {
	r := BuildRegistry([]*Plugin{
		pluginWith("/p/a.js", AfterInstall, succeed()),
		pluginWith("/p/b.js", BeforeInstall, succeed()),
		pluginWith("/p/c.lua", AfterInstall, succeed()),
	}, nil)

	entries := r.Entries(AfterInstall)
	require.Len(t, entries, 2)
	assert.Equal(t, "/p/a.js", entries[0].PluginID)
	assert.Equal(t, "/p/c.lua", entries[1].PluginID)

	assert.Empty(t, r.Entries(AfterClean))
	assert.Equal(t, 3, r.Len())
}

func TestRegistry_RejectsInvalidPlugins(t *testing.T) {
	r := NewRegistry(nil)
	assert.ErrorIs(t, r.Register(nil), ErrPluginNil)
	assert.ErrorIs(t, r.Register(NewPlugin("", "test", nil)), ErrPluginIDEmpty)
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_DuplicateReplacesInPlace(t *testing.T) {
	log, logs := newObservedLogger()
	r := NewRegistry(log)

	require.NoError(t, r.Register(pluginWith("/p/a.js", AfterInstall, succeed())))
	require.NoError(t, r.Register(pluginWith("/p/b.js", AfterInstall, succeed())))
	replacement := pluginWith("/p/a.js", AfterInstall, fail("new"))
	require.NoError(t, r.Register(replacement))

	entries := r.Entries(AfterInstall)
	require.Len(t, entries, 2)
	assert.Equal(t, "/p/a.js", entries[0].PluginID)
	assert.Equal(t, "/p/b.js", entries[1].PluginID)

	got, ok := r.Plugin("/p/a.js")
	require.True(t, ok)
	assert.Same(t, replacement, got)
	assert.Equal(t, 1, logs.FilterMessageSnippet("registered twice").Len())
}

func TestRegistry_NoopPluginIsListedButNeverIndexed(t *testing.T) {
	r := BuildRegistry([]*Plugin{NewPlugin("/p/empty.js", "javascript", nil)}, nil)

	require.Len(t, r.Plugins(), 1)
	for _, name := range Names() {
		assert.Empty(t, r.Entries(name))
	}
}

func TestRegistry_EntriesReturnsCopy(t *testing.T) {
	r := BuildRegistry([]*Plugin{pluginWith("/p/a.js", OnCommand, succeed())}, nil)
	entries := r.Entries(OnCommand)
	entries[0].PluginID = "changed"
	assert.Equal(t, "/p/a.js", r.Entries(OnCommand)[0].PluginID)
}
