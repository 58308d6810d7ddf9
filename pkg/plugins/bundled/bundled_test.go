//go:build unit

package bundled

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/lerenn/pkgm/pkg/fs"
	"github.com/lerenn/pkgm/pkg/hooks"
	"github.com/lerenn/pkgm/pkg/logger"
)

func TestNew(t *testing.T) {
	plugins := New(Params{})
	require.Len(t, plugins, 1)
	assert.Equal(t, LoggingID, plugins[0].ID)

	plugins = New(Params{HistoryFile: "~/.pkgm/history"})
	require.Len(t, plugins, 2)
	assert.Equal(t, HistoryID, plugins[1].ID)
	assert.Equal(t, []hooks.Name{hooks.AfterInstall, hooks.AfterUninstall, hooks.AfterUpdate, hooks.AfterClean}, plugins[1].Hooks())
}

func TestLoggingPlugin(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	p := NewLoggingPlugin(logger.NewFromZap(zap.New(core)))
	assert.Equal(t, hooks.Names(), p.Hooks())

	call := hooks.Call{Command: "install", Args: []string{"lodash"}, Context: hooks.CallContext{Cwd: "/work"}}
	for _, name := range []hooks.Name{hooks.OnCommand, hooks.BeforeInstall, hooks.AfterInstall} {
		h, ok := p.Handler(name)
		require.True(t, ok)
		call.Hook = name
		require.NoError(t, <-h.Invoke(context.Background(), call))
	}

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, "Dispatching install with args [lodash] in /work", entries[0].Message)
	assert.Equal(t, "Starting operation: install with args [lodash]", entries[1].Message)
	assert.Equal(t, "Operation finished: install", entries[2].Message)
	assert.Equal(t, LoggingID, entries[0].ContextMap()["plugin"])
}

func TestHistoryPlugin_AppendsUnderLock(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockFS := fs.NewMockFS(ctrl)

	unlocked := false
	gomock.InOrder(
		mockFS.EXPECT().ExpandPath("~/.pkgm/history").Return("/home/user/.pkgm/history", nil),
		mockFS.EXPECT().FileLock("/home/user/.pkgm/history").Return(func() { unlocked = true }, nil),
		mockFS.EXPECT().AppendFile(
			"/home/user/.pkgm/history",
			[]byte("2025-03-04T05:06:07Z\tinstall\tlodash react\n"),
			gomock.Any(),
		).Return(nil),
	)

	at := time.Date(2025, 3, 4, 6, 6, 7, 0, time.FixedZone("CET", 3600))
	p := newHistoryPlugin(mockFS, "~/.pkgm/history", logger.NewNoopLogger(), func() time.Time { return at })
	h, ok := p.Handler(hooks.AfterInstall)
	require.True(t, ok)

	err := <-h.Invoke(context.Background(), hooks.Call{Command: "install", Args: []string{"lodash", "react"}})
	require.NoError(t, err)
	assert.True(t, unlocked)
}

func TestHistoryPlugin_Errors(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockFS := fs.NewMockFS(ctrl)

	mockFS.EXPECT().ExpandPath(gomock.Any()).Return("/h", nil).Times(2)
	mockFS.EXPECT().FileLock("/h").Return(nil, errors.New("locked out"))
	mockFS.EXPECT().FileLock("/h").Return(func() {}, nil)
	mockFS.EXPECT().AppendFile("/h", gomock.Any(), gomock.Any()).Return(errors.New("disk full"))

	p := NewHistoryPlugin(mockFS, "/h", logger.NewNoopLogger())
	h, _ := p.Handler(hooks.AfterClean)

	err := <-h.Invoke(context.Background(), hooks.Call{Command: "clean"})
	assert.ErrorContains(t, err, "locked out")
	err = <-h.Invoke(context.Background(), hooks.Call{Command: "clean"})
	assert.ErrorContains(t, err, "disk full")
}
