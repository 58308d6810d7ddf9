//go:build unit

package hooks

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/lerenn/pkgm/pkg/fs"
	"github.com/lerenn/pkgm/pkg/invocation"
	"github.com/lerenn/pkgm/pkg/logger"
)

func newInvocation(t *testing.T) *invocation.Context {
	t.Helper()
	ictx, err := invocation.NewBuilder(fs.NewFS()).Build("install", []string{"lodash"}, t.TempDir(), invocation.Flags{})
	require.NoError(t, err)
	return ictx
}

func newObservedLogger() (logger.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	return logger.NewFromZap(zap.New(core)), logs
}

func succeed() Handler {
	return HandlerFunc(func(context.Context, Call) error { return nil })
}

func fail(msg string) Handler {
	return HandlerFunc(func(context.Context, Call) error { return errors.New(msg) })
}

func pluginWith(id string, name Name, h Handler) *Plugin {
	return NewPlugin(id, "test", map[Name]Handler{name: h})
}
