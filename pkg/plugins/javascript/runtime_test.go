//go:build unit

package javascript

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lerenn/pkgm/pkg/fs"
	"github.com/lerenn/pkgm/pkg/hooks"
	"github.com/lerenn/pkgm/pkg/plugins"
)

func TestOpen_DescribesExports(t *testing.T) {
	export, _ := openPlugin(t, `
module.exports = {
  afterInstall: function (ctx) {},
  beforeAudit: async (ctx) => {},
  afterDeploy() {},
  onCommand: "not a function",
  afterClean: 42,
};`)

	require.Equal(t, plugins.KindMapping, export.Kind)
	require.Len(t, export.Entries, 5)

	keys := make([]string, len(export.Entries))
	for i, e := range export.Entries {
		keys[i] = e.Key
	}
	assert.Equal(t, []string{"afterInstall", "beforeAudit", "afterDeploy", "onCommand", "afterClean"}, keys)
	assert.NotNil(t, export.Entries[0].Handler)
	assert.NotNil(t, export.Entries[1].Handler)
	assert.Nil(t, export.Entries[3].Handler)
	assert.Equal(t, "string", export.Entries[3].Kind)
	assert.Equal(t, "number", export.Entries[4].Kind)
}

func TestOpen_ExportsKeyword(t *testing.T) {
	export, _ := openPlugin(t, `exports.onCommand = function () {};`)
	require.Equal(t, plugins.KindMapping, export.Kind)
	require.Len(t, export.Entries, 1)
	assert.Equal(t, "onCommand", export.Entries[0].Key)
}

func TestOpen_NonMappingExports(t *testing.T) {
	tests := []struct {
		src  string
		kind string
	}{
		{src: `module.exports = function () {};`, kind: "function"},
		{src: `module.exports = [1, 2];`, kind: "array"},
		{src: `module.exports = "hooks";`, kind: "string"},
		{src: `module.exports = null;`, kind: "null"},
		{src: `module.exports = undefined;`, kind: "undefined"},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			export, _ := openPlugin(t, tt.src)
			assert.Equal(t, tt.kind, export.Kind)
			assert.Empty(t, export.Entries)
		})
	}
}

func TestOpen_ImportFailures(t *testing.T) {
	rt := NewRuntime(fs.NewFS(), nil)
	rt.loadTimeout = 50 * time.Millisecond

	tests := map[string]string{
		"syntax error":   `module.exports = {`,
		"throws":         `throw new Error("cannot start");`,
		"unknown global": `require("left-pad");`,
		"never finishes": `while (true) {}`,
	}
	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := rt.Open(writePlugin(t, "bad.js", src))
			assert.Error(t, err)
		})
	}

	_, err := rt.Open(filepath.Join(t.TempDir(), "missing.js"))
	assert.Error(t, err)
}

func TestHandler_Outcomes(t *testing.T) {
	export, _ := openPlugin(t, `
module.exports = {
  onCommand() {},
  beforeInstall() { throw new Error("boom"); },
  afterInstall: async () => { await Promise.resolve(); },
  beforeUpdate: async () => { throw new Error("rejected"); },
  afterUpdate() { return Promise.reject("plain reason"); },
  beforeAudit() { throw "thrown string"; },
};`)

	tests := []struct {
		key     string
		wantErr string
	}{
		{key: "onCommand"},
		{key: "beforeInstall", wantErr: "boom"},
		{key: "afterInstall"},
		{key: "beforeUpdate", wantErr: "rejected"},
		{key: "afterUpdate", wantErr: "plain reason"},
		{key: "beforeAudit", wantErr: "thrown string"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			call, _ := newCall(t, hooks.Name(tt.key))
			err := invoke(context.Background(), handlerFor(t, export, tt.key), call)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Equal(t, tt.wantErr, err.Error())
			}
		})
	}
}

func TestHandler_ReceivesPayloadAndRecords(t *testing.T) {
	export, logs := openPlugin(t, `
module.exports = {
  afterInstall(ctx) {
    console.log("hook", ctx.hook, "for", ctx.command, ctx.args.join(","), ctx.context.verbose);
    if (ctx.recorded() !== undefined) throw new Error("namespace should start empty");
    ctx.record({ packages: ctx.args.length, cwd: ctx.context.cwd });
  },
};`)

	call, ictx := newCall(t, hooks.AfterInstall)
	require.NoError(t, invoke(context.Background(), handlerFor(t, export, "afterInstall"), call))

	assert.Equal(t, 1, logs.FilterMessage("hook afterInstall for install lodash,react true").Len())
	value, ok := ictx.Extension("/plugins/plugin.js")
	require.True(t, ok)
	assert.Equal(t, map[string]interface{}{"packages": int64(2), "cwd": ictx.Cwd()}, value)
}

func TestHandler_Timeouts(t *testing.T) {
	export, _ := openPlugin(t, `
module.exports = {
  beforeAudit() { while (true) {} },
  afterAudit() { return new Promise(() => {}); },
  onCommand() { return "still usable"; },
};`)

	for _, key := range []string{"beforeAudit", "afterAudit"} {
		t.Run(key, func(t *testing.T) {
			call, _ := newCall(t, hooks.Name(key))
			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()

			start := time.Now()
			err := invoke(ctx, handlerFor(t, export, key), call)
			assert.ErrorIs(t, err, context.DeadlineExceeded)
			assert.Less(t, time.Since(start), 2*time.Second)
		})
	}

	call, _ := newCall(t, hooks.OnCommand)
	assert.NoError(t, invoke(context.Background(), handlerFor(t, export, "onCommand"), call))
}

func TestHandler_SerializesCallsOnOnePlugin(t *testing.T) {
	export, _ := openPlugin(t, `
let active = 0;
module.exports = {
  onCommand(ctx) {
    active++;
    if (active > 1) throw new Error("concurrent call");
    for (let i = 0; i < 100000; i++) {}
    active--;
  },
};`)

	h := handlerFor(t, export, "onCommand")
	call, _ := newCall(t, hooks.OnCommand)
	errs := make(chan error, 8)
	for range 8 {
		go func() {
			errs <- invoke(context.Background(), h, call)
		}()
	}
	for range 8 {
		assert.NoError(t, <-errs)
	}
}
