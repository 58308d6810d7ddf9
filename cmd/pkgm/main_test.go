//go:build unit

package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func executeHelp(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append(args, "--help"))
	require.NoError(t, root.Execute())
	return out.String()
}

func TestRootHelp(t *testing.T) {
	help := executeHelp(t)

	for _, want := range []string{"install", "update", "uninstall", "audit", "clean", "plugins", "init",
		"--verbose", "--quiet", "--config", "--plugin-dir", "afterInstall"} {
		assert.Contains(t, help, want)
	}
}

func TestActionHelp(t *testing.T) {
	tests := []struct {
		args []string
		want []string
	}{
		{[]string{"install"}, []string{"beforeInstall", "afterInstall", "Aliases:", "add"}},
		{[]string{"i"}, []string{"Install the given packages"}},
		{[]string{"update"}, []string{"beforeUpdate", "afterUpdate"}},
		{[]string{"uninstall"}, []string{"beforeUninstall", "afterUninstall", "rm"}},
		{[]string{"audit"}, []string{"beforeAudit", "afterAudit", "parallel"}},
		{[]string{"clean"}, []string{"beforeClean", "afterClean"}},
		{[]string{"plugins", "list"}, []string{"discovery order"}},
		{[]string{"init"}, []string{"--force"}},
	}

	for _, tt := range tests {
		t.Run(tt.args[0], func(t *testing.T) {
			help := executeHelp(t, tt.args...)
			for _, want := range tt.want {
				assert.Contains(t, help, want)
			}
			assert.Contains(t, help, "--verbose", "global flags are inherited")
		})
	}
}

func TestArgumentValidation(t *testing.T) {
	tests := []struct {
		args []string
	}{
		{[]string{"uninstall"}},
		{[]string{"audit", "extra"}},
		{[]string{"clean", "extra"}},
		{[]string{"init", "extra"}},
	}

	for _, tt := range tests {
		t.Run(tt.args[0], func(t *testing.T) {
			root := newRootCmd()
			root.SetOut(&bytes.Buffer{})
			root.SetErr(&bytes.Buffer{})
			root.SetArgs(tt.args)
			assert.Error(t, root.Execute())
		})
	}
}
