//go:build unit || integration

package manifest

import "github.com/lerenn/pkgm/pkg/hooks"

func callIn(cwd string) hooks.Call {
	return hooks.Call{
		Hook:     hooks.AfterInstall,
		PluginID: "/plugins/hooks.yaml",
		Command:  "install",
		Context:  hooks.CallContext{Cwd: cwd},
	}
}
