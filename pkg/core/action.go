// Package core defines the primary actions of pkgm and the collaborators performing them.
package core

import (
	"fmt"

	"github.com/lerenn/pkgm/pkg/hooks"
)

// Action is a primary action surrounded by before/after hooks.
type Action string

// Actions.
const (
	Install   Action = "install"
	Update    Action = "update"
	Uninstall Action = "uninstall"
	Audit     Action = "audit"
	Clean     Action = "clean"
)

var hookPairs = map[Action][2]hooks.Name{
	Install:   {hooks.BeforeInstall, hooks.AfterInstall},
	Update:    {hooks.BeforeUpdate, hooks.AfterUpdate},
	Uninstall: {hooks.BeforeUninstall, hooks.AfterUninstall},
	Audit:     {hooks.BeforeAudit, hooks.AfterAudit},
	Clean:     {hooks.BeforeClean, hooks.AfterClean},
}

// Actions returns every action in a stable order.
func Actions() []Action {
	return []Action{Install, Update, Uninstall, Audit, Clean}
}

// ParseAction converts s to an Action.
func ParseAction(s string) (Action, error) {
	a := Action(s)
	if !a.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownAction, s)
	}
	return a, nil
}

// IsValid reports whether a is a known action.
func (a Action) IsValid() bool {
	_, ok := hookPairs[a]
	return ok
}

// BeforeHook returns the hook invoked before the action runs.
func (a Action) BeforeHook() hooks.Name {
	return hookPairs[a][0]
}

// AfterHook returns the hook invoked after the action ran.
func (a Action) AfterHook() hooks.Name {
	return hookPairs[a][1]
}

func (a Action) String() string {
	return string(a)
}
