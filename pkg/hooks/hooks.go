// Package hooks provides the lifecycle hook engine: the closed set of hook names, the handler
// contract, the registry indexing plugins by hook, and the invoker running them.
package hooks

import "fmt"

// Name is a lifecycle point in the CLI command flow.
type Name string

// Hook names. This set is closed: plugins exporting anything else are rejected at load time.
const (
	OnCommand       Name = "onCommand"
	BeforeInstall   Name = "beforeInstall"
	AfterInstall    Name = "afterInstall"
	BeforeUninstall Name = "beforeUninstall"
	AfterUninstall  Name = "afterUninstall"
	BeforeUpdate    Name = "beforeUpdate"
	AfterUpdate     Name = "afterUpdate"
	BeforeAudit     Name = "beforeAudit"
	AfterAudit      Name = "afterAudit"
	BeforeClean     Name = "beforeClean"
	AfterClean      Name = "afterClean"
)

var names = []Name{
	OnCommand,
	BeforeInstall, AfterInstall,
	BeforeUninstall, AfterUninstall,
	BeforeUpdate, AfterUpdate,
	BeforeAudit, AfterAudit,
	BeforeClean, AfterClean,
}

// Names returns every hook name in declaration order.
func Names() []Name {
	out := make([]Name, len(names))
	copy(out, names)
	return out
}

// ParseName converts s to a Name, rejecting anything outside the enumeration.
func ParseName(s string) (Name, error) {
	n := Name(s)
	if !n.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownHook, s)
	}
	return n, nil
}

// IsValid reports whether n belongs to the enumeration.
func (n Name) IsValid() bool {
	for _, known := range names {
		if n == known {
			return true
		}
	}
	return false
}

func (n Name) String() string {
	return string(n)
}

// index returns the declaration position of n, or -1.
func (n Name) index() int {
	for i, known := range names {
		if n == known {
			return i
		}
	}
	return -1
}
