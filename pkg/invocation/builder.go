package invocation

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lerenn/pkgm/pkg/fs"
	cmap "github.com/orcaman/concurrent-map/v2"
)

// Builder assembles invocation contexts.
type Builder struct {
	fs    fs.FS
	now   func() time.Time
	newID func() string
}

// NewBuilder creates a new Builder instance.
func NewBuilder(fsys fs.FS) *Builder {
	return &Builder{
		fs:    fsys,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Build creates the context of one command run. An empty cwd means the process working
// directory; cwd is always made absolute. No other field is normalized.
func (b *Builder) Build(command string, args []string, cwd string, flags Flags) (*Context, error) {
	if command == "" {
		return nil, ErrCommandEmpty
	}

	if cwd == "" {
		wd, err := b.fs.Getwd()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCwdResolution, err)
		}
		cwd = wd
	}

	absCwd, err := b.fs.ResolveAbs(cwd)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCwdResolution, err)
	}

	argsCopy := make([]string, len(args))
	copy(argsCopy, args)

	return &Context{
		id:         b.newID(),
		command:    command,
		args:       argsCopy,
		cwd:        absCwd,
		verbose:    flags.Verbose,
		startedAt:  b.now(),
		extensions: cmap.New[any](),
	}, nil
}
