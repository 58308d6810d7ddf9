// Package manifest implements plugins declared as YAML or JSON files that map hook names to
// external commands.
package manifest

import (
	"fmt"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/lerenn/pkgm/pkg/fs"
	"github.com/lerenn/pkgm/pkg/logger"
	"github.com/lerenn/pkgm/pkg/plugins"
)

// Name is the runtime name reported for manifest plugins.
const Name = "manifest"

// Runtime imports .yaml, .yml and .json manifests.
type Runtime struct {
	fs     fs.FS
	logger logger.Logger
}

// NewRuntime creates a manifest runtime.
func NewRuntime(fsys fs.FS, log logger.Logger) *Runtime {
	if log == nil {
		log = logger.NewNoopLogger()
	}
	return &Runtime{fs: fsys, logger: log}
}

// Name implements plugins.Runtime.
func (r *Runtime) Name() string {
	return Name
}

// Extensions implements plugins.Runtime.
func (r *Runtime) Extensions() []string {
	return []string{".yaml", ".yml", ".json"}
}

// Open parses the manifest. An empty document is an empty mapping; an explicit null is not.
func (r *Runtime) Open(path string) (plugins.Export, error) {
	data, err := r.fs.ReadFile(path)
	if err != nil {
		return plugins.Export{}, err
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return plugins.Export{}, fmt.Errorf("invalid manifest: %w", err)
	}

	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	switch {
	case root.Kind == 0 || root.Kind == yaml.DocumentNode:
		return plugins.Export{Kind: plugins.KindMapping}, nil
	case root.Kind != yaml.MappingNode:
		return plugins.Export{Kind: kindOf(root)}, nil
	}

	log := r.logger.With("plugin", path)
	entries := make([]plugins.Entry, 0, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i], root.Content[i+1]
		entry := plugins.Entry{Key: key.Value, Kind: kindOf(value)}
		if cmd, ok := parseCommand(value); ok {
			cmd.manifestDir = filepath.Dir(path)
			cmd.logger = log
			entry.Handler = cmd
			entry.Kind = "command"
		}
		entries = append(entries, entry)
	}
	return plugins.Export{Kind: plugins.KindMapping, Entries: entries}, nil
}

type commandSpec struct {
	Run yaml.Node         `yaml:"run"`
	Env map[string]string `yaml:"env"`
	Dir string            `yaml:"dir"`
}

// parseCommand accepts a shell string, an argv list, or a {run, env, dir} mapping.
func parseCommand(node *yaml.Node) (*command, bool) {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag != "!!str" || node.Value == "" {
			return nil, false
		}
		return &command{argv: shell(node.Value)}, true
	case yaml.SequenceNode:
		var argv []string
		if err := node.Decode(&argv); err != nil || len(argv) == 0 || argv[0] == "" {
			return nil, false
		}
		return &command{argv: argv}, true
	case yaml.MappingNode:
		var spec commandSpec
		if err := node.Decode(&spec); err != nil {
			return nil, false
		}
		cmd, ok := parseCommand(&spec.Run)
		if !ok {
			return nil, false
		}
		cmd.env = spec.Env
		cmd.dir = spec.Dir
		return cmd, true
	}
	return nil, false
}

func shell(script string) []string {
	if runtime.GOOS == "windows" {
		return []string{"cmd", "/C", script}
	}
	return []string{"sh", "-c", script}
}

func kindOf(node *yaml.Node) string {
	switch node.Kind {
	case yaml.MappingNode:
		return "mapping"
	case yaml.SequenceNode:
		return "array"
	case yaml.AliasNode:
		return "alias"
	case yaml.ScalarNode:
		switch node.Tag {
		case "!!str":
			return "string"
		case "!!int", "!!float":
			return "number"
		case "!!bool":
			return "boolean"
		case "!!null":
			return "null"
		}
		return "value"
	}
	return "undefined"
}
