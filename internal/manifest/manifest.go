package manifest

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Manifest is the declarative project file (mlproject.yaml): the
// project name, the environment the steps run in, and the named entry
// points that can be triggered as pipeline steps.
type Manifest struct {
	Name        string                `yaml:"name"`
	Environment Environment           `yaml:"environment"`
	EntryPoints map[string]EntryPoint `yaml:"entry_points"`
}

// Environment describes how entry-point commands are executed. Kind is
// one of conda, docker, or system; resolution of the environment itself
// is the runner's concern, not the manifest's.
type Environment struct {
	Kind  string `yaml:"kind"`
	Image string `yaml:"image,omitempty"`
	File  string `yaml:"file,omitempty"`
}

type EntryPoint struct {
	Parameters map[string]ParamSpec `yaml:"parameters,omitempty"`
	Command    string               `yaml:"command"`
}

// ParamSpec declares one entry-point parameter. In YAML it is either a
// bare type name ("float") or a mapping with type and default.
type ParamSpec struct {
	Type    string `yaml:"type"`
	Default string `yaml:"default,omitempty"`
}

var validParamTypes = map[string]bool{
	"string": true, "float": true, "int": true, "path": true, "uri": true,
}

// placeholderPattern matches {name} parameter references in entry-point
// commands.
var placeholderPattern = regexp.MustCompile(`\{[A-Za-z_][A-Za-z0-9_]*\}`)

func (p *ParamSpec) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		p.Type = node.Value
		return nil
	}

	type rawSpec struct {
		Type    string      `yaml:"type"`
		Default interface{} `yaml:"default"`
	}
	var raw rawSpec
	if err := node.Decode(&raw); err != nil {
		return err
	}

	p.Type = raw.Type
	if raw.Default != nil {
		p.Default = fmt.Sprintf("%v", raw.Default)
	}
	return nil
}

func Load(path string) (*Manifest, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest %s: %w", path, err)
	}
	defer file.Close()

	var m Manifest
	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(&m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}

	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("invalid manifest %s: %w", path, err)
	}

	return &m, nil
}

func (m *Manifest) validate() error {
	if m.Name == "" {
		return fmt.Errorf("project name is required")
	}
	if len(m.EntryPoints) == 0 {
		return fmt.Errorf("at least one entry point is required")
	}

	for name, ep := range m.EntryPoints {
		if ep.Command == "" {
			return fmt.Errorf("entry point %s has no command", name)
		}
		for pname, spec := range ep.Parameters {
			if spec.Type == "" {
				continue
			}
			if !validParamTypes[spec.Type] {
				return fmt.Errorf("entry point %s: parameter %s has unknown type %s", name, pname, spec.Type)
			}
		}
	}
	return nil
}

// Resolve looks up an entry point by name.
func (m *Manifest) Resolve(name string) (EntryPoint, error) {
	ep, ok := m.EntryPoints[name]
	if !ok {
		return EntryPoint{}, fmt.Errorf("entry point %s not found in project %s", name, m.Name)
	}
	return ep, nil
}

// RenderCommand substitutes {param} placeholders in the entry point's
// command with the given values, falling back to declared defaults.
// Values are checked against the declared type. Provided parameters not
// declared by the entry point are appended as --key value flags, so a
// caller can pass through extra options unchanged.
func (ep EntryPoint) RenderCommand(values map[string]string) (string, error) {
	resolved := make(map[string]string)

	for name, spec := range ep.Parameters {
		value, ok := values[name]
		if !ok {
			if spec.Default == "" {
				return "", fmt.Errorf("missing value for parameter %s", name)
			}
			value = spec.Default
		}
		if err := checkType(name, spec.Type, value); err != nil {
			return "", err
		}
		resolved[name] = value
	}

	command := ep.Command
	for name, value := range resolved {
		command = strings.ReplaceAll(command, "{"+name+"}", value)
	}

	// Only identifier-shaped {name} tokens count as placeholders;
	// literal braces (shell, awk) pass through untouched.
	if leftover := placeholderPattern.FindString(command); leftover != "" {
		return "", fmt.Errorf("unresolved placeholder %s in command: %s", leftover, command)
	}

	// Extra parameters keep a stable order so rendered commands are
	// reproducible.
	var extras []string
	for name := range values {
		if _, declared := ep.Parameters[name]; !declared {
			extras = append(extras, name)
		}
	}
	sort.Strings(extras)
	for _, name := range extras {
		command += fmt.Sprintf(" --%s %s", name, values[name])
	}

	return command, nil
}

func checkType(name, typ, value string) error {
	switch typ {
	case "float":
		if _, err := strconv.ParseFloat(value, 64); err != nil {
			return fmt.Errorf("parameter %s: %q is not a float", name, value)
		}
	case "int":
		if _, err := strconv.ParseInt(value, 10, 64); err != nil {
			return fmt.Errorf("parameter %s: %q is not an int", name, value)
		}
	case "", "string", "path", "uri":
		// Free-form.
	default:
		return fmt.Errorf("parameter %s has unknown type %s", name, typ)
	}
	return nil
}
