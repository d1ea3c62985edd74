package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Component registers one (component type, field) pair on the aggregate.
// Each component yields one accessor method and, unless suppressed, one
// Has<Name> capability interface.
type Component struct {
	// Type is the Go type expression of the field, as written in the
	// aggregate's package (e.g. Host, *Host, net.IP).
	Type string `json:"type" yaml:"type" toml:"type"`

	// Field is the aggregate field the accessor returns the address of.
	Field string `json:"field" yaml:"field" toml:"field"`

	// Method overrides the accessor name. Defaults to the base identifier of Type.
	Method string `json:"method,omitempty" yaml:"method,omitempty" toml:"method,omitempty"`

	// Interface overrides the capability interface name. Defaults to Has<Method>.
	// "-" suppresses the interface for this component.
	Interface string `json:"interface,omitempty" yaml:"interface,omitempty" toml:"interface,omitempty"`
}

// Spec is the full input schema consumed by the generator.
type Spec struct {
	Package   string `json:"package" yaml:"package" toml:"package"`
	Aggregate string `json:"aggregate" yaml:"aggregate" toml:"aggregate"`

	// Receiver names the accessor receiver. Defaults to the lower-cased first
	// letter of Aggregate.
	Receiver string `json:"receiver,omitempty" yaml:"receiver,omitempty" toml:"receiver,omitempty"`

	// Interfaces is optional:
	// - nil or true: emit one Has<Name> interface per component
	// - false: emit accessors only
	Interfaces *bool `json:"interfaces,omitempty" yaml:"interfaces,omitempty" toml:"interfaces,omitempty"`

	// Imports maps an import name to its path for qualified component types
	// (e.g. {"net": "net"}). Owner-file imports are merged in as well.
	Imports map[string]string `json:"imports,omitempty" yaml:"imports,omitempty" toml:"imports,omitempty"`

	Components []Component `json:"components" yaml:"components" toml:"components"`
}

// interfacesEnabled reports whether capability interfaces are emitted.
func (s *Spec) interfacesEnabled() bool {
	return s.Interfaces == nil || *s.Interfaces
}

// ErrUnknownSpecFormat is returned for spec files with an unsupported extension.
var ErrUnknownSpecFormat = errors.New("hasgen: unknown spec format")

// loadSpec reads and decodes a spec file. The decoder is chosen by extension
// (.json, .yaml/.yml, .toml). Unknown keys are rejected in every format.
//
// The raw bytes are returned alongside the spec so the generated header can
// carry their hash.
func loadSpec(specPath string) (Spec, []byte, error) {
	raw, err := os.ReadFile(specPath)
	if err != nil {
		return Spec{}, nil, fmt.Errorf("read spec: %w", err)
	}

	spec, err := decodeSpec(filepath.Ext(specPath), raw)
	if err != nil {
		return Spec{}, nil, fmt.Errorf("decode spec %s: %w", filepath.ToSlash(specPath), err)
	}
	return spec, raw, nil
}

func decodeSpec(ext string, raw []byte) (Spec, error) {
	var spec Spec

	switch strings.ToLower(ext) {
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&spec); err != nil {
			return Spec{}, err
		}

	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(raw))
		dec.KnownFields(true)
		if err := dec.Decode(&spec); err != nil {
			return Spec{}, err
		}

	case ".toml":
		meta, err := toml.Decode(string(raw), &spec)
		if err != nil {
			return Spec{}, err
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, 0, len(undecoded))
			for _, key := range undecoded {
				keys = append(keys, key.String())
			}
			return Spec{}, fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
		}

	default:
		return Spec{}, fmt.Errorf("%w: %q (want .json, .yaml, .yml or .toml)", ErrUnknownSpecFormat, ext)
	}

	return spec, nil
}
