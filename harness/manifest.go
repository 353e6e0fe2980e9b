package harness

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Manifest is the YAML form of a case registry:
//
//	cases:
//	  - name: relative_include
//	    fixtures: [subdirectory/relative_include.tex, subdirectory/content/1.tex]
//	    args: [--format=plain.fmt.gz, subdirectory/relative_include.tex]
//	    skip: "GitHub #31"
type Manifest struct {
	Cases []ManifestCase `yaml:"cases"`
}

// ManifestCase is one case entry. At most one of Skip and ExpectFailure
// may be set.
type ManifestCase struct {
	Name          string   `yaml:"name"`
	Fixtures      []string `yaml:"fixtures,omitempty"`
	Args          []string `yaml:"args"`
	Skip          string   `yaml:"skip,omitempty"`
	ExpectFailure string   `yaml:"expect_failure,omitempty"`
}

// LoadManifest reads a registry from a YAML file.
func LoadManifest(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	reg, err := ParseManifest(data)
	if err != nil {
		return nil, fmt.Errorf("invalid manifest %s: %w", path, err)
	}
	return reg, nil
}

// ParseManifest decodes a registry from YAML. Unknown fields are errors.
func ParseManifest(data []byte) (*Registry, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var m Manifest
	if err := dec.Decode(&m); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	reg := NewRegistry()
	for i, mc := range m.Cases {
		mode, err := mc.mode()
		if err != nil {
			return nil, fmt.Errorf("case %d (%s): %w", i, mc.Name, err)
		}
		c := Case{Name: mc.Name, Fixtures: mc.Fixtures, Args: mc.Args, Mode: mode}
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// ManifestFrom converts a registry back into its YAML form.
func ManifestFrom(reg *Registry) Manifest {
	var m Manifest
	for _, c := range reg.All() {
		mc := ManifestCase{Name: c.Name, Fixtures: c.Fixtures, Args: c.Args}
		switch c.Mode.Kind {
		case ModeSkip:
			mc.Skip = c.Mode.Reason
		case ModeExpectFailure:
			mc.ExpectFailure = c.Mode.Reason
		}
		m.Cases = append(m.Cases, mc)
	}
	return m
}

func (mc ManifestCase) mode() (Mode, error) {
	switch {
	case mc.Skip != "" && mc.ExpectFailure != "":
		return Mode{}, errors.New("skip and expect_failure are mutually exclusive")
	case mc.Skip != "":
		return Skip(mc.Skip), nil
	case mc.ExpectFailure != "":
		return ExpectFailure(mc.ExpectFailure), nil
	default:
		return Run(), nil
	}
}
