// Package manifest reads the YAML file that lists the tables of a merge.
//
//	format: columns
//	tables:
//	  - name: cases
//	    locator: https://example.org/cases.csv
//	  - name: deaths
//	    locator: s3://reports/deaths.csv
package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/JonMunkholm/csvunion/internal/core"
)

// Manifest is a named list of tables to merge.
type Manifest struct {
	// Format is an optional output format name.
	Format string           `yaml:"format,omitempty"`
	Tables []core.TableSpec `yaml:"tables"`
}

// Load reads and validates the manifest at path.
func Load(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	defer f.Close()

	m, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("manifest %s: %w", path, err)
	}
	return m, nil
}

// Decode parses a manifest from r. Unknown keys are rejected.
func Decode(r io.Reader) (*Manifest, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var m Manifest
	if err := dec.Decode(&m); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("manifest is empty")
		}
		return nil, fmt.Errorf("parse yaml: %w", err)
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks that every table has a unique name and a locator.
func (m *Manifest) Validate() error {
	if len(m.Tables) == 0 {
		return errors.New("manifest lists no tables")
	}

	var errs []error
	seen := make(map[string]int, len(m.Tables))
	for i, t := range m.Tables {
		if t.Name == "" {
			errs = append(errs, fmt.Errorf("tables[%d]: name is required", i))
		} else if j, dup := seen[t.Name]; dup {
			errs = append(errs, fmt.Errorf("tables[%d]: name %q already used by tables[%d]", i, t.Name, j))
		} else {
			seen[t.Name] = i
		}
		if t.Locator == "" {
			errs = append(errs, fmt.Errorf("tables[%d]: locator is required", i))
		}
	}
	return errors.Join(errs...)
}

// ParseSpec parses a "name=locator" argument. Without "=" the name is the
// locator's base name minus its extension.
func ParseSpec(arg string) (core.TableSpec, error) {
	arg = strings.TrimSpace(arg)
	if name, locator, ok := strings.Cut(arg, "="); ok && !strings.Contains(name, "/") {
		name, locator = strings.TrimSpace(name), strings.TrimSpace(locator)
		if name == "" || locator == "" {
			return core.TableSpec{}, fmt.Errorf("table %q: want name=locator", arg)
		}
		return core.TableSpec{Name: name, Locator: locator}, nil
	}
	if arg == "" {
		return core.TableSpec{}, errors.New("empty table argument")
	}
	return core.TableSpec{Name: NameFromPath(arg), Locator: arg}, nil
}

// NameFromPath derives a table name from a path, URL or file name.
func NameFromPath(p string) string {
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	base := path.Base(strings.TrimRight(p, "/"))
	if ext := path.Ext(base); ext != "" && ext != base {
		base = strings.TrimSuffix(base, ext)
	}
	return base
}

// ParseSpecs parses every argument and rejects repeated names.
func ParseSpecs(args []string) ([]core.TableSpec, error) {
	specs := make([]core.TableSpec, 0, len(args))
	for _, a := range args {
		spec, err := ParseSpec(a)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	m := Manifest{Tables: specs}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return specs, nil
}
