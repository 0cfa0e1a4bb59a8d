package catalog

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// File is the on-disk layout of a domains YAML file
type File struct {
	Domains []*Domain `yaml:"domains"`
}

// Registry resolves domain names to their configuration. It is built once at
// startup and read-only afterwards.
type Registry struct {
	domains map[string]*Domain
	order   []string
}

// NewRegistry validates the given domains and indexes them by name.
// A later domain with the same name replaces an earlier one.
func NewRegistry(domains ...*Domain) (*Registry, error) {
	r := &Registry{domains: make(map[string]*Domain, len(domains))}
	var errs []error
	for _, d := range domains {
		if d == nil {
			continue
		}
		if err := d.Validate(); err != nil {
			errs = append(errs, err)
			continue
		}
		if _, exists := r.domains[d.Name]; !exists {
			r.order = append(r.order, d.Name)
		}
		r.domains[d.Name] = d
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return r, nil
}

// Get returns the domain named name
func (r *Registry) Get(name string) (*Domain, error) {
	d, ok := r.domains[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDomain, name)
	}
	return d, nil
}

// Has reports whether name is registered
func (r *Registry) Has(name string) bool {
	_, ok := r.domains[name]
	return ok
}

// Names returns the registered domain names in registration order
func (r *Registry) Names() []string {
	return slices.Clone(r.order)
}

// List returns the registered domains in registration order
func (r *Registry) List() []*Domain {
	out := make([]*Domain, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.domains[name])
	}
	return out
}

// Parse decodes a domains YAML document. Domains are not validated here.
func Parse(data []byte) ([]*Domain, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse domains file: %w", err)
	}
	if len(f.Domains) == 0 {
		return nil, errors.New("domains file declares no domains")
	}
	return f.Domains, nil
}

// LoadFile reads and decodes the domains YAML file at path
func LoadFile(path string) ([]*Domain, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read domains file: %w", err)
	}
	return Parse(data)
}

// Load builds a registry of the built-in domains, overlaid with the domains of
// the YAML file at path when path is not empty.
func Load(path string) (*Registry, error) {
	domains := Builtin()
	if path != "" {
		extra, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		domains = append(domains, extra...)
	}
	return NewRegistry(domains...)
}
