// Package config holds named constants shared across the compiler and the
// funxy.yaml-driven CompilerOptions.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Names of the built-in templates the resolver expands implicit sugar
// forms into (spec.md §6 "Built-in templates").
const (
	TemplatePointer   = "Pointer"
	TemplateRef       = "Ref"
	TemplatePtrSlice  = "PtrSlice"
	TemplateRefSlice  = "RefSlice"
	TemplateList      = "List"
	TemplateArray     = "Array"
	TemplateOption    = "Option"
	TemplateFuture    = "Future"
	TemplateFuncPtr   = "FuncPtr"
	TemplateFuncUnion = "FuncUnion"
	TemplateFuncSym   = "FuncSym"
)

// Names of the always-present primitive/top types.
const (
	TypeNameDyn = "Dyn"
	TypeNameAny = "Any"
)

// DefaultMaxTemplateDepth bounds recursive template expansion; exceeding it
// is treated as CircularExpansion rather than a stack overflow.
const DefaultMaxTemplateDepth = 256

// CompilerOptions is the decoded shape of funxy.yaml: the same file format
// a host embedding uses to declare Go-interop deps, generalized here to
// also configure compile-time behavior.
type CompilerOptions struct {
	// Strict is decoded and defaulted here only; no compiler component
	// reads it, so it does not change how Dyn/Any arguments are matched.
	Strict bool `yaml:"strict"`

	// MaxTemplateDepth overrides DefaultMaxTemplateDepth.
	MaxTemplateDepth int `yaml:"maxTemplateDepth"`

	// HostCatalogDSN is the database/sql DSN for internal/hostcatalog's
	// SQLite-backed loader (e.g. "file:host.db?mode=ro").
	HostCatalogDSN string `yaml:"hostCatalogDSN"`
}

// DefaultOptions returns the options used when no funxy.yaml is present.
func DefaultOptions() CompilerOptions {
	return CompilerOptions{
		Strict:           false,
		MaxTemplateDepth: DefaultMaxTemplateDepth,
		HostCatalogDSN:   "file::memory:?cache=shared",
	}
}

// LoadOptions reads and decodes a funxy.yaml file, falling back to
// DefaultOptions for any field the file leaves at its zero value.
func LoadOptions(path string) (CompilerOptions, error) {
	opts := DefaultOptions()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return opts, nil
		}
		return opts, fmt.Errorf("config: reading %s: %w", path, err)
	}

	var decoded CompilerOptions
	if err := yaml.Unmarshal(data, &decoded); err != nil {
		return opts, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	if decoded.MaxTemplateDepth != 0 {
		opts.MaxTemplateDepth = decoded.MaxTemplateDepth
	}
	if decoded.HostCatalogDSN != "" {
		opts.HostCatalogDSN = decoded.HostCatalogDSN
	}
	opts.Strict = decoded.Strict

	return opts, nil
}
