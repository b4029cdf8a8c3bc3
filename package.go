package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/jsonc"
)

const packageJsonFileName = "package.json"

// DepsSet maps a dependency name to its declared version range.
type DepsSet map[string]string

// BinSet maps an executable name to its path inside the package.
type BinSet map[string]string

// Package is the subset of package.json the checker needs.
type Package struct {
	Name                 string  `json:"name"`
	Version              string  `json:"version"`
	Dependencies         DepsSet `json:"dependencies"`
	DevDependencies      DepsSet `json:"devDependencies"`
	PeerDependencies     DepsSet `json:"peerDependencies"`
	OptionalDependencies DepsSet `json:"optionalDependencies"`
	BundledDependencies  DepsSet `json:"bundledDependencies"`
	Bin                  BinSet  `json:"bin"`
}

type rawPackage struct {
	Name                 string          `json:"name"`
	Version              string          `json:"version"`
	Dependencies         DepsSet         `json:"dependencies"`
	DevDependencies      DepsSet         `json:"devDependencies"`
	PeerDependencies     DepsSet         `json:"peerDependencies"`
	OptionalDependencies DepsSet         `json:"optionalDependencies"`
	BundledDependencies  json.RawMessage `json:"bundledDependencies"`
	BundleDependencies   json.RawMessage `json:"bundleDependencies"`
	Bin                  json.RawMessage `json:"bin"`
}

// ParsePackage decodes package.json content. Comments and trailing commas are tolerated.
func ParsePackage(content []byte) (*Package, error) {
	var raw rawPackage
	if err := json.Unmarshal(jsonc.ToJSON(content), &raw); err != nil {
		return nil, err
	}

	pkg := &Package{
		Name:                 raw.Name,
		Version:              raw.Version,
		Dependencies:         orEmpty(raw.Dependencies),
		DevDependencies:      orEmpty(raw.DevDependencies),
		PeerDependencies:     orEmpty(raw.PeerDependencies),
		OptionalDependencies: orEmpty(raw.OptionalDependencies),
	}

	bundled := raw.BundledDependencies
	if len(bundled) == 0 {
		bundled = raw.BundleDependencies
	}
	deps, err := parseBundledDependencies(bundled)
	if err != nil {
		return nil, fmt.Errorf("bundledDependencies: %w", err)
	}
	pkg.BundledDependencies = deps

	bin, err := parseBinField(raw.Bin, raw.Name)
	if err != nil {
		return nil, fmt.Errorf("bin: %w", err)
	}
	pkg.Bin = bin

	return pkg, nil
}

// LoadPackage reads <dir>/package.json.
func LoadPackage(dir string) (*Package, error) {
	content, err := os.ReadFile(filepath.Join(dir, packageJsonFileName))
	if err != nil {
		return nil, err
	}
	return ParsePackage(content)
}

func orEmpty(deps DepsSet) DepsSet {
	if deps == nil {
		return DepsSet{}
	}
	return deps
}

// npm accepts both a list of names and a name -> version map.
func parseBundledDependencies(raw json.RawMessage) (DepsSet, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return DepsSet{}, nil
	}
	if raw[0] == '[' {
		var names []string
		if err := json.Unmarshal(raw, &names); err != nil {
			return nil, err
		}
		deps := make(DepsSet, len(names))
		for _, name := range names {
			deps[name] = ""
		}
		return deps, nil
	}
	if raw[0] == 't' || raw[0] == 'f' {
		// `"bundleDependencies": true` bundles everything; nothing to name here.
		return DepsSet{}, nil
	}
	var deps DepsSet
	if err := json.Unmarshal(raw, &deps); err != nil {
		return nil, err
	}
	return orEmpty(deps), nil
}

// A bare string bin is the package's own executable.
func parseBinField(raw json.RawMessage, packageName string) (BinSet, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	if raw[0] == '"' {
		var single string
		if err := json.Unmarshal(raw, &single); err != nil {
			return nil, err
		}
		return BinSet{packageName: single}, nil
	}
	var bin BinSet
	if err := json.Unmarshal(raw, &bin); err != nil {
		return nil, err
	}
	return bin, nil
}

func (p *Package) IsDependency(name string) bool {
	_, ok := p.Dependencies[name]
	return ok
}

func (p *Package) IsDevDependency(name string) bool {
	_, ok := p.DevDependencies[name]
	return ok
}

func (p *Package) IsPeerDependency(name string) bool {
	_, ok := p.PeerDependencies[name]
	return ok
}

func (p *Package) IsOptionalDependency(name string) bool {
	_, ok := p.OptionalDependencies[name]
	return ok
}

// IsDeclared reports whether name is listed in dependencies or devDependencies.
func (p *Package) IsDeclared(name string) bool {
	return p.IsDependency(name) || p.IsDevDependency(name)
}

// IsAnyDependency reports whether name satisfies an import, i.e. it is listed in
// one of dependencies, devDependencies, peerDependencies or optionalDependencies.
func (p *Package) IsAnyDependency(name string) bool {
	return p.IsDeclared(name) || p.IsPeerDependency(name) || p.IsOptionalDependency(name)
}

// HasBin reports whether the package declares at least one executable.
func (p *Package) HasBin() bool {
	return len(p.Bin) > 0
}
