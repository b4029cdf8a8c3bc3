package main

import (
	"slices"
)

// Classifier attributes a single import to the package names it uses.
type Classifier struct {
	pkg              *Package
	installed        InstalledPackageLoader
	ignoreBinPackage bool
}

func NewClassifier(pkg *Package, installed InstalledPackageLoader, ignoreBinPackage bool) *Classifier {
	return &Classifier{
		pkg:              pkg,
		installed:        installed,
		ignoreBinPackage: ignoreBinPackage,
	}
}

// Classify returns the sorted package names attributable to one import.
func (c *Classifier) Classify(spec ExtractedSpecifier) []string {
	if !IsExternalSpecifier(spec.Specifier) {
		return nil
	}
	baseName, ok := PackageNameOf(spec.Specifier)
	if !ok {
		return nil
	}

	typesName := TypesPackageNameOf(baseName)
	attributed := make([]string, 0, 2)

	if spec.Kind == TypeOnlyImport {
		// an undeclared types package is never reported as missing
		if !c.pkg.IsDeclared(typesName) {
			return nil
		}
		attributed = append(attributed, typesName)
	} else {
		attributed = append(attributed, baseName)
		if c.pkg.IsDeclared(typesName) {
			attributed = append(attributed, typesName)
		}
	}

	names := make([]string, 0, len(attributed))
	for _, name := range attributed {
		names = append(names, name)
		names = append(names, c.promotedDependencies(name)...)
	}

	result := names[:0]
	for _, name := range names {
		if IsCoreModule(name) {
			continue
		}
		if c.ignoreBinPackage && c.IsBinPackage(name) {
			continue
		}
		result = append(result, name)
	}

	slices.Sort(result)
	return slices.Compact(result)
}

// promotedDependencies lists peer and optional dependencies of the installed
// package name that the project itself declares.
func (c *Classifier) promotedDependencies(name string) []string {
	if c.installed == nil {
		return nil
	}
	installed, ok := c.installed.LoadInstalledPackage(name)
	if !ok {
		return nil
	}

	promoted := []string{}
	for peer := range installed.PeerDependencies {
		if c.pkg.IsDeclared(peer) {
			promoted = append(promoted, peer)
		}
	}
	for optional := range installed.OptionalDependencies {
		if c.pkg.IsDeclared(optional) {
			promoted = append(promoted, optional)
		}
	}
	return promoted
}

// IsBinPackage is true when the installed manifest of name declares executables.
func (c *Classifier) IsBinPackage(name string) bool {
	if c.installed == nil {
		return false
	}
	installed, ok := c.installed.LoadInstalledPackage(name)
	return ok && installed.HasBin()
}
