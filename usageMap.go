package main

import (
	"slices"
)

// UsageMap maps a dependency name to the set of files importing it.
type UsageMap map[string]map[string]struct{}

func (u UsageMap) Add(dependency string, filePath string) {
	files, ok := u[dependency]
	if !ok {
		files = map[string]struct{}{}
		u[dependency] = files
	}
	files[filePath] = struct{}{}
}

// Merge is a set union per key; merging order does not matter.
func (u UsageMap) Merge(other UsageMap) {
	for dependency, files := range other {
		for filePath := range files {
			u.Add(dependency, filePath)
		}
	}
}

func (u UsageMap) Has(dependency string) bool {
	_, ok := u[dependency]
	return ok
}

// Names returns the dependency names in sorted order.
func (u UsageMap) Names() []string {
	names := make([]string, 0, len(u))
	for name := range u {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Files returns the sorted files importing dependency.
func (u UsageMap) Files(dependency string) []string {
	files := make([]string, 0, len(u[dependency]))
	for filePath := range u[dependency] {
		files = append(files, filePath)
	}
	slices.Sort(files)
	return files
}

// Sorted renders the map as name -> sorted files.
func (u UsageMap) Sorted() map[string][]string {
	sorted := make(map[string][]string, len(u))
	for name := range u {
		sorted[name] = u.Files(name)
	}
	return sorted
}
