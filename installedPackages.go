package main

import (
	"log/slog"
	"path/filepath"

	lru "github.com/hashicorp/golang-lru/v2"
)

const nodeModulesDirName = "node_modules"

const installedPackagesCacheSize = 4096

// InstalledPackageLoader returns the manifest of an installed dependency, if any.
type InstalledPackageLoader interface {
	LoadInstalledPackage(name string) (*Package, bool)
}

// NodeModulesLoader reads <root>/node_modules/<name>/package.json.
// Results, including misses, are cached; it is safe for concurrent use.
type NodeModulesLoader struct {
	root   string
	cache  *lru.Cache[string, *Package]
	logger *slog.Logger
}

func NewNodeModulesLoader(root string, logger *slog.Logger) *NodeModulesLoader {
	if logger == nil {
		logger = slog.Default()
	}
	// lru.New only fails for a non-positive size.
	cache, _ := lru.New[string, *Package](installedPackagesCacheSize)
	return &NodeModulesLoader{
		root:   root,
		cache:  cache,
		logger: logger,
	}
}

func (l *NodeModulesLoader) LoadInstalledPackage(name string) (*Package, bool) {
	if pkg, ok := l.cache.Get(name); ok {
		return pkg, pkg != nil
	}

	dir := filepath.Join(l.root, nodeModulesDirName, filepath.FromSlash(name))
	pkg, err := LoadPackage(dir)
	if err != nil {
		l.logger.Debug("installed package manifest unavailable", "dependency", name, "error", err)
		l.cache.Add(name, nil)
		return nil, false
	}

	l.cache.Add(name, pkg)
	return pkg, true
}
