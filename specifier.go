package main

import (
	"regexp"
	"strings"
)

const nodeTypesPackageName = "@types/node"

var coreModules = map[string]struct{}{
	"assert":              {},
	"async_hooks":         {},
	"buffer":              {},
	"child_process":       {},
	"cluster":             {},
	"console":             {},
	"constants":           {},
	"crypto":              {},
	"dgram":               {},
	"diagnostics_channel": {},
	"dns":                 {},
	"domain":              {},
	"events":              {},
	"fs":                  {},
	"http":                {},
	"http2":               {},
	"https":               {},
	"inspector":           {},
	"module":              {},
	"net":                 {},
	"os":                  {},
	"path":                {},
	"perf_hooks":          {},
	"process":             {},
	"punycode":            {},
	"querystring":         {},
	"readline":            {},
	"repl":                {},
	"stream":              {},
	"string_decoder":      {},
	"sys":                 {},
	"timers":              {},
	"tls":                 {},
	"trace_events":        {},
	"tty":                 {},
	"url":                 {},
	"util":                {},
	"v8":                  {},
	"vm":                  {},
	"wasi":                {},
	"worker_threads":      {},
	"zlib":                {},
}

var (
	scopedPackagePattern = regexp.MustCompile(`^@([^/]+)/+([^/]+)`)
	plainPackagePattern  = regexp.MustCompile(`^([^/]+)`)
)

// IsCoreModule is an exact membership test against the Node builtin list.
func IsCoreModule(name string) bool {
	_, ok := coreModules[name]
	return ok
}

// IsNodeSchemeSpecifier matches `node:fs` style builtin imports.
func IsNodeSchemeSpecifier(specifier string) bool {
	return strings.HasPrefix(specifier, "node:")
}

// IsExternalSpecifier reports whether the first path component of the specifier
// is a plain name, i.e. it is neither relative nor absolute.
func IsExternalSpecifier(specifier string) bool {
	if specifier == "" || IsNodeSchemeSpecifier(specifier) {
		return false
	}
	first := specifier
	if idx := strings.IndexAny(specifier, `/\`); idx >= 0 {
		first = specifier[:idx]
	}
	if first == "" || first == "." || first == ".." {
		return false
	}
	// windows volume, e.g. C:\project
	if len(first) == 2 && first[1] == ':' && len(specifier) > 2 {
		return false
	}
	return true
}

// PackageNameOf extracts the package name from an import specifier:
// "@scope/name/sub" -> "@scope/name", "name/sub" -> "name".
func PackageNameOf(specifier string) (string, bool) {
	if strings.HasPrefix(specifier, "@") {
		match := scopedPackagePattern.FindStringSubmatch(specifier)
		if match == nil {
			return "", false
		}
		return "@" + match[1] + "/" + match[2], true
	}

	match := plainPackagePattern.FindStringSubmatch(specifier)
	if match == nil || match[1] == "." || match[1] == ".." {
		return "", false
	}
	return match[1], true
}

// TypesPackageNameOf returns the DefinitelyTyped package for a package name.
func TypesPackageNameOf(packageName string) string {
	if IsCoreModule(packageName) {
		return nodeTypesPackageName
	}
	if strings.HasPrefix(packageName, "@") {
		if scope, name, found := strings.Cut(packageName[1:], "/"); found {
			return "@types/" + scope + "__" + name
		}
	}
	return "@types/" + packageName
}
