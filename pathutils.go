package main

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// NormalizePathForInternal converts an OS path into the internal representation
// using forward slashes. Examples:
// - "C:\\project\\src\\file.ts" -> "C:/project/src/file.ts"
// - "/project/src/" -> "/project/src"
func NormalizePathForInternal(p string) string {
	if runtime.GOOS != "windows" {
		return p
	}
	if p == "" {
		return ""
	}
	s := filepath.ToSlash(filepath.Clean(p))
	// Trim trailing slash except when path is root like "/" or "C:/"
	if len(s) > 1 && strings.HasSuffix(s, "/") && !strings.HasSuffix(s, ":/") {
		s = strings.TrimRight(s, "/")
	}
	return s
}

// DenormalizePathForOS converts an internal forward-slash path back to the
// OS-native representation for os.* calls.
func DenormalizePathForOS(internal string) string {
	if runtime.GOOS != "windows" {
		return internal
	}
	return filepath.FromSlash(internal)
}

// NormalizeGlobPattern normalizes glob pattern separators to forward slashes.
func NormalizeGlobPattern(pattern string) string {
	if runtime.GOOS != "windows" {
		return pattern
	}
	return strings.ReplaceAll(pattern, `\\`, "/")
}

// RelativeToRoot returns path relative to root with forward slashes and no
// leading "./", as reported in results.
func RelativeToRoot(root string, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = strings.TrimPrefix(path, root)
	}
	rel = filepath.ToSlash(rel)
	rel = strings.TrimPrefix(rel, "./")
	return strings.TrimPrefix(rel, "/")
}

// ResolveAbsoluteDir makes dir absolute against the process working directory.
func ResolveAbsoluteDir(dir string) (string, error) {
	if filepath.IsAbs(dir) {
		return filepath.Clean(dir), nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(wd, dir), nil
}

// ResolvePathInDir resolves a possibly relative path against dir.
func ResolvePathInDir(dir string, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(dir, path)
}
