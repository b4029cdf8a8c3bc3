package main

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

// GlobMatcher is a single compiled gitignore-style pattern rooted at patternRoot.
type GlobMatcher struct {
	globPattern glob.Glob
	inputString string
	patternRoot string
	// pattern without inner `/`: may match at any depth
	matchAtAnyDepth bool
	directoryOnly   bool
	negated         bool
}

// CreateGlobMatchers compiles gitignore-style patterns. Patterns are matched
// against paths relative to patternsRoot. Blank lines and `#` comments are skipped.
func CreateGlobMatchers(patterns []string, patternsRoot string) ([]GlobMatcher, error) {
	globMatchers := make([]GlobMatcher, 0, len(patterns))
	patternRootNorm := NormalizePathForInternal(patternsRoot)
	if patternRootNorm != "" && !strings.HasSuffix(patternRootNorm, "/") {
		patternRootNorm = patternRootNorm + "/"
	}

	for _, inputPattern := range patterns {
		pattern := strings.TrimSpace(inputPattern)
		if pattern == "" || strings.HasPrefix(pattern, "#") {
			continue
		}

		item := GlobMatcher{
			inputString: pattern,
			patternRoot: patternRootNorm,
		}

		if strings.HasPrefix(pattern, "!") {
			item.negated = true
			pattern = pattern[1:]
		} else if strings.HasPrefix(pattern, `\!`) || strings.HasPrefix(pattern, `\#`) {
			pattern = pattern[1:]
		}

		// in gitignore entry with `/` suffix matches only directories
		if strings.HasSuffix(pattern, "/") {
			item.directoryOnly = true
			pattern = strings.TrimRight(pattern, "/")
		}

		pattern = NormalizeGlobPattern(pattern)

		switch {
		case strings.HasPrefix(pattern, "/"):
			pattern = strings.TrimLeft(pattern, "/")
		case strings.HasPrefix(pattern, "**/"):
			// `**/` prefix has the same meaning as a pattern matching at any depth
			pattern = strings.TrimPrefix(pattern, "**/")
			item.matchAtAnyDepth = true
		case !strings.Contains(pattern, "/"):
			item.matchAtAnyDepth = true
		}

		if pattern == "" {
			continue
		}

		compiled, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("malformed ignore pattern %q: %w", inputPattern, err)
		}
		item.globPattern = compiled
		globMatchers = append(globMatchers, item)
	}
	return globMatchers, nil
}

func (m GlobMatcher) matches(relativePath string, isDir bool) bool {
	if m.directoryOnly && !isDir {
		return false
	}
	if m.globPattern.Match(relativePath) {
		return true
	}
	if !m.matchAtAnyDepth {
		return false
	}
	for i := 0; i < len(relativePath); i++ {
		if relativePath[i] == '/' && m.globPattern.Match(relativePath[i+1:]) {
			return true
		}
	}
	return false
}

// MatchesAnyGlobMatcher reports whether filePath is excluded by the matchers.
// The last matching pattern wins, so a later `!pattern` re-includes the path.
func MatchesAnyGlobMatcher(filePath string, isDir bool, matchers []GlobMatcher) bool {
	fileInternal := NormalizePathForInternal(filePath)
	excluded := false
	for _, matcher := range matchers {
		if !strings.HasPrefix(fileInternal, matcher.patternRoot) {
			continue
		}
		fileWithoutPrefix := strings.TrimPrefix(fileInternal, matcher.patternRoot)
		if fileWithoutPrefix == "" {
			continue
		}
		if matcher.matches(fileWithoutPrefix, isDir) {
			excluded = !matcher.negated
		}
	}
	return excluded
}

// MatchesPathOrParents also reports a path as excluded when one of its parent
// directories below the matchers root is excluded, as git does.
func MatchesPathOrParents(filePath string, isDir bool, matchers []GlobMatcher) bool {
	fileInternal := NormalizePathForInternal(filePath)
	for i := 1; i < len(fileInternal); i++ {
		if fileInternal[i] == '/' && MatchesAnyGlobMatcher(fileInternal[:i], true, matchers) {
			return true
		}
	}
	return MatchesAnyGlobMatcher(fileInternal, isDir, matchers)
}

// NameMatcher matches dependency names, e.g. `eslint-*` or `@types/*`.
type NameMatcher struct {
	globs []glob.Glob
}

func CreateNameMatcher(patterns []string) (*NameMatcher, error) {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, pattern := range patterns {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("malformed ignore match %q: %w", pattern, err)
		}
		globs = append(globs, g)
	}
	return &NameMatcher{globs: globs}, nil
}

func (m *NameMatcher) Match(name string) bool {
	if m == nil {
		return false
	}
	for _, g := range m.globs {
		if g.Match(name) {
			return true
		}
	}
	return false
}
