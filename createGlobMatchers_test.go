package main

import (
	"testing"

	"gotest.tools/v3/assert"
)

func mustCreateGlobMatchers(t *testing.T, patterns []string, root string) []GlobMatcher {
	t.Helper()
	globMatchers, err := CreateGlobMatchers(patterns, root)
	assert.NilError(t, err)
	return globMatchers
}

func TestGlobMatchingForDirectoryWithoutWildcard(t *testing.T) {
	t.Run("Directory With Comma and trailing slash in root dir", func(t *testing.T) {
		root := "/fs/root/"
		pattern := ".next/"
		filePath := "/fs/root/.next/static/file.js"
		globMatchers := mustCreateGlobMatchers(t, []string{pattern}, root)

		matches := MatchesPathOrParents(filePath, false, globMatchers)

		if !matches {
			t.Errorf(`Pattern "%s" not matching path "%s"`, pattern, filePath)
		}
	})

	t.Run("Directory With Comma without slash in root dir", func(t *testing.T) {
		root := "/fs/root/"
		pattern := ".next"
		filePath := "/fs/root/.next/static/file.js"
		globMatchers := mustCreateGlobMatchers(t, []string{pattern}, root)
		matches := MatchesPathOrParents(filePath, false, globMatchers)

		if !matches {
			t.Errorf(`Pattern "%s" not matching path "%s"`, pattern, filePath)
		}
	})

	t.Run("Directory With Comma without trailing slash in sub dir", func(t *testing.T) {
		root := "/fs/root/"
		pattern := ".next"
		filePath := "/fs/root/sub/sub2/.next/static/file.js"
		globMatchers := mustCreateGlobMatchers(t, []string{pattern}, root)
		matches := MatchesPathOrParents(filePath, false, globMatchers)

		if !matches {
			t.Errorf(`Pattern "%s" not matching path "%s"`, pattern, filePath)
		}
	})

	t.Run("Directory With Comma with trailing slash in sub dir", func(t *testing.T) {
		root := "/fs/root/"
		pattern := ".next/"
		filePath := "/fs/root/sub/sub2/.next/static/file.js"
		globMatchers := mustCreateGlobMatchers(t, []string{pattern}, root)
		matches := MatchesPathOrParents(filePath, false, globMatchers)

		if !matches {
			t.Errorf(`Pattern "%s" not matching path "%s"`, pattern, filePath)
		}
	})

	t.Run("Trailing slash does not match a file of the same name", func(t *testing.T) {
		root := "/fs/root/"
		pattern := "build/"
		filePath := "/fs/root/src/build"
		globMatchers := mustCreateGlobMatchers(t, []string{pattern}, root)

		if MatchesPathOrParents(filePath, false, globMatchers) {
			t.Errorf(`Pattern "%s" is matching file "%s" but it should only match directories`, pattern, filePath)
		}
		if !MatchesPathOrParents(filePath, true, globMatchers) {
			t.Errorf(`Pattern "%s" not matching directory "%s"`, pattern, filePath)
		}
	})
}

func TestGlobMatchingForFileNameWithoutWildcard(t *testing.T) {
	t.Run("Filename in root dir", func(t *testing.T) {
		root := "/fs/root/"
		pattern := "file.js"
		filePath := "/fs/root/file.js"
		globMatchers := mustCreateGlobMatchers(t, []string{pattern}, root)

		matches := MatchesAnyGlobMatcher(filePath, false, globMatchers)

		if !matches {
			t.Errorf(`Pattern "%s" not matching path "%s"`, pattern, filePath)
		}
	})

	t.Run("Filename in sub dir", func(t *testing.T) {
		root := "/fs/root/"
		pattern := "file.js"
		filePath := "/fs/root/sub/sub2/file.js"
		globMatchers := mustCreateGlobMatchers(t, []string{pattern}, root)

		matches := MatchesAnyGlobMatcher(filePath, false, globMatchers)

		if !matches {
			t.Errorf(`Pattern "%s" not matching path "%s"`, pattern, filePath)
		}
	})

	t.Run("Anchored filename only matches in root dir", func(t *testing.T) {
		root := "/fs/root/"
		pattern := "/file.js"
		globMatchers := mustCreateGlobMatchers(t, []string{pattern}, root)

		assert.Assert(t, MatchesAnyGlobMatcher("/fs/root/file.js", false, globMatchers))
		assert.Assert(t, !MatchesAnyGlobMatcher("/fs/root/sub/file.js", false, globMatchers))
	})
}

func TestGlobMatchingForFileUsingDirectoryWildcard(t *testing.T) {
	t.Run("File in root dir", func(t *testing.T) {
		root := "/fs/root/"
		pattern := "**/*.log"
		filePath := "/fs/root/data.log"
		globMatchers := mustCreateGlobMatchers(t, []string{pattern}, root)

		matches := MatchesAnyGlobMatcher(filePath, false, globMatchers)

		if !matches {
			t.Errorf(`Pattern "%s" not matching path "%s"`, pattern, filePath)
		}
	})
	t.Run("file in sub dir", func(t *testing.T) {
		root := "/fs/root/"
		pattern := "**/*.log"
		filePath := "/fs/root/data/sub/file.log"
		globMatchers := mustCreateGlobMatchers(t, []string{pattern}, root)

		matches := MatchesAnyGlobMatcher(filePath, false, globMatchers)

		if !matches {
			t.Errorf(`Pattern "%s" not matching path "%s"`, pattern, filePath)
		}
	})
	t.Run("extension wildcard at any depth", func(t *testing.T) {
		root := "/fs/root/"
		globMatchers := mustCreateGlobMatchers(t, []string{"*.png"}, root)

		assert.Assert(t, MatchesAnyGlobMatcher("/fs/root/logo.png", false, globMatchers))
		assert.Assert(t, MatchesAnyGlobMatcher("/fs/root/assets/img/logo.png", false, globMatchers))
		assert.Assert(t, !MatchesAnyGlobMatcher("/fs/root/assets/logo.png.ts", false, globMatchers))
	})
}

func TestGlobMatchingShouldNotMatch(t *testing.T) {
	t.Run("Should not match nested dir/file pattern without wildcards", func(t *testing.T) {
		root := "/fs/root/"
		pattern := "bin/file"
		filePath := "/fs/root/data/bin/file"
		globMatchers := mustCreateGlobMatchers(t, []string{pattern}, root)

		matches := MatchesAnyGlobMatcher(filePath, false, globMatchers)

		if matches {
			t.Errorf(`Pattern "%s" is matching path "%s" but it should not`, pattern, filePath)
		}
	})

	t.Run("Should not match dir/file by part of the name", func(t *testing.T) {
		root := "/fs/root/"
		pattern := "logs"
		filePath := "/fs/root/data/my-logs"
		globMatchers := mustCreateGlobMatchers(t, []string{pattern}, root)

		matches := MatchesAnyGlobMatcher(filePath, false, globMatchers)

		if matches {
			t.Errorf(`Pattern "%s" is matching path "%s" but it should not`, pattern, filePath)
		}
	})

	t.Run("Should not match paths outside of the pattern root", func(t *testing.T) {
		root := "/fs/root/"
		pattern := "file.js"
		filePath := "/fs/other/file.js"
		globMatchers := mustCreateGlobMatchers(t, []string{pattern}, root)

		if MatchesAnyGlobMatcher(filePath, false, globMatchers) {
			t.Errorf(`Pattern "%s" is matching path "%s" outside of its root`, pattern, filePath)
		}
	})
}

func TestGlobMatchingNegation(t *testing.T) {
	root := "/fs/root/"

	t.Run("later negation re-includes a path", func(t *testing.T) {
		globMatchers := mustCreateGlobMatchers(t, []string{"*.js", "!keep.js"}, root)

		assert.Assert(t, MatchesAnyGlobMatcher("/fs/root/src/drop.js", false, globMatchers))
		assert.Assert(t, !MatchesAnyGlobMatcher("/fs/root/src/keep.js", false, globMatchers))
	})

	t.Run("last matching pattern wins", func(t *testing.T) {
		globMatchers := mustCreateGlobMatchers(t, []string{"!keep.js", "*.js"}, root)

		assert.Assert(t, MatchesAnyGlobMatcher("/fs/root/src/keep.js", false, globMatchers))
	})

	t.Run("escaped bang is a literal", func(t *testing.T) {
		globMatchers := mustCreateGlobMatchers(t, []string{`\!important.js`}, root)

		assert.Assert(t, MatchesAnyGlobMatcher("/fs/root/!important.js", false, globMatchers))
	})
}

func TestCreateGlobMatchersSkipsCommentsAndBlankLines(t *testing.T) {
	globMatchers := mustCreateGlobMatchers(t, []string{"", "  ", "# comment", "dist"}, "/fs/root")

	assert.Equal(t, len(globMatchers), 1)
	assert.Assert(t, MatchesAnyGlobMatcher("/fs/root/dist", true, globMatchers))
}

func TestCreateGlobMatchersRejectsMalformedPattern(t *testing.T) {
	_, err := CreateGlobMatchers([]string{"src/[abc"}, "/fs/root")

	assert.ErrorContains(t, err, `malformed ignore pattern "src/[abc"`)
}

func TestNameMatcher(t *testing.T) {
	matcher, err := CreateNameMatcher([]string{"o*", "@types/*", "eslint-plugin-?"})
	assert.NilError(t, err)

	tests := []struct {
		name     string
		expected bool
	}{
		{"optimist", true},
		{"@types/node", true},
		{"eslint-plugin-a", true},
		{"eslint-plugin-react", false},
		{"react", false},
		{"@babel/core", false},
	}

	for _, tt := range tests {
		if got := matcher.Match(tt.name); got != tt.expected {
			t.Errorf("Match(%q) = %v, want %v", tt.name, got, tt.expected)
		}
	}

	var nilMatcher *NameMatcher
	assert.Assert(t, !nilMatcher.Match("anything"))

	_, err = CreateNameMatcher([]string{"[oops"})
	assert.ErrorContains(t, err, `malformed ignore match "[oops"`)
}
