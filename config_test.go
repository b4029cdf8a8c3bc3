package main

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"gotest.tools/v3/assert"
)

func TestNewConfigDefaults(t *testing.T) {
	config := NewConfig("/project")

	if config.Directory != "/project" {
		t.Errorf("Expected directory '/project', got '%s'", config.Directory)
	}
	if !config.UseGitIgnore {
		t.Errorf("Expected gitignore to be honored by default")
	}
	if config.IgnoreBinPackage || config.SkipMissing || config.AppendIgnorePatterns || config.StrictWalk {
		t.Errorf("Expected boolean options to default to false, got %+v", config)
	}
	if config.Jobs < 1 {
		t.Errorf("Expected at least one job, got %d", config.Jobs)
	}
	if !reflect.DeepEqual(config.EffectiveIgnorePatterns(), DefaultIgnorePatterns()) {
		t.Errorf("Expected default ignore patterns, got %v", config.EffectiveIgnorePatterns())
	}
}

func TestDefaultIgnorePatternsIsACopy(t *testing.T) {
	patterns := DefaultIgnorePatterns()
	patterns[0] = "changed"

	if DefaultIgnorePatterns()[0] == "changed" {
		t.Errorf("Expected DefaultIgnorePatterns to return a copy")
	}
}

func TestEffectiveIgnorePatterns(t *testing.T) {
	t.Run("user patterns replace the defaults", func(t *testing.T) {
		config := NewConfig("/project").WithIgnorePatterns([]string{"*.test.js", "fixtures/"})

		assert.DeepEqual(t, config.EffectiveIgnorePatterns(), []string{"*.test.js", "fixtures/"})
	})

	t.Run("empty user patterns disable the defaults", func(t *testing.T) {
		config := NewConfig("/project").WithIgnorePatterns([]string{})

		assert.Equal(t, len(config.EffectiveIgnorePatterns()), 0)
	})

	t.Run("appended patterns extend the defaults without duplicates", func(t *testing.T) {
		config := NewConfig("/project").WithAppendIgnorePatterns([]string{"dist", "coverage"})

		expected := append(DefaultIgnorePatterns(), "coverage")
		assert.DeepEqual(t, config.EffectiveIgnorePatterns(), expected)
	})
}

func TestConfigCompile(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		policy, err := NewConfig("/project").WithIgnoreMatches([]string{"eslint-*"}).Compile()
		assert.NilError(t, err)

		assert.Equal(t, len(policy.PathMatchers), len(DefaultIgnorePatterns()))
		assert.Assert(t, policy.IgnoreMatches.Match("eslint-plugin-react"))
		assert.Assert(t, !policy.IgnoreMatches.Match("react"))
	})

	t.Run("malformed path pattern", func(t *testing.T) {
		_, err := NewConfig("/project").WithIgnorePatterns([]string{"src/[abc"}).Compile()
		assert.Assert(t, err != nil)
	})

	t.Run("malformed dependency pattern", func(t *testing.T) {
		_, err := NewConfig("/project").WithIgnoreMatches([]string{"[oops"}).Compile()
		assert.Assert(t, err != nil)
	})

	t.Run("ignore file is read relative to the directory", func(t *testing.T) {
		root := t.TempDir()
		createFiles(t, root, map[string]string{
			"config/.depcheckignore": "fixtures/\n",
		})

		policy, err := NewConfig(root).WithIgnorePath("config/.depcheckignore").Compile()
		assert.NilError(t, err)

		assert.Equal(t, len(policy.PathMatchers), len(DefaultIgnorePatterns())+1)
		assert.Assert(t, MatchesPathOrParents(filepath.Join(root, "fixtures", "a.js"), false, policy.PathMatchers))
	})
}

func TestParseRcConfig(t *testing.T) {
	t.Run("json with comments", func(t *testing.T) {
		content := []byte(`{
			// dependencies that are used by tooling only
			"ignoreMatches": ["eslint-*", "@types/*"],
			"ignoreBinPackage": true,
			"ignorePatterns": ["fixtures/"],
		}`)

		rc, err := ParseRcConfig(content, ".depcheckrc.json")
		assert.NilError(t, err)

		assert.DeepEqual(t, rc.IgnoreMatches, []string{"eslint-*", "@types/*"})
		assert.DeepEqual(t, rc.IgnorePatterns, []string{"fixtures/"})
		assert.Assert(t, rc.IgnoreBinPackage != nil && *rc.IgnoreBinPackage)
		assert.Assert(t, rc.SkipMissing == nil)
	})

	t.Run("yaml", func(t *testing.T) {
		content := []byte("ignores:\n  - jest\nskipMissing: true\nuseGitIgnore: false\n")

		rc, err := ParseRcConfig(content, ".depcheckrc.yml")
		assert.NilError(t, err)

		assert.DeepEqual(t, rc.Ignores, []string{"jest"})
		assert.Assert(t, rc.SkipMissing != nil && *rc.SkipMissing)
		assert.Assert(t, rc.UseGitIgnore != nil && !*rc.UseGitIgnore)
	})

	t.Run("file without extension may be json", func(t *testing.T) {
		rc, err := ParseRcConfig([]byte(`{"ignorePath": ".gitignore"}`), ".depcheckrc")
		assert.NilError(t, err)

		assert.Equal(t, rc.IgnorePath, ".gitignore")
	})

	t.Run("file without extension may be yaml", func(t *testing.T) {
		rc, err := ParseRcConfig([]byte("ignoreMatches: [\"a\", \"b\"]\nappendIgnorePatterns: true\n"), ".depcheckrc")
		assert.NilError(t, err)

		assert.DeepEqual(t, rc.IgnoreMatches, []string{"a", "b"})
		assert.Assert(t, rc.AppendIgnorePatterns != nil && *rc.AppendIgnorePatterns)
	})

	t.Run("invalid content", func(t *testing.T) {
		_, err := ParseRcConfig([]byte("ignoreMatches: [unclosed"), ".depcheckrc.yaml")
		assert.Assert(t, err != nil)
	})

	t.Run("wrong field type", func(t *testing.T) {
		_, err := ParseRcConfig([]byte(`{"ignoreMatches": "eslint"}`), ".depcheckrc.json")
		assert.Assert(t, err != nil)
	})

	t.Run("empty ignore pattern", func(t *testing.T) {
		_, err := ParseRcConfig([]byte(`{"ignorePatterns": ["dist", "  "]}`), ".depcheckrc.json")
		assert.ErrorContains(t, err, "ignorePatterns[1]: empty pattern")
	})
}

func TestConfigApply(t *testing.T) {
	t.Run("nil rc leaves the config untouched", func(t *testing.T) {
		config := NewConfig("/project")

		assert.DeepEqual(t, config.Apply(nil), config)
	})

	t.Run("set values override the defaults", func(t *testing.T) {
		enabled := true
		disabled := false
		rc := &RcConfig{
			IgnoreBinPackage: &enabled,
			SkipMissing:      &enabled,
			UseGitIgnore:     &disabled,
			IgnorePatterns:   []string{"fixtures/"},
			IgnorePath:       ".depcheckignore",
		}

		config := NewConfig("/project").Apply(rc)

		assert.Assert(t, config.IgnoreBinPackage)
		assert.Assert(t, config.SkipMissing)
		assert.Assert(t, !config.UseGitIgnore)
		assert.DeepEqual(t, config.IgnorePatterns, []string{"fixtures/"})
		assert.Equal(t, config.IgnorePath, ".depcheckignore")
	})

	t.Run("ignores are merged into ignoreMatches", func(t *testing.T) {
		rc := &RcConfig{
			IgnoreMatches: []string{"eslint-*"},
			Ignores:       []string{"jest"},
		}

		config := NewConfig("/project").Apply(rc)

		assert.DeepEqual(t, config.IgnoreMatches, []string{"eslint-*", "jest"})
		assert.DeepEqual(t, rc.IgnoreMatches, []string{"eslint-*"})
	})

	t.Run("unset values keep the defaults", func(t *testing.T) {
		config := NewConfig("/project").Apply(&RcConfig{})

		assert.DeepEqual(t, config, NewConfig("/project"))
	})
}

func TestFindRcFile(t *testing.T) {
	t.Run("no rc file", func(t *testing.T) {
		_, ok := FindRcFile(t.TempDir())
		if ok {
			t.Errorf("Expected no rc file to be found")
		}
	})

	t.Run("first candidate wins", func(t *testing.T) {
		root := t.TempDir()
		createFiles(t, root, map[string]string{
			".depcheckrc.yml":  "skipMissing: true\n",
			".depcheckrc.json": `{"skipMissing": false}`,
		})

		path, ok := FindRcFile(root)
		if !ok {
			t.Fatalf("Expected an rc file to be found")
		}
		if filepath.Base(path) != ".depcheckrc.json" {
			t.Errorf("Expected .depcheckrc.json, got %s", path)
		}
	})

	t.Run("directories are not rc files", func(t *testing.T) {
		root := t.TempDir()
		if err := os.Mkdir(filepath.Join(root, ".depcheckrc"), 0755); err != nil {
			t.Fatalf("Failed to create dir: %v", err)
		}

		_, ok := FindRcFile(root)
		if ok {
			t.Errorf("Expected a directory to be skipped")
		}
	})
}

func TestLoadRcFile(t *testing.T) {
	root := t.TempDir()
	createFiles(t, root, map[string]string{
		".depcheckrc.yaml": "ignoreMatches:\n  - 'o*'\n",
		"broken.json":      `{"ignoreMatches": [`,
	})

	rc, err := LoadRcFile(filepath.Join(root, ".depcheckrc.yaml"))
	assert.NilError(t, err)
	assert.DeepEqual(t, rc.IgnoreMatches, []string{"o*"})

	_, err = LoadRcFile(filepath.Join(root, "broken.json"))
	if err == nil || !strings.Contains(err.Error(), "failed to parse config") {
		t.Errorf("Expected parse error, got %v", err)
	}

	_, err = LoadRcFile(filepath.Join(root, "missing.json"))
	assert.Assert(t, os.IsNotExist(err))
}
