package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

var defaultIgnorePatterns = []string{
	".git",
	".svn",
	".hg",
	".idea",
	"node_modules",
	"dist",
	"build",
	"bower_components",
	// Images
	"*.png",
	"*.gif",
	"*.jpg",
	"*.jpeg",
	"*.svg",
	// Fonts
	"*.woff",
	"*.woff2",
	"*.eot",
	"*.ttf",
	// Archives
	"*.zip",
	"*.gz",
	// Videos
	"*.mp4",
}

// DefaultIgnorePatterns returns a copy of the built-in path exclusion patterns.
func DefaultIgnorePatterns() []string {
	return slices.Clone(defaultIgnorePatterns)
}

// Config is the checker policy. Build it with NewConfig and the With* setters.
type Config struct {
	Directory        string
	IgnoreBinPackage bool
	SkipMissing      bool
	// IgnorePatterns replace the defaults unless AppendIgnorePatterns is set.
	IgnorePatterns       []string
	AppendIgnorePatterns bool
	// IgnoreMatches are globs over dependency names, never over paths.
	IgnoreMatches []string
	IgnorePath    string
	UseGitIgnore  bool
	StrictWalk    bool
	Jobs          int
}

func NewConfig(directory string) Config {
	return Config{
		Directory:      directory,
		IgnorePatterns: DefaultIgnorePatterns(),
		UseGitIgnore:   true,
		Jobs:           runtime.GOMAXPROCS(0),
	}
}

func (c Config) WithIgnorePatterns(patterns []string) Config {
	c.IgnorePatterns = patterns
	return c
}

func (c Config) WithAppendIgnorePatterns(patterns []string) Config {
	c.IgnorePatterns = patterns
	c.AppendIgnorePatterns = true
	return c
}

func (c Config) WithIgnoreMatches(matches []string) Config {
	c.IgnoreMatches = matches
	return c
}

func (c Config) WithIgnoreBinPackage(ignoreBinPackage bool) Config {
	c.IgnoreBinPackage = ignoreBinPackage
	return c
}

func (c Config) WithSkipMissing(skipMissing bool) Config {
	c.SkipMissing = skipMissing
	return c
}

func (c Config) WithIgnorePath(ignorePath string) Config {
	c.IgnorePath = ignorePath
	return c
}

func (c Config) WithGitIgnore(useGitIgnore bool) Config {
	c.UseGitIgnore = useGitIgnore
	return c
}

func (c Config) WithStrictWalk(strict bool) Config {
	c.StrictWalk = strict
	return c
}

func (c Config) WithJobs(jobs int) Config {
	c.Jobs = jobs
	return c
}

// EffectiveIgnorePatterns returns the path patterns after override/append resolution.
func (c Config) EffectiveIgnorePatterns() []string {
	if c.AppendIgnorePatterns {
		patterns := DefaultIgnorePatterns()
		for _, p := range c.IgnorePatterns {
			if !slices.Contains(patterns, p) {
				patterns = append(patterns, p)
			}
		}
		return patterns
	}
	return slices.Clone(c.IgnorePatterns)
}

// Policy holds the compiled matchers of a Config.
type Policy struct {
	Config
	PathMatchers  []GlobMatcher
	IgnoreMatches *NameMatcher
}

// Compile validates every pattern up front so no traversal starts with a bad config.
func (c Config) Compile() (*Policy, error) {
	pathMatchers, err := CreateGlobMatchers(c.EffectiveIgnorePatterns(), c.Directory)
	if err != nil {
		return nil, err
	}

	if c.IgnorePath != "" {
		ignoreFilePath := ResolvePathInDir(c.Directory, c.IgnorePath)
		content, err := os.ReadFile(ignoreFilePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read ignore file %s: %w", ignoreFilePath, err)
		}
		ignoreFileMatchers, err := parseIgnoreFile(string(content), c.Directory)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ignoreFilePath, err)
		}
		pathMatchers = append(pathMatchers, ignoreFileMatchers...)
	}

	nameMatcher, err := CreateNameMatcher(c.IgnoreMatches)
	if err != nil {
		return nil, err
	}

	return &Policy{
		Config:        c,
		PathMatchers:  pathMatchers,
		IgnoreMatches: nameMatcher,
	}, nil
}

// ---------------- rc file ----------------

const supportedConfigVersion = "^1"

var rcFileNames = []string{".depcheckrc", ".depcheckrc.json", ".depcheckrc.yml", ".depcheckrc.yaml"}

// RcConfig is the on-disk form of the policy. Nil fields are left untouched when applied.
type RcConfig struct {
	ConfigVersion        string   `json:"configVersion" yaml:"configVersion"`
	IgnoreBinPackage     *bool    `json:"ignoreBinPackage" yaml:"ignoreBinPackage"`
	SkipMissing          *bool    `json:"skipMissing" yaml:"skipMissing"`
	IgnorePatterns       []string `json:"ignorePatterns" yaml:"ignorePatterns"`
	AppendIgnorePatterns *bool    `json:"appendIgnorePatterns" yaml:"appendIgnorePatterns"`
	IgnoreMatches        []string `json:"ignoreMatches" yaml:"ignoreMatches"`
	Ignores              []string `json:"ignores" yaml:"ignores"`
	IgnorePath           string   `json:"ignorePath" yaml:"ignorePath"`
	UseGitIgnore         *bool    `json:"useGitIgnore" yaml:"useGitIgnore"`
}

// FindRcFile returns the first rc file present in dir.
func FindRcFile(dir string) (string, bool) {
	for _, name := range rcFileNames {
		candidate := filepath.Join(dir, name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
	}
	return "", false
}

func LoadRcFile(path string) (*RcConfig, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	rc, err := ParseRcConfig(content, filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return rc, nil
}

// ParseRcConfig decodes an rc file. fileName selects the format: `.json` is
// JSON with comments, `.yml`/`.yaml` is YAML, anything else tries JSON then YAML.
func ParseRcConfig(content []byte, fileName string) (*RcConfig, error) {
	var rc RcConfig
	ext := strings.ToLower(filepath.Ext(fileName))

	switch ext {
	case ".json":
		if err := json.Unmarshal(jsonc.ToJSON(content), &rc); err != nil {
			return nil, err
		}
	case ".yml", ".yaml":
		if err := yaml.Unmarshal(content, &rc); err != nil {
			return nil, err
		}
	default:
		if err := json.Unmarshal(jsonc.ToJSON(content), &rc); err != nil {
			rc = RcConfig{}
			if yamlErr := yaml.Unmarshal(content, &rc); yamlErr != nil {
				return nil, errors.Join(err, yamlErr)
			}
		}
	}

	if err := validateConfigVersion(rc.ConfigVersion); err != nil {
		return nil, err
	}
	for i, p := range rc.IgnorePatterns {
		if strings.TrimSpace(p) == "" {
			return nil, fmt.Errorf("ignorePatterns[%d]: empty pattern", i)
		}
	}
	return &rc, nil
}

func validateConfigVersion(version string) error {
	if version == "" {
		return nil
	}
	constraint, err := semver.NewConstraint(supportedConfigVersion)
	if err != nil {
		return err
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		return fmt.Errorf("invalid configVersion %q: %w", version, err)
	}
	if !constraint.Check(v) {
		return fmt.Errorf("unsupported configVersion %q, supported %s", version, supportedConfigVersion)
	}
	return nil
}

// Apply merges rc values into the config.
func (c Config) Apply(rc *RcConfig) Config {
	if rc == nil {
		return c
	}
	if rc.IgnoreBinPackage != nil {
		c.IgnoreBinPackage = *rc.IgnoreBinPackage
	}
	if rc.SkipMissing != nil {
		c.SkipMissing = *rc.SkipMissing
	}
	if rc.IgnorePatterns != nil {
		c.IgnorePatterns = rc.IgnorePatterns
	}
	if rc.AppendIgnorePatterns != nil {
		c.AppendIgnorePatterns = *rc.AppendIgnorePatterns
	}
	if rc.IgnoreMatches != nil || rc.Ignores != nil {
		c.IgnoreMatches = append(slices.Clone(rc.IgnoreMatches), rc.Ignores...)
	}
	if rc.IgnorePath != "" {
		c.IgnorePath = rc.IgnorePath
	}
	if rc.UseGitIgnore != nil {
		c.UseGitIgnore = *rc.UseGitIgnore
	}
	return c
}
