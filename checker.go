package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"
)

// FileUsage is the classification result of a single source file.
type FileUsage struct {
	File         string
	Dependencies []string
	// Parsed is false for unreadable files and files without a parser
	Parsed bool
}

type Checker struct {
	policy     *Policy
	pkg        *Package
	classifier *Classifier
	logger     *slog.Logger
}

func NewChecker(policy *Policy, pkg *Package, installed InstalledPackageLoader, logger *slog.Logger) *Checker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Checker{
		policy:     policy,
		pkg:        pkg,
		classifier: NewClassifier(pkg, installed, policy.IgnoreBinPackage),
		logger:     logger,
	}
}

// LoadChecker reads the project manifest and wires the node_modules loader.
func LoadChecker(policy *Policy, logger *slog.Logger) (*Checker, error) {
	pkg, err := LoadPackage(policy.Directory)
	if err != nil {
		return nil, fmt.Errorf("failed to read package json from %s: %w", filepath.Join(policy.Directory, packageJsonFileName), err)
	}
	return NewChecker(policy, pkg, NewNodeModulesLoader(policy.Directory, logger), logger), nil
}

// Check walks the project, classifies every import and compiles the report.
func (c *Checker) Check(ctx context.Context) (*CheckResult, error) {
	usage, filesChecked, err := c.CollectUsage(ctx)
	if err != nil {
		return nil, err
	}
	result := CompileResult(usage, c.pkg, c.policy, c.classifier)
	result.FilesChecked = filesChecked
	return result, nil
}

// CollectUsage runs the walker, a pool of parsing workers, and a single
// aggregating owner of the usage map. The count covers source files only.
func (c *Checker) CollectUsage(ctx context.Context) (UsageMap, int, error) {
	jobs := max(c.policy.Jobs, 1)
	root := c.policy.Directory

	g, gctx := errgroup.WithContext(ctx)
	paths := make(chan string, 2*jobs)
	results := make(chan FileUsage, 2*jobs)

	g.Go(func() error {
		defer close(paths)
		return WalkFiles(gctx, root, c.policy, c.logger, paths)
	})

	var workers sync.WaitGroup
	for range jobs {
		workers.Add(1)
		g.Go(func() error {
			defer workers.Done()
			for filePath := range paths {
				if err := gctx.Err(); err != nil {
					return err
				}
				fileUsage := c.processFile(filePath)
				select {
				case results <- fileUsage:
				case <-gctx.Done():
					return gctx.Err()
				}
			}
			return nil
		})
	}

	go func() {
		workers.Wait()
		close(results)
	}()

	usage := UsageMap{}
	filesChecked := 0
	for fileUsage := range results {
		if fileUsage.Parsed {
			filesChecked++
		}
		for _, dependency := range fileUsage.Dependencies {
			usage.Add(dependency, fileUsage.File)
		}
	}

	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return usage, filesChecked, nil
}

func (c *Checker) processFile(filePath string) FileUsage {
	fileUsage := FileUsage{
		File:   RelativeToRoot(c.policy.Directory, filePath),
		Parsed: IsSupportedSourceFile(filePath),
	}

	if !fileUsage.Parsed {
		c.logger.Debug("no parser for file, skipping", "file", fileUsage.File)
		return fileUsage
	}

	specifiers, err := ParseFile(filePath)
	if err != nil {
		c.logger.Debug("failed to parse file", "file", fileUsage.File, "error", err)
		fileUsage.Parsed = false
		return fileUsage
	}

	dependencies := []string{}
	for _, specifier := range specifiers {
		dependencies = append(dependencies, c.classifier.Classify(specifier)...)
	}
	slices.Sort(dependencies)
	fileUsage.Dependencies = slices.Compact(dependencies)
	return fileUsage
}
