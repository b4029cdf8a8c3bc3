package main

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

const gitIgnoreFileName = ".gitignore"

func parseIgnoreFile(fileContent string, dirPath string) ([]GlobMatcher, error) {
	lines := strings.Split(fileContent, "\n")

	sanitizedLines := make([]string, 0, len(lines))

	for _, line := range lines {
		trimmedLined := strings.TrimSpace(line)
		if len(trimmedLined) > 0 && !strings.HasPrefix(trimmedLined, "#") {
			sanitizedLines = append(sanitizedLines, trimmedLined)
		}
	}

	return CreateGlobMatchers(sanitizedLines, dirPath)
}

// FindAndProcessGitIgnoreFilesUpToRepoRoot collects .gitignore matchers from dirPath
// up to the closest directory containing .git, outermost first. Outside of a git
// repository nothing is collected and inRepo is false.
func FindAndProcessGitIgnoreFilesUpToRepoRoot(dirPath string, logger *slog.Logger) (globMatchers []GlobMatcher, inRepo bool) {
	chain := [][]GlobMatcher{}
	cur := filepath.Clean(dirPath)

	for {
		gitignoreFile, gitignoreError := os.ReadFile(filepath.Join(cur, gitIgnoreFileName))
		if gitignoreError == nil {
			matchers, err := parseIgnoreFile(string(gitignoreFile), cur)
			if err != nil {
				logger.Debug("skipping malformed .gitignore", "dir", cur, "error", err)
			} else {
				chain = append(chain, matchers)
			}
		}

		// .git is a file in worktrees and submodules
		if _, err := os.Stat(filepath.Join(cur, ".git")); err == nil {
			inRepo = true
			break
		}

		parent := filepath.Dir(cur)
		if parent == cur {
			break
		}
		cur = parent
	}

	if !inRepo {
		logger.Debug("not inside a git repository, .gitignore files are not applied", "dir", dirPath)
		return nil, false
	}

	for i := len(chain) - 1; i >= 0; i-- {
		globMatchers = append(globMatchers, chain[i]...)
	}
	return globMatchers, true
}

// IsModuleDir reports whether dir holds a package.json, i.e. it is the root of a package.
func IsModuleDir(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, packageJsonFileName))
	return err == nil && info.Mode().IsRegular()
}

type fileWalker struct {
	root   string
	policy *Policy
	logger *slog.Logger
	out    chan<- string
	// nested .gitignore files are read only inside a git repository
	inGitRepo bool
	// custom ignore file name looked up in every descended directory
	nestedIgnoreName string
}

// WalkFiles sends the absolute path of every candidate source file below root to out.
// Directories matching the policy and nested package roots are not descended into.
// Unreadable entries are logged and skipped unless the policy is strict.
func WalkFiles(ctx context.Context, root string, policy *Policy, logger *slog.Logger, out chan<- string) error {
	if logger == nil {
		logger = slog.Default()
	}
	w := &fileWalker{
		root:             root,
		policy:           policy,
		logger:           logger,
		out:              out,
		nestedIgnoreName: nestedIgnoreFileName(policy.IgnorePath),
	}

	matchers := policy.PathMatchers
	if policy.UseGitIgnore {
		var gitIgnoreMatchers []GlobMatcher
		gitIgnoreMatchers, w.inGitRepo = FindAndProcessGitIgnoreFilesUpToRepoRoot(root, logger)
		matchers = append(gitIgnoreMatchers, matchers...)
	}

	return w.walkDir(ctx, root, matchers)
}

func (w *fileWalker) walkError(path string, err error) error {
	if w.policy.StrictWalk {
		return fmt.Errorf("failed to walk %s: %w", path, err)
	}
	w.logger.Debug("walk error, skipping entry", "path", path, "error", err)
	return nil
}

func (w *fileWalker) walkDir(ctx context.Context, directory string, parentGlobMatchers []GlobMatcher) error {
	entries, err := os.ReadDir(directory)
	if err != nil {
		return w.walkError(directory, err)
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}

		entryFilePath := filepath.Join(directory, entry.Name())
		entryType := entry.Type()

		if entryType&fs.ModeSymlink != 0 {
			target, err := os.Stat(entryFilePath)
			if err != nil {
				if walkErr := w.walkError(entryFilePath, err); walkErr != nil {
					return walkErr
				}
				continue
			}
			// symlinked directories are not followed
			if !target.Mode().IsRegular() {
				continue
			}
			entryType = 0
		}

		if entryType.IsDir() {
			if MatchesAnyGlobMatcher(entryFilePath, true, parentGlobMatchers) {
				continue
			}
			if IsModuleDir(entryFilePath) {
				w.logger.Debug("skipping nested package", "dir", entryFilePath)
				continue
			}

			ignoreGlobs := parentGlobMatchers
			if w.inGitRepo {
				ignoreGlobs = w.withNestedIgnoreFile(entryFilePath, gitIgnoreFileName, ignoreGlobs)
			}
			if w.nestedIgnoreName != "" {
				ignoreGlobs = w.withNestedIgnoreFile(entryFilePath, w.nestedIgnoreName, ignoreGlobs)
			}

			if err := w.walkDir(ctx, entryFilePath, ignoreGlobs); err != nil {
				return err
			}
			continue
		}

		if !entryType.IsRegular() {
			continue
		}

		if MatchesAnyGlobMatcher(entryFilePath, false, parentGlobMatchers) {
			continue
		}

		select {
		case w.out <- entryFilePath:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return nil
}

// nestedIgnoreFileName returns the custom ignore file name to look up below the
// root. Only a bare file name is looked up, a path names a single file.
func nestedIgnoreFileName(ignorePath string) string {
	if ignorePath == "" || filepath.IsAbs(ignorePath) || strings.ContainsAny(ignorePath, `/\`) {
		return ""
	}
	return ignorePath
}

func (w *fileWalker) withNestedIgnoreFile(dir string, fileName string, parentGlobMatchers []GlobMatcher) []GlobMatcher {
	content, readErr := os.ReadFile(filepath.Join(dir, fileName))
	if readErr != nil {
		return parentGlobMatchers
	}
	ignoreGlobs, err := parseIgnoreFile(string(content), dir)
	if err != nil {
		w.logger.Debug("skipping malformed ignore file", "file", filepath.Join(dir, fileName), "error", err)
		return parentGlobMatchers
	}
	if len(ignoreGlobs) == 0 {
		return parentGlobMatchers
	}
	return append(slices.Clip(parentGlobMatchers), ignoreGlobs...)
}

// ListFiles walks root and returns the root-relative paths in walk order.
func ListFiles(ctx context.Context, policy *Policy, logger *slog.Logger) ([]string, error) {
	root := policy.Directory
	ch := make(chan string, 64)
	errCh := make(chan error, 1)

	go func() {
		defer close(ch)
		errCh <- WalkFiles(ctx, root, policy, logger, ch)
	}()

	files := []string{}
	for filePath := range ch {
		files = append(files, RelativeToRoot(root, filePath))
	}

	if err := <-errCh; err != nil {
		return nil, err
	}
	return files, nil
}
