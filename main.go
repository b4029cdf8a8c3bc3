package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

// Version is overridden at build time with -ldflags "-X main.Version=...".
var Version = "0.1.0-dev"

var errDependencyIssues = errors.New("dependency issues found")

var (
	rootCmd = &cobra.Command{
		Use:   "depcheck",
		Short: "Find unused, missing and used dependencies of a JavaScript/TypeScript package",
		Long: `Scans the source files of a package, extracts every import, require and
export-from, and compares the imported packages with the ones declared in package.json.`,
		Example:       "depcheck -d ./my-app --ignore-matches='eslint-*,@types/*' --format text",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runCheckCmd,
	}
)

var docsCmd = &cobra.Command{
	Use:   "doc-gen",
	Short: "Generate CLI documentation",
	RunE: func(cmd *cobra.Command, args []string) error {
		return doc.GenMarkdownTree(rootCmd, docsOutputDir)
	},
}

var docsOutputDir string

// ---------------- logging flags ----------------

var (
	logVerbose bool
	logLevel   string
)

func commandLogger(cmd *cobra.Command) (*slog.Logger, error) {
	return NewLogger(cmd.ErrOrStderr(), logLevel, logVerbose)
}

// ---------------- policy flags ----------------

var (
	checkDirectory            string
	checkConfigFile           string
	checkIgnoreBinPackage     bool
	checkSkipMissing          bool
	checkIgnorePath           string
	checkIgnorePatterns       []string
	checkAppendIgnorePatterns bool
	checkIgnoreMatches        []string
	checkNoGitIgnore          bool
	checkStrict               bool
	checkJobs                 int
)

func addPolicyFlags(command *cobra.Command) {
	command.Flags().StringVarP(&checkDirectory, "directory", "d", ".",
		"Package directory to check")
	command.Flags().StringVar(&checkConfigFile, "config", "",
		"Path to a config file (default: .depcheckrc[.json|.yml|.yaml] in the directory)")
	command.Flags().BoolVar(&checkIgnoreBinPackage, "ignore-bin-package", false,
		"Ignore dependencies that ship executables")
	command.Flags().BoolVar(&checkSkipMissing, "skip-missing", false,
		"Do not report missing dependencies")
	command.Flags().StringVar(&checkIgnorePath, "ignore-path", "",
		"File with gitignore-style patterns of paths to skip, relative to the directory; a bare file name is also read in every subdirectory")
	command.Flags().StringSliceVar(&checkIgnorePatterns, "ignore-patterns", []string{},
		"Comma separated gitignore-style patterns of paths to skip, replacing the defaults")
	command.Flags().BoolVar(&checkAppendIgnorePatterns, "append-ignore-patterns", false,
		"Add --ignore-patterns to the default patterns instead of replacing them")
	command.Flags().StringSliceVar(&checkIgnoreMatches, "ignore-matches", []string{},
		"Comma separated globs of dependency names to leave out of the report, eg. 'eslint-*'")
	command.Flags().BoolVar(&checkNoGitIgnore, "no-gitignore", false,
		"Do not honor .gitignore files")
	command.Flags().BoolVar(&checkStrict, "strict", false,
		"Fail on the first unreadable file or directory instead of skipping it")
	command.Flags().IntVarP(&checkJobs, "jobs", "j", runtime.GOMAXPROCS(0),
		"Number of files parsed in parallel")
}

// buildConfig merges defaults, the rc file and explicitly set flags, in that order.
func buildConfig(cmd *cobra.Command) (Config, error) {
	dir, err := ResolveAbsoluteDir(checkDirectory)
	if err != nil {
		return Config{}, err
	}
	info, err := os.Stat(dir)
	if err != nil {
		return Config{}, fmt.Errorf("invalid directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return Config{}, fmt.Errorf("invalid directory %s: not a directory", dir)
	}

	config := NewConfig(dir)

	rcPath := checkConfigFile
	if rcPath == "" {
		rcPath, _ = FindRcFile(dir)
	}
	if rcPath != "" {
		rc, err := LoadRcFile(rcPath)
		if err != nil {
			return Config{}, err
		}
		config = config.Apply(rc)
	}

	flags := cmd.Flags()
	if flags.Changed("ignore-bin-package") {
		config = config.WithIgnoreBinPackage(checkIgnoreBinPackage)
	}
	if flags.Changed("skip-missing") {
		config = config.WithSkipMissing(checkSkipMissing)
	}
	if flags.Changed("ignore-path") {
		config = config.WithIgnorePath(checkIgnorePath)
	}
	if flags.Changed("ignore-patterns") {
		config = config.WithIgnorePatterns(checkIgnorePatterns)
	}
	if flags.Changed("append-ignore-patterns") {
		config.AppendIgnorePatterns = checkAppendIgnorePatterns
	}
	if flags.Changed("ignore-matches") {
		config = config.WithIgnoreMatches(checkIgnoreMatches)
	}
	if flags.Changed("no-gitignore") {
		config = config.WithGitIgnore(!checkNoGitIgnore)
	}
	if flags.Changed("strict") {
		config = config.WithStrictWalk(checkStrict)
	}
	if flags.Changed("jobs") {
		if checkJobs < 1 {
			return Config{}, fmt.Errorf("--jobs must be at least 1, got %d", checkJobs)
		}
		config = config.WithJobs(checkJobs)
	}

	return config, nil
}

// ---------------- check (root) ----------------

var (
	checkFormat       string
	checkPretty       bool
	checkFailOnIssues bool
	checkWatch        bool
)

func runCheckCmd(cmd *cobra.Command, args []string) error {
	if checkFormat != OutputFormatJSON && checkFormat != OutputFormatText {
		return fmt.Errorf("unknown output format %q, expected %s or %s", checkFormat, OutputFormatJSON, OutputFormatText)
	}
	logger, err := commandLogger(cmd)
	if err != nil {
		return err
	}
	config, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	policy, err := config.Compile()
	if err != nil {
		return err
	}

	colors := IsColorEnabled(os.Stdout)
	hasIssues := false

	runOnce := func(ctx context.Context) error {
		result, err := runCheck(ctx, cmd.OutOrStdout(), policy, logger, checkFormat, checkPretty, colors)
		if err != nil {
			return err
		}
		hasIssues = result.HasIssues()
		return nil
	}

	if checkWatch {
		return Watch(cmd.Context(), policy, logger, runOnce)
	}

	if err := runOnce(cmd.Context()); err != nil {
		return err
	}
	if checkFailOnIssues && hasIssues {
		return errDependencyIssues
	}
	return nil
}

func runCheck(ctx context.Context, w io.Writer, policy *Policy, logger *slog.Logger, format string, pretty bool, colors bool) (*CheckResult, error) {
	checker, err := LoadChecker(policy, logger)
	if err != nil {
		return nil, err
	}
	result, err := checker.Check(ctx)
	if err != nil {
		return nil, err
	}
	output, err := FormatResult(result, format, pretty, colors)
	if err != nil {
		return nil, err
	}
	fmt.Fprint(w, output)
	return result, nil
}

// ---------------- list-files ----------------

var listFilesCount bool

var listFilesCmd = &cobra.Command{
	Use:   "list-files",
	Short: "List the files that would be checked",
	Long: `Walks the package directory with the same ignore rules as a check
and prints every file, relative to the directory.`,
	Example: "depcheck list-files -d ./my-app --ignore-patterns='*.test.ts'",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := commandLogger(cmd)
		if err != nil {
			return err
		}
		config, err := buildConfig(cmd)
		if err != nil {
			return err
		}
		policy, err := config.Compile()
		if err != nil {
			return err
		}

		files, err := ListFiles(cmd.Context(), policy, logger)
		if err != nil {
			return err
		}

		if listFilesCount {
			fmt.Fprintln(cmd.OutOrStdout(), len(files))
			return nil
		}
		for _, filePath := range files {
			fmt.Fprintln(cmd.OutOrStdout(), filePath)
		}
		return nil
	},
}

// ---------------- debug-parse-file ----------------

var debugParseFileCmd = &cobra.Command{
	Use:     "debug-parse-file <file>",
	Short:   "Show the imports extracted from a single file",
	Example: "depcheck debug-parse-file src/index.ts",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		specifiers, err := ParseFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", args[0], err)
		}
		out, err := json.MarshalIndent(specifiers, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&logVerbose, "verbose", "v", false,
		"Log recovered errors and progress (same as --log-level=debug)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", defaultLogLevel,
		"Log level: debug, info, warn or error")

	// check flags
	addPolicyFlags(rootCmd)
	rootCmd.Flags().StringVar(&checkFormat, "format", OutputFormatJSON,
		"Output format: json or text")
	rootCmd.Flags().BoolVar(&checkPretty, "pretty", false,
		"Indent JSON output")
	rootCmd.Flags().BoolVar(&checkFailOnIssues, "fail-on-issues", false,
		"Exit with code 1 when missing or unused dependencies are found")
	rootCmd.Flags().BoolVar(&checkWatch, "watch", false,
		"Check again on every file change until interrupted")

	// list-files flags
	addPolicyFlags(listFilesCmd)
	listFilesCmd.Flags().BoolVar(&listFilesCount, "count", false,
		"Only display the count of matching files")

	docsCmd.Flags().StringVar(&docsOutputDir, "output", "./docs",
		"Directory to write markdown docs to")

	rootCmd.AddCommand(listFilesCmd, debugParseFileCmd, docsCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		if !errors.Is(err, errDependencyIssues) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
