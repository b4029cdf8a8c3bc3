package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize/english"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

const (
	OutputFormatJSON = "json"
	OutputFormatText = "text"
)

// IsColorEnabled is false when f is not a terminal or NO_COLOR is set.
func IsColorEnabled(f *os.File) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func FormatResultJSON(result *CheckResult, pretty bool) (string, error) {
	var (
		out []byte
		err error
	)
	if pretty {
		out, err = json.MarshalIndent(result, "", "  ")
	} else {
		out, err = json.Marshal(result)
	}
	if err != nil {
		return "", err
	}
	return string(out) + "\n", nil
}

type textPalette struct {
	header  *color.Color
	missing *color.Color
	unused  *color.Color
	ok      *color.Color
	dim     *color.Color
}

func newTextPalette(colors bool) textPalette {
	palette := textPalette{
		header:  color.New(color.Bold),
		missing: color.New(color.FgRed),
		unused:  color.New(color.FgYellow),
		ok:      color.New(color.FgGreen),
		dim:     color.New(color.Faint),
	}
	for _, c := range []*color.Color{palette.header, palette.missing, palette.unused, palette.ok, palette.dim} {
		if colors {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return palette
}

func FormatResultText(result *CheckResult, colors bool) string {
	palette := newTextPalette(colors)
	var sb strings.Builder

	if !result.HasIssues() {
		sb.WriteString(palette.ok.Sprint("No depcheck issue"))
		sb.WriteString("\n")
	}

	writeNames := func(title string, names []string) {
		if len(names) == 0 {
			return
		}
		sb.WriteString(palette.header.Sprint(title))
		sb.WriteString("\n")
		for _, name := range names {
			fmt.Fprintln(&sb, "*", palette.unused.Sprint(name))
		}
	}

	writeNames("Unused dependencies", result.Unused)
	writeNames("Unused devDependencies", result.UnusedDev)

	if len(result.Missing) > 0 {
		sb.WriteString(palette.header.Sprint("Missing dependencies"))
		sb.WriteString("\n")
		for _, name := range result.Missing.Names() {
			fmt.Fprintln(&sb, "*", palette.missing.Sprint(name))
			for _, filePath := range result.Missing.Files(name) {
				fmt.Fprintln(&sb, "    ➞", filePath)
			}
		}
	}

	summary := fmt.Sprintf("\nChecked %s, %d missing, %d unused, %d unused dev",
		english.Plural(result.FilesChecked, "file", ""),
		len(result.Missing),
		len(result.Unused),
		len(result.UnusedDev),
	)
	sb.WriteString(palette.dim.Sprint(summary))
	sb.WriteString("\n")

	return sb.String()
}

// FormatResult renders the report in the requested output format.
func FormatResult(result *CheckResult, format string, pretty bool, colors bool) (string, error) {
	switch format {
	case "", OutputFormatJSON:
		return FormatResultJSON(result, pretty)
	case OutputFormatText:
		return FormatResultText(result, colors), nil
	default:
		return "", fmt.Errorf("unknown output format %q, expected %s or %s", format, OutputFormatJSON, OutputFormatText)
	}
}
