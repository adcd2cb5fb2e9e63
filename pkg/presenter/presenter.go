// Package presenter provides consistent CLI output for the validation report,
// including findings, summaries and status messages with color support and
// quiet mode.
package presenter

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/GiantCroissant-Lunar/pigeon-pea/pkg/validation"
	"github.com/fatih/color"
)

// Summary is the tally printed at the end of a run
type Summary struct {
	Documents int
	Errors    int
	Warnings  int
}

// Passed reports whether the run had no errors
func (s Summary) Passed() bool {
	return s.Errors == 0
}

// Presenter defines the interface for consistent CLI output
type Presenter interface {
	Error(err error, context string)
	Success(message string)
	Warning(message string)
	Info(message string)
	Section(title string)
	Findings(errors, warnings []validation.Finding)
	Summary(summary Summary)
	Separator()
	SetQuiet(quiet bool)
	IsQuiet() bool
}

// TerminalPresenter implements Presenter for terminal output
type TerminalPresenter struct {
	output      io.Writer
	errorOutput io.Writer
	colorMode   ColorMode
	quiet       bool
}

// ColorMode represents different color output modes
type ColorMode int

const (
	// ColorAuto automatically detects whether to use colored output based on terminal capabilities
	ColorAuto ColorMode = iota
	// ColorAlways forces colored output regardless of terminal capabilities
	ColorAlways
	// ColorNever disables colored output regardless of terminal capabilities
	ColorNever
)

// New creates a new TerminalPresenter with default settings
func New() *TerminalPresenter {
	return NewWithOptions(os.Stdout, os.Stderr, detectColorMode())
}

// NewWithOptions creates a TerminalPresenter with custom settings
func NewWithOptions(output, errorOutput io.Writer, colorMode ColorMode) *TerminalPresenter {
	presenter := &TerminalPresenter{
		output:      output,
		errorOutput: errorOutput,
		colorMode:   colorMode,
	}

	switch colorMode {
	case ColorAlways:
		color.NoColor = false
	case ColorNever:
		color.NoColor = true
	case ColorAuto:
	}

	return presenter
}

func detectColorMode() ColorMode {
	if os.Getenv("NO_COLOR") != "" {
		return ColorNever
	}

	switch os.Getenv("DOCVAL_COLOR") {
	case "always", "force":
		return ColorAlways
	case "never", "off":
		return ColorNever
	default:
		return ColorAuto
	}
}

// Error displays an operational error to stderr
func (p *TerminalPresenter) Error(err error, context string) {
	if err == nil {
		return
	}

	errorColor := color.New(color.FgRed, color.Bold)
	if context != "" {
		errorColor.Fprintf(p.errorOutput, "[ERROR] %s: %v\n", context, err)
	} else {
		errorColor.Fprintf(p.errorOutput, "[ERROR] %v\n", err)
	}
}

// Success displays a success message
func (p *TerminalPresenter) Success(message string) {
	if p.quiet {
		return
	}

	color.New(color.FgGreen, color.Bold).Fprintf(p.output, "✓ %s\n", message)
}

// Warning displays a warning message
func (p *TerminalPresenter) Warning(message string) {
	if p.quiet {
		return
	}

	color.New(color.FgYellow, color.Bold).Fprintf(p.output, "⚠ %s\n", message)
}

// Info displays an informational message
func (p *TerminalPresenter) Info(message string) {
	if p.quiet {
		return
	}

	fmt.Fprintf(p.output, "%s\n", message)
}

// Section displays a section header with consistent formatting
func (p *TerminalPresenter) Section(title string) {
	if p.quiet {
		return
	}

	headerColor := color.New(color.Bold)
	headerColor.Fprintf(p.output, "\n%s\n", title)
	headerColor.Fprintf(p.output, "%s\n", strings.Repeat("-", len(title)))
}

// Findings prints errors then warnings, one per line, in the order given.
// Errors are always printed; quiet mode only suppresses warnings.
func (p *TerminalPresenter) Findings(errors, warnings []validation.Finding) {
	if len(errors) > 0 {
		p.sectionAlways("ERRORS")
		errorColor := color.New(color.FgRed)
		for _, f := range errors {
			errorColor.Fprintf(p.output, "%s\n", f.String())
		}
	}

	if len(warnings) > 0 && !p.quiet {
		p.Section("WARNINGS")
		warningColor := color.New(color.FgYellow)
		for _, f := range warnings {
			warningColor.Fprintf(p.output, "%s\n", f.String())
		}
	}
}

// Summary prints the final tally and the pass/fail verdict
func (p *TerminalPresenter) Summary(summary Summary) {
	if !p.quiet {
		p.Section("SUMMARY")
		fmt.Fprintf(p.output, "Documents validated: %d\n", summary.Documents)
		fmt.Fprintf(p.output, "Errors: %d\n", summary.Errors)
		fmt.Fprintf(p.output, "Warnings: %d\n", summary.Warnings)
		fmt.Fprintln(p.output)
	}

	if summary.Passed() {
		p.Success("Validation PASSED")
		return
	}
	color.New(color.FgRed, color.Bold).Fprintf(p.output, "✗ Validation FAILED - please fix errors above\n")
}

// Separator displays a visual separator
func (p *TerminalPresenter) Separator() {
	if p.quiet {
		return
	}

	color.New(color.Faint).Fprintf(p.output, "%s\n", strings.Repeat("-", 60))
}

// SetQuiet enables or disables quiet mode
func (p *TerminalPresenter) SetQuiet(quiet bool) {
	p.quiet = quiet
}

// IsQuiet returns whether quiet mode is enabled
func (p *TerminalPresenter) IsQuiet() bool {
	return p.quiet
}

func (p *TerminalPresenter) sectionAlways(title string) {
	quiet := p.quiet
	p.quiet = false
	p.Section(title)
	p.quiet = quiet
}

var defaultPresenter = New()

// Error displays an error message using the default presenter instance.
func Error(err error, context string) {
	defaultPresenter.Error(err, context)
}

// Success displays a success message using the default presenter instance.
func Success(message string) {
	defaultPresenter.Success(message)
}

// Warning displays a warning message using the default presenter instance.
func Warning(message string) {
	defaultPresenter.Warning(message)
}

// Info displays an informational message using the default presenter instance.
func Info(message string) {
	defaultPresenter.Info(message)
}

// Section displays a section header using the default presenter instance.
func Section(title string) {
	defaultPresenter.Section(title)
}

// Findings prints findings using the default presenter instance.
func Findings(errors, warnings []validation.Finding) {
	defaultPresenter.Findings(errors, warnings)
}

// PrintSummary prints the run summary using the default presenter instance.
func PrintSummary(summary Summary) {
	defaultPresenter.Summary(summary)
}

// Separator displays a visual separator using the default presenter instance.
func Separator() {
	defaultPresenter.Separator()
}

// SetQuiet enables or disables quiet mode for the default presenter instance.
func SetQuiet(quiet bool) {
	defaultPresenter.SetQuiet(quiet)
}

// IsQuiet returns whether quiet mode is enabled for the default presenter instance.
func IsQuiet() bool {
	return defaultPresenter.IsQuiet()
}
