// Package validation checks documentation metadata: per-document field rules,
// corpus-wide canonical uniqueness, and advisory near-duplicate detection for
// newly submitted documents.
package validation

import (
	"fmt"
	"sort"
)

// Severity of a finding
type Severity string

const (
	// SeverityError blocks registry generation and fails the run
	SeverityError Severity = "error"
	// SeverityWarning is reported but never blocks
	SeverityWarning Severity = "warning"
)

// SystemPath is used for findings that are not about a specific document
const SystemPath = "(system)"

// Finding is a single validation error or warning
type Finding struct {
	Path     string
	Message  string
	Severity Severity
}

// Errorf creates an error finding
func Errorf(path, format string, args ...any) Finding {
	return Finding{Path: path, Message: fmt.Sprintf(format, args...), Severity: SeverityError}
}

// Warningf creates a warning finding
func Warningf(path, format string, args ...any) Finding {
	return Finding{Path: path, Message: fmt.Sprintf(format, args...), Severity: SeverityWarning}
}

// IsWarning reports whether the finding is advisory
func (f Finding) IsWarning() bool {
	return f.Severity == SeverityWarning
}

func (f Finding) String() string {
	level := "ERROR"
	if f.IsWarning() {
		level = "WARNING"
	}
	return fmt.Sprintf("[%s] %s: %s", level, f.Path, f.Message)
}

// Split separates findings into errors and warnings, preserving order
func Split(findings []Finding) (errs, warnings []Finding) {
	for _, f := range findings {
		if f.IsWarning() {
			warnings = append(warnings, f)
		} else {
			errs = append(errs, f)
		}
	}
	return errs, warnings
}

// SortByPath orders findings by path. Findings for the same path keep the order
// in which their pass produced them.
func SortByPath(findings []Finding) {
	sort.SliceStable(findings, func(i, j int) bool {
		return findings[i].Path < findings[j].Path
	})
}
