// Package docs discovers managed documentation files, parses their YAML front
// matter into typed metadata and computes the hashes used for change and
// near-duplicate detection.
package docs

import "strings"

// Document is one managed file under the docs root
type Document struct {
	// Path is slash-separated and relative to the docs root
	Path        string
	Metadata    *Metadata
	Content     string
	ContentHash string
	// Fingerprint is nil when fingerprinting is disabled or the body is empty
	Fingerprint *uint64
}

// InSegment reports whether the path has a directory component equal to segment
func (d *Document) InSegment(segment string) bool {
	if segment == "" {
		return false
	}
	return strings.Contains("/"+d.Path, "/"+segment+"/")
}
