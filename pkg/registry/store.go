package registry

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/aymanbagabas/go-udiff"
	"github.com/pkg/errors"
	"github.com/rogpeppe/go-internal/lockedfile"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Write encodes the registry and replaces the file at path, creating parent
// directories as needed. The file is locked while it is written.
func Write(path string, reg *Registry) error {
	data, err := Encode(reg)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "failed to create registry directory")
	}

	if err := lockedfile.Write(path, bytes.NewReader(data), 0o644); err != nil {
		return errors.Wrap(err, "failed to write registry file")
	}

	return nil
}

// Read returns the registry file content, or nil when it does not exist
func Read(path string) ([]byte, error) {
	data, err := lockedfile.Read(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to read registry file")
	}
	return data, nil
}

// Comparison is the result of checking an on-disk registry against a fresh build
type Comparison struct {
	// Exists is false when there is no registry file yet
	Exists bool
	// PreviousGeneratedAt is the timestamp of the registry on disk
	PreviousGeneratedAt string
	// Diff is a unified diff ignoring generated_at; empty when up to date
	Diff string
}

// UpToDate reports whether the registry on disk matches the fresh build
func (c Comparison) UpToDate() bool {
	return c.Exists && c.Diff == ""
}

// Compare checks the registry at path against reg, ignoring generation time
func Compare(path string, reg *Registry) (Comparison, error) {
	fresh, err := Encode(reg)
	if err != nil {
		return Comparison{}, err
	}

	existing, err := Read(path)
	if err != nil {
		return Comparison{}, err
	}

	cmp := Comparison{Exists: existing != nil}
	if existing != nil {
		if !gjson.ValidBytes(existing) {
			return Comparison{}, errors.Errorf("registry file %s is not valid JSON", path)
		}
		cmp.PreviousGeneratedAt = gjson.GetBytes(existing, "generated_at").String()
	}

	oldText, err := withoutTimestamp(existing)
	if err != nil {
		return Comparison{}, err
	}
	newText, err := withoutTimestamp(fresh)
	if err != nil {
		return Comparison{}, err
	}

	name := filepath.Base(path)
	cmp.Diff = udiff.Unified(name+" (on disk)", name+" (generated)", oldText, newText)
	return cmp, nil
}

// withoutTimestamp drops generated_at and re-indents so formatting differences
// do not show up in the diff
func withoutTimestamp(data []byte) (string, error) {
	if data == nil {
		return "", nil
	}

	stripped, err := sjson.DeleteBytes(data, "generated_at")
	if err != nil {
		return "", errors.Wrap(err, "failed to strip generated_at")
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, stripped); err != nil {
		return "", errors.Wrap(err, "failed to compact registry")
	}
	var out bytes.Buffer
	if err := json.Indent(&out, compact.Bytes(), "", "  "); err != nil {
		return "", errors.Wrap(err, "failed to indent registry")
	}
	out.WriteByte('\n')
	return out.String(), nil
}
