package format

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/listenupapp/aligner/internal/domain"
)

// Written lists the files produced for one result.
type Written struct {
	TextGridPath string
	ReportPath   string
}

// WriteFiles renders result and writes its TextGrid and report into dir,
// creating dir when missing. Existing files are replaced.
func WriteFiles(dir string, result *domain.AlignmentResult) (*Written, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	out := &Written{
		TextGridPath: filepath.Join(dir, TextGridName(result.Identifier)),
		ReportPath:   filepath.Join(dir, ReportName(result.Identifier)),
	}

	if err := writeFileAtomic(out.TextGridPath, TextGrid(result)); err != nil {
		return nil, err
	}
	if err := writeFileAtomic(out.ReportPath, Report(result)); err != nil {
		return nil, err
	}
	return out, nil
}

// writeFileAtomic writes through a temp file so watchers never see a
// partial document.
func writeFileAtomic(path, content string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", filepath.Base(path), err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("chmod %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename %s: %w", filepath.Base(path), err)
	}
	return nil
}
