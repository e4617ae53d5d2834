// Package manifest reads and persists the requirements file being upgraded.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/safepip/safe-pip-upgrade/internal/fsutil"
	"github.com/safepip/safe-pip-upgrade/internal/messages"
)

// Snapshot suffixes inserted between the file base name and its extension.
const (
	BackupSuffixFmt = "_backup_%d"
	LastPassSuffix  = "_last_pass"
)

// File is a requirements manifest on disk. Writes are atomic, so a killed
// process leaves either the previous or the new content.
type File struct {
	path string
	dir  string
	base string
	ext  string
}

// New returns a File for path.
func New(path string) *File {
	dir, name := filepath.Split(path)
	ext := filepath.Ext(name)
	return &File{
		path: path,
		dir:  dir,
		base: strings.TrimSuffix(name, ext),
		ext:  ext,
	}
}

// Path returns the manifest path.
func (f *File) Path() string {
	return f.path
}

// ReadLines returns the manifest split into lines, each keeping its line ending.
func (f *File) ReadLines() ([]string, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf(messages.ManifestReadFailedFmt, f.path, err)
	}
	return SplitLines(string(data)), nil
}

// WriteLines replaces the manifest with lines joined verbatim.
func (f *File) WriteLines(lines []string) error {
	if err := fsutil.WriteFileAtomic(f.path, []byte(strings.Join(lines, "")), f.perm()); err != nil {
		return fmt.Errorf(messages.ManifestWriteFailedFmt, f.path, err)
	}
	return nil
}

// Backup copies the manifest to the first free <base>_backup_<n><ext> and returns that path.
func (f *File) Backup() (string, error) {
	for n := 1; ; n++ {
		target := f.PathWithSuffix(fmt.Sprintf(BackupSuffixFmt, n))
		if _, err := os.Stat(target); err == nil {
			continue
		} else if !os.IsNotExist(err) {
			return "", fmt.Errorf(messages.ManifestStatFailedFmt, target, err)
		}
		if err := f.copyTo(target); err != nil {
			return "", err
		}
		return target, nil
	}
}

// SnapshotLastPass copies the manifest to <base>_last_pass<ext>, replacing any earlier snapshot.
func (f *File) SnapshotLastPass() error {
	return f.copyTo(f.PathWithSuffix(LastPassSuffix))
}

// PathWithSuffix returns the sibling path with suffix inserted before the extension.
func (f *File) PathWithSuffix(suffix string) string {
	return filepath.Join(f.dir, f.base+suffix+f.ext)
}

func (f *File) copyTo(target string) error {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return fmt.Errorf(messages.ManifestReadFailedFmt, f.path, err)
	}
	if err := fsutil.WriteFileAtomic(target, data, f.perm()); err != nil {
		return fmt.Errorf(messages.ManifestCopyFailedFmt, f.path, target, err)
	}
	return nil
}

func (f *File) perm() os.FileMode {
	info, err := os.Stat(f.path)
	if err != nil {
		return 0o644
	}
	return info.Mode().Perm()
}

// SplitLines splits text after every "\n". The last element has no newline
// when the text does not end with one.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.SplitAfter(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
