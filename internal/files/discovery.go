package files

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"taskdash/internal/config"
)

// placeholderProbeSize bounds how much of a file is read to detect a placeholder
const placeholderProbeSize = 4096

// FileInfo represents the state of one configured input file
type FileInfo struct {
	Name        string    `json:"name"`
	Path        string    `json:"path"`
	Exists      bool      `json:"exists"`
	Size        int64     `json:"size"`
	ModTime     time.Time `json:"mod_time"`
	Placeholder bool      `json:"placeholder"`
}

// Discovery provides file discovery operations over the configured inputs
type Discovery struct {
	files config.DataFiles
}

// NewDiscovery creates a new file discovery instance
func NewDiscovery(files config.DataFiles) *Discovery {
	return &Discovery{files: files}
}

// Inspect stats every configured input file, in configuration order
func (d *Discovery) Inspect() []FileInfo {
	paths := d.files.All()
	out := make([]FileInfo, 0, len(paths))
	for _, p := range paths {
		out = append(out, Stat(p))
	}
	return out
}

// Missing returns the configured inputs that are not on disk
func (d *Discovery) Missing() []FileInfo {
	var missing []FileInfo
	for _, f := range d.Inspect() {
		if !f.Exists {
			missing = append(missing, f)
		}
	}
	return missing
}

// Stat describes a single file. A directory or an unreadable path is
// reported as not existing.
func Stat(path string) FileInfo {
	info := FileInfo{Name: filepath.Base(path), Path: path}
	st, err := os.Stat(path)
	if err != nil || st.IsDir() {
		return info
	}
	info.Exists = true
	info.Size = st.Size()
	info.ModTime = st.ModTime()
	if st.Size() <= placeholderProbeSize {
		info.Placeholder = isPlaceholder(path)
	}
	return info
}

// FindFilesByPattern finds files matching a glob pattern, sorted by name
func FindFilesByPattern(dir string, pattern string) ([]FileInfo, error) {
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
	}

	var files []FileInfo
	for _, match := range matches {
		if info := Stat(match); info.Exists {
			files = append(files, info)
		}
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// isPlaceholder reports whether a file holds nothing but blank and '#' lines
func isPlaceholder(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) > 0 && line[0] != '#' {
			return false
		}
	}
	return true
}
