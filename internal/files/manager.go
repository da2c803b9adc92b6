package files

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"taskdash/internal/config"
)

// PlaceholderContent is written for inputs that have no source
const PlaceholderContent = "# Empty placeholder file\n"

// SetupAction records how Setup provided a file
type SetupAction string

const (
	ActionExisting    SetupAction = "existing"
	ActionCopied      SetupAction = "copied"
	ActionExtracted   SetupAction = "extracted"
	ActionPlaceholder SetupAction = "placeholder"
)

// SetupResult describes what Setup did for one input
type SetupResult struct {
	Path   string      `json:"path"`
	Action SetupAction `json:"action"`
	Source string      `json:"source,omitempty"`
}

// Manager provides file management operations for the data directory
type Manager struct {
	files     config.DataFiles
	sourceDir string
	logger    *slog.Logger
}

// NewManager creates a new file manager instance. sourceDir may be empty, in
// which case every missing input gets a placeholder.
func NewManager(files config.DataFiles, sourceDir string, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{files: files, sourceDir: sourceDir, logger: logger.With(slog.String("component", "data_setup"))}
}

// Setup ensures every configured input exists. Existing files are never
// overwritten. A missing file is copied from the source directory, else
// extracted from the first csv fenced block of <name>.md there, else created
// as a placeholder.
func (m *Manager) Setup(ctx context.Context) ([]SetupResult, error) {
	if err := m.EnsureDirectory(m.files.Dir); err != nil {
		return nil, err
	}

	results := make([]SetupResult, 0, len(m.files.All()))
	for _, path := range m.files.All() {
		if err := ctx.Err(); err != nil {
			return results, fmt.Errorf("setup data directory: %w", err)
		}
		result, err := m.provide(path)
		if err != nil {
			return results, err
		}
		results = append(results, result)
	}
	return results, nil
}

func (m *Manager) provide(path string) (SetupResult, error) {
	if m.FileExists(path) {
		return SetupResult{Path: path, Action: ActionExisting}, nil
	}

	if m.sourceDir != "" {
		name := filepath.Base(path)
		src := filepath.Join(m.sourceDir, name)
		if m.FileExists(src) {
			if err := m.CopyFile(src, path); err != nil {
				return SetupResult{}, err
			}
			return SetupResult{Path: path, Action: ActionCopied, Source: src}, nil
		}

		if strings.EqualFold(filepath.Ext(name), ".csv") {
			doc := filepath.Join(m.sourceDir, strings.TrimSuffix(name, filepath.Ext(name))+".md")
			if content, ok := m.extractFrom(doc); ok {
				if err := m.WriteFile(path, []byte(content)); err != nil {
					return SetupResult{}, err
				}
				return SetupResult{Path: path, Action: ActionExtracted, Source: doc}, nil
			}
		}
	}

	m.logger.Warn("no source for data file, writing placeholder", slog.String("path", path))
	if err := m.WriteFile(path, []byte(PlaceholderContent)); err != nil {
		return SetupResult{}, err
	}
	return SetupResult{Path: path, Action: ActionPlaceholder}, nil
}

func (m *Manager) extractFrom(doc string) (string, bool) {
	data, err := os.ReadFile(doc)
	if err != nil {
		return "", false
	}
	return ExtractCSVBlock(string(data))
}

// ExtractCSVBlock returns the body of the first ```csv fenced block. ok is
// false when there is none or it is empty.
func ExtractCSVBlock(markdown string) (string, bool) {
	var body strings.Builder
	inside := false

	scanner := bufio.NewScanner(strings.NewReader(markdown))
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		if !inside {
			if strings.EqualFold(trimmed, "```csv") {
				inside = true
			}
			continue
		}
		if strings.HasPrefix(trimmed, "```") {
			break
		}
		body.WriteString(strings.TrimRight(line, "\r"))
		body.WriteByte('\n')
	}

	if strings.TrimSpace(body.String()) == "" {
		return "", false
	}
	return body.String(), true
}

// FileExists checks if a regular file exists at the given path
func (m *Manager) FileExists(path string) bool {
	info, err := os.Stat(path)
	exists := err == nil && !info.IsDir()

	m.logger.Debug("FileExists check",
		slog.String("path", path),
		slog.Bool("exists", exists))

	return exists
}

// EnsureDirectory creates a directory if it doesn't exist
func (m *Manager) EnsureDirectory(path string) error {
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(path, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", path, err)
	}
	return nil
}

// CopyFile copies a file from source to destination
func (m *Manager) CopyFile(src, dst string) error {
	m.logger.Info("Copying data file",
		slog.String("src", src),
		slog.String("dst", dst))

	if err := m.EnsureDirectory(filepath.Dir(dst)); err != nil {
		return err
	}

	srcFile, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source file: %w", err)
	}
	defer srcFile.Close()

	dstFile, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dstFile.Close()

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		return fmt.Errorf("failed to copy file content: %w", err)
	}

	return dstFile.Sync()
}

// WriteFile writes data to a file, creating its directory
func (m *Manager) WriteFile(path string, data []byte) error {
	m.logger.Info("Writing data file",
		slog.String("path", path),
		slog.Int("size_bytes", len(data)))

	if err := m.EnsureDirectory(filepath.Dir(path)); err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
