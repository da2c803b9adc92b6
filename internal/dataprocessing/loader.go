package dataprocessing

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"taskdash/internal/config"
	"taskdash/pkg/contracts/domain"
)

// Table slugs, also used as export file names
const (
	TableTasks        = "tasks"
	TableProjects     = "projects"
	TableTeamMembers  = "team_members"
	TableContentTypes = "content_types"
	TableMessages     = "messages"
)

// TimelinesNotFound is the timelines text used when the markdown file is absent
const TimelinesNotFound = "Project timelines file not found"

// WarningKind classifies a degraded-load condition
type WarningKind string

const (
	WarningMissingFile      WarningKind = "missing_file"
	WarningUnreadableFile   WarningKind = "unreadable_file"
	WarningMissingColumns   WarningKind = "missing_columns"
	WarningInvalidRow       WarningKind = "invalid_row"
	WarningUnmappedPriority WarningKind = "unmapped_priority"
)

// Warning is a non-fatal problem found while loading
type Warning struct {
	Kind    WarningKind `json:"kind"`
	File    string      `json:"file,omitempty"`
	Message string      `json:"message"`
}

// Dataset is one immutable snapshot of every input
type Dataset struct {
	Version        string               `json:"version"`
	LoadedAt       time.Time            `json:"loaded_at"`
	Tasks          []domain.Task        `json:"-"`
	Projects       []domain.Project     `json:"-"`
	TeamMembers    []domain.TeamMember  `json:"-"`
	ContentTypes   []domain.ContentType `json:"-"`
	Messages       []domain.Message     `json:"-"`
	Timelines      string               `json:"-"`
	TimelinesFound bool                 `json:"timelines_found"`
	Warnings       []Warning            `json:"warnings"`

	raw map[string]domain.Table
}

// tableNames maps slugs to display names in display order
var tableNames = []struct{ slug, name string }{
	{TableTasks, "Tasks"},
	{TableProjects, "Projects"},
	{TableTeamMembers, "Team Members"},
	{TableContentTypes, "Content Types"},
	{TableMessages, "Messages"},
}

// RawTable returns the verbatim table for a slug or display name
func (d *Dataset) RawTable(name string) (domain.Table, bool) {
	slug := Slug(name)
	t, ok := d.raw[slug]
	return t, ok
}

// TableInfos lists the raw tables in display order
func (d *Dataset) TableInfos() []domain.TableInfo {
	infos := make([]domain.TableInfo, 0, len(tableNames))
	for _, tn := range tableNames {
		t := d.raw[tn.slug]
		infos = append(infos, domain.TableInfo{
			Name:     tn.name,
			Slug:     tn.slug,
			Columns:  len(t.Header),
			RowCount: len(t.Rows),
			Present:  len(t.Header) > 0,
		})
	}
	return infos
}

// Slug converts a display name to its file-name form ("Team Members" → "team_members")
func Slug(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}

// NewDataset assembles a dataset from already parsed tables. Raw tables are
// optional and mainly used by tests.
func NewDataset(tasks []domain.Task, projects []domain.Project, members []domain.TeamMember,
	contentTypes []domain.ContentType, messages []domain.Message) *Dataset {
	return &Dataset{
		Version:      uuid.NewString(),
		LoadedAt:     time.Now(),
		Tasks:        tasks,
		Projects:     projects,
		TeamMembers:  members,
		ContentTypes: contentTypes,
		Messages:     messages,
		Timelines:    TimelinesNotFound,
		Warnings:     []Warning{},
		raw:          map[string]domain.Table{},
	}
}

// Loader reads the configured input files into a Dataset
type Loader struct {
	files  config.DataFiles
	logger *slog.Logger
	now    func() time.Time
}

// LoaderOption customizes a Loader
type LoaderOption func(*Loader)

// WithClock sets the clock used for the elapsed days of undelivered tasks
func WithClock(now func() time.Time) LoaderOption {
	return func(l *Loader) { l.now = now }
}

// NewLoader creates a loader for the given files
func NewLoader(files config.DataFiles, logger *slog.Logger, opts ...LoaderOption) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	l := &Loader{
		files:  files,
		logger: logger.With("component", "loader"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Files returns the paths this loader reads
func (l *Loader) Files() config.DataFiles {
	return l.files
}

// rawResult is the outcome of reading one file
type rawResult struct {
	table    domain.Table
	warnings []Warning
}

// Load reads every input. Missing or unreadable files degrade to empty
// tables with a warning; the only error is context cancellation.
func (l *Loader) Load(ctx context.Context) (*Dataset, error) {
	start := time.Now()

	sources := []struct {
		slug, name, path string
	}{
		{TableTasks, "Tasks", l.files.Tasks},
		{TableProjects, "Projects", l.files.Projects},
		{TableTeamMembers, "Team Members", l.files.TeamMembers},
		{TableContentTypes, "Content Types", l.files.ContentTypes},
		{TableMessages, "Messages", l.files.Messages},
	}

	results := make([]rawResult, len(sources))
	var timelines string
	var timelinesFound bool
	var timelineWarnings []Warning

	g, gctx := errgroup.WithContext(ctx)
	for i, src := range sources {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = l.readTable(gctx, src.name, src.path)
			return nil
		})
	}
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		timelines, timelinesFound, timelineWarnings = l.readTimelines(gctx)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}

	ds := &Dataset{
		Version:        uuid.NewString(),
		LoadedAt:       l.now(),
		Timelines:      timelines,
		TimelinesFound: timelinesFound,
		Warnings:       []Warning{},
		raw:            make(map[string]domain.Table, len(sources)),
	}
	for i, src := range sources {
		ds.raw[src.slug] = results[i].table
		ds.Warnings = append(ds.Warnings, results[i].warnings...)
	}
	ds.Warnings = append(ds.Warnings, timelineWarnings...)

	var w []Warning
	ds.Tasks, w = parseTasks(ds.raw[TableTasks], l.files.Tasks, l.now())
	ds.Warnings = append(ds.Warnings, w...)
	ds.Projects, w = parseProjects(ds.raw[TableProjects], l.files.Projects)
	ds.Warnings = append(ds.Warnings, w...)
	ds.TeamMembers = parseTeamMembers(ds.raw[TableTeamMembers])
	ds.ContentTypes, w = parseContentTypes(ds.raw[TableContentTypes], l.files.ContentTypes)
	ds.Warnings = append(ds.Warnings, w...)
	ds.Messages, w = parseMessages(ds.raw[TableMessages], l.files.Messages)
	ds.Warnings = append(ds.Warnings, w...)

	for _, warning := range ds.Warnings {
		l.logger.WarnContext(ctx, "dataset loaded in degraded mode",
			slog.String("kind", string(warning.Kind)),
			slog.String("file", warning.File),
			slog.String("detail", warning.Message))
	}

	l.logger.InfoContext(ctx, "dataset loaded",
		slog.String("version", ds.Version),
		slog.Int("tasks", len(ds.Tasks)),
		slog.Int("projects", len(ds.Projects)),
		slog.Int("team_members", len(ds.TeamMembers)),
		slog.Int("content_types", len(ds.ContentTypes)),
		slog.Int("messages", len(ds.Messages)),
		slog.Int("warnings", len(ds.Warnings)),
		slog.Duration("duration", time.Since(start)))

	return ds, nil
}

func (l *Loader) readTable(ctx context.Context, name, path string) rawResult {
	empty := domain.Table{Name: name, Header: []string{}, Rows: [][]string{}}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return rawResult{table: empty, warnings: []Warning{{
				Kind:    WarningMissingFile,
				File:    path,
				Message: fmt.Sprintf("File not found: %s", path),
			}}}
		}
		return rawResult{table: empty, warnings: []Warning{{
			Kind:    WarningUnreadableFile,
			File:    path,
			Message: err.Error(),
		}}}
	}

	table, err := parseTable(name, content)
	if err != nil {
		// keep whatever rows were read before the malformed one
		return rawResult{table: table, warnings: []Warning{{
			Kind:    WarningUnreadableFile,
			File:    path,
			Message: fmt.Sprintf("%s: %v", filepath.Base(path), err),
		}}}
	}

	l.logger.DebugContext(ctx, "table read",
		slog.String("table", name),
		slog.String("path", path),
		slog.Int("rows", len(table.Rows)))

	return rawResult{table: table}
}

func (l *Loader) readTimelines(ctx context.Context) (string, bool, []Warning) {
	content, err := os.ReadFile(l.files.Timelines)
	if err != nil {
		kind := WarningUnreadableFile
		if errors.Is(err, fs.ErrNotExist) {
			kind = WarningMissingFile
		}
		return TimelinesNotFound, false, []Warning{{Kind: kind, File: l.files.Timelines, Message: TimelinesNotFound}}
	}
	l.logger.DebugContext(ctx, "timelines read", slog.Int("bytes", len(content)))
	return string(content), true, nil
}
