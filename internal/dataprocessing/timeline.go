package dataprocessing

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"

	"taskdash/pkg/contracts/domain"
)

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithParserOptions(parser.WithAutoHeadingID()),
)

// RenderMarkdown converts the project timelines document to HTML. Raw HTML in
// the source is not passed through.
func RenderMarkdown(source string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}

// ProjectTimelines builds one Gantt bar per project found in either the
// project table or the tasks. Missing start or end dates fall back to the
// earliest and latest task date of the project. Bars are ordered by start
// date, undated projects last.
func ProjectTimelines(projects []domain.Project, tasks []domain.Task) []domain.ProjectTimeline {
	byName := map[string]*domain.ProjectTimeline{}
	key := func(name string) string { return strings.ToLower(strings.TrimSpace(name)) }

	for _, p := range projects {
		byName[key(p.Name)] = &domain.ProjectTimeline{
			Project: p.Name,
			Phase:   p.Phase,
			Type:    p.Type,
			Start:   p.StartDate,
			End:     p.EndDate,
		}
	}

	first := map[string]domain.Date{}
	last := map[string]domain.Date{}
	for _, t := range tasks {
		if t.Project == "" {
			continue
		}
		k := key(t.Project)
		tl, ok := byName[k]
		if !ok {
			tl = &domain.ProjectTimeline{Project: t.Project}
			byName[k] = tl
		}
		tl.TaskCount++
		if t.Status.IsCompleted() {
			tl.CompletedCount++
		}
		if t.Date.Valid() {
			if f, ok := first[k]; !ok || t.Date.Before(f.Time) {
				first[k] = t.Date
			}
			if l, ok := last[k]; !ok || t.Date.After(l.Time) {
				last[k] = t.Date
			}
		}
	}

	out := make([]domain.ProjectTimeline, 0, len(byName))
	for k, tl := range byName {
		if !tl.Start.Valid() {
			tl.Start = first[k]
		}
		if !tl.End.Valid() {
			tl.End = last[k]
		}
		tl.CompletionRate = percent(tl.CompletedCount, tl.TaskCount)
		out = append(out, *tl)
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Start.Valid() != b.Start.Valid() {
			return a.Start.Valid()
		}
		if !a.Start.Equal(b.Start.Time) {
			return a.Start.Before(b.Start.Time)
		}
		return a.Project < b.Project
	})
	return out
}
