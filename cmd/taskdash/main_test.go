package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "taskdash/internal/errors"
	"taskdash/internal/shared/testutil"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestReportCmd(t *testing.T) {
	files := testutil.NewDataDir(t)

	out, err := execute(t, "report", "--data-dir", files.Dir)
	require.NoError(t, err, out)

	var doc struct {
		Summary struct {
			TotalTasks     int `json:"total_tasks"`
			CompletedTasks int `json:"completed_tasks"`
		} `json:"summary"`
		CompletionBuckets struct {
			Total int `json:"total"`
		} `json:"completion_buckets"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, 6, doc.Summary.TotalTasks)
	assert.Equal(t, doc.Summary.CompletedTasks, doc.CompletionBuckets.Total)
}

func TestReportCmd_Filter(t *testing.T) {
	files := testutil.NewDataDir(t)

	out, err := execute(t, "report", "--data-dir", files.Dir, "--project", "Greenfield")
	require.NoError(t, err, out)
	assert.Contains(t, out, `"project": "Greenfield"`)
	assert.Contains(t, out, `"total_tasks": 3`)
}

func TestReportCmd_ExitCodes(t *testing.T) {
	files := testutil.NewDataDir(t)

	tests := []struct {
		name string
		args []string
		code int
	}{
		{name: "malformed date", args: []string{"report", "--from", "01/02/2024"}, code: apierrors.ExitUsage},
		{name: "reversed range", args: []string{"report", "--from", "2024-12-01", "--to", "2024-01-01"}, code: apierrors.ExitUsage},
		{name: "unknown table", args: []string{"export", "invoices"}, code: apierrors.ExitNotFound},
		{name: "summary as csv", args: []string{"export", "summary", "--format", "csv"}, code: apierrors.ExitUsage},
		{name: "bad format", args: []string{"export", "tasks", "--format", "pdf"}, code: apierrors.ExitUsage},
		{name: "missing config file", args: []string{"report", "--config", filepath.Join(t.TempDir(), "missing.yaml")}, code: apierrors.ExitConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, append(tt.args, "--data-dir", files.Dir)...)
			require.Error(t, err)
			assert.Equal(t, tt.code, apierrors.ExitCode(err), err.Error())
		})
	}
}

func TestExportCmd(t *testing.T) {
	files := testutil.NewDataDir(t)
	outDir := t.TempDir()

	t.Run("raw table is verbatim", func(t *testing.T) {
		path := filepath.Join(outDir, "projects.csv")
		out, err := execute(t, "export", "projects", "--data-dir", files.Dir, "--output", path)
		require.NoError(t, err, out)
		assert.Contains(t, out, "wrote 2 rows")

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "Skyline,Phase 2,Residential,Towers,2024-06-01,2025-03-31")
	})

	t.Run("filtered tasks", func(t *testing.T) {
		path := filepath.Join(outDir, "nested", "tasks.csv")
		out, err := execute(t, "export", "tasks", "--data-dir", files.Dir, "--output", path, "--assigned-to", "Meera")
		require.NoError(t, err, out)
		assert.Contains(t, out, "wrote 2 rows")

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.NotContains(t, string(data), "Hoarding")
	})

	t.Run("summary workbook", func(t *testing.T) {
		path := filepath.Join(outDir, "summary.xlsx")
		_, err := execute(t, "export", "summary", "--data-dir", files.Dir, "--output", path, "--format", "xlsx")
		require.NoError(t, err)

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	})
}

func TestSetupCmd(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	source := t.TempDir()
	testutil.WriteFile(t, filepath.Join(source, "projects.csv"), testutil.SampleProjectsCSV)

	out, err := execute(t, "setup", "--data-dir", dir, "--source", source)
	require.NoError(t, err, out)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 7) // header plus six inputs
	assert.Contains(t, out, "copied")
	assert.Contains(t, out, "placeholder")

	for _, name := range []string{"tasks.csv", "projects.csv", "project_timelines.md"} {
		assert.FileExists(t, filepath.Join(dir, name))
	}
}
