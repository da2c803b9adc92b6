package files

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskdash/internal/config"
)

func testFiles(dir string) config.DataFiles {
	return config.DataConfig{
		Dir:              dir,
		TasksFile:        "tasks.csv",
		ProjectsFile:     "projects.csv",
		TeamMembersFile:  "team_members.csv",
		ContentTypesFile: "content_types.csv",
		MessagesFile:     "messages.csv",
		TimelinesFile:    "project_timelines.md",
	}.Files()
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestDiscovery_Inspect(t *testing.T) {
	dir := t.TempDir()
	files := testFiles(dir)
	writeFile(t, files.Tasks, "task_id,task_name\n1,Brochure\n")
	writeFile(t, files.Messages, PlaceholderContent)

	infos := NewDiscovery(files).Inspect()

	require.Len(t, infos, 6)
	assert.Equal(t, "tasks.csv", infos[0].Name)
	assert.True(t, infos[0].Exists)
	assert.False(t, infos[0].Placeholder)
	assert.Positive(t, infos[0].Size)
	assert.False(t, infos[0].ModTime.IsZero())

	assert.False(t, infos[1].Exists)

	assert.Equal(t, "messages.csv", infos[4].Name)
	assert.True(t, infos[4].Placeholder)
}

func TestDiscovery_Missing(t *testing.T) {
	dir := t.TempDir()
	files := testFiles(dir)
	writeFile(t, files.Tasks, "task_id\n1\n")
	writeFile(t, files.Timelines, "# Timelines\n\nSkyline runs to March.\n")

	missing := NewDiscovery(files).Missing()

	names := make([]string, 0, len(missing))
	for _, m := range missing {
		names = append(names, m.Name)
	}
	assert.Equal(t, []string{"projects.csv", "team_members.csv", "content_types.csv", "messages.csv"}, names)
}

func TestStat_Directory(t *testing.T) {
	info := Stat(t.TempDir())
	assert.False(t, info.Exists)
}

func TestIsPlaceholder(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    bool
	}{
		{name: "placeholder", content: PlaceholderContent, want: true},
		{name: "empty", content: "", want: true},
		{name: "comments and blanks", content: "# one\n\n   # two\n", want: true},
		{name: "bom then comment", content: "\xef\xbb\xbf# note\n", want: true},
		{name: "header row", content: "# note\ntask_id\n", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "f.csv")
			writeFile(t, path, tt.content)
			assert.Equal(t, tt.want, isPlaceholder(path))
		})
	}
}

func TestFindFilesByPattern(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "tasks.csv"), "a\n")
	writeFile(t, filepath.Join(dir, "messages.csv"), "a\n")
	writeFile(t, filepath.Join(dir, "notes.md"), "a\n")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "dir.csv"), 0755))

	found, err := FindFilesByPattern(dir, "*.csv")
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "messages.csv", found[0].Name)
	assert.Equal(t, "tasks.csv", found[1].Name)

	_, err = FindFilesByPattern(dir, "[")
	assert.Error(t, err)
}
