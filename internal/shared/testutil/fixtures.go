package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"taskdash/internal/config"
)

// Sample inputs shared by service, handler and application tests. Task 4 is
// still in progress, task 5 has no date and task 6 takes its completion days
// from the file because it has no assignment date.
const (
	SampleTasksCSV = "\uFEFFtask_id,date,task_name,project,content_type,work_scope,assigned_by,assigned_to,assigned_on,delivered_on,update_status,revision_cycles,completion_days\n" +
		"1,2024-08-05,Brochure v1,Skyline,Brochure,Print,Asha,Ravi,2024-08-05,2024-08-05,completed,1,\n" +
		"2,07/10/2024,Launch post,Skyline,Social Post,Digital,Asha,Meera,07/10/2024,07/12/2024,sent,0,\n" +
		"3,\"Sep 2, 2024\",Hoarding,Greenfield,Hoarding,Outdoor,Vikram,Ravi,2024-09-02,2024-09-12,completed,3,\n" +
		"4,2024-09-15,Festive post,Greenfield,Social Post,Digital,Asha,Meera,2024-09-15,,in-progress,0,\n" +
		"5,not a date,Site video,Skyline,Video,Digital,Vikram,Ravi,,,assigned,0,\n" +
		"6,2024-10-01,Old brochure,Greenfield,Brochure,Print,Asha,Ravi,,,completed,2,5\n"

	SampleProjectsCSV = "name,phase,type,description,start_date,end_date\n" +
		"Skyline,Phase 2,Residential,Towers,2024-06-01,2025-03-31\n" +
		"Greenfield,Launch,Villas,Plots,2024-09-01,2025-06-30\n"

	SampleTeamMembersCSV = "name,role,team,specialization,joined_date,email\n" +
		"Ravi,Designer,Creative,Print,2023-01-10,ravi@example.com\n" +
		"Meera,Copywriter,Content,Social,2022-05-01,meera@example.com\n"

	SampleContentTypesCSV = "name,description,avg_completion_days,avg_revision_cycles,priority_level,typical_assigned_to,typical_tools,file_formats,best_practices\n" +
		"Brochure,Print brochure,4,2,High - sales collateral,Ravi,\"InDesign, Photoshop\",PDF,Bleed margins\n" +
		"Social Post,Feed post,1,1,Medium,Meera,Canva,PNG,Short copy\n" +
		"Hoarding,Outdoor,7,3,Low,Ravi,Illustrator,PDF,Large fonts\n"

	SampleMessagesCSV = "task_id,date,sender,recipient,content,attachment,message_type\n" +
		"1,2024-08-05,Asha,Ravi,Please start,,urgency\n" +
		"1,2024-08-04,Ravi,Asha,Draft ready,draft.pdf,feedback\n" +
		"3,2024-09-05,Vikram,Ravi,Change colours,,revision\n" +
		"1,2024-08-06,Asha,Ravi,Approved,,approval\n"

	SampleTimelinesMD = "# Project Timelines\n\n| Project | Start |\n|---|---|\n| Skyline | Jun 2024 |\n"
)

// DataFiles resolves the default input file names inside dir
func DataFiles(dir string) config.DataFiles {
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

// NewDataDir writes the sample inputs into a fresh temporary directory
func NewDataDir(t *testing.T) config.DataFiles {
	t.Helper()

	files := DataFiles(t.TempDir())
	contents := map[string]string{
		files.Tasks:        SampleTasksCSV,
		files.Projects:     SampleProjectsCSV,
		files.TeamMembers:  SampleTeamMembersCSV,
		files.ContentTypes: SampleContentTypesCSV,
		files.Messages:     SampleMessagesCSV,
		files.Timelines:    SampleTimelinesMD,
	}
	for path, content := range contents {
		WriteFile(t, path, content)
	}
	return files
}

// WriteFile writes content to path, creating parent directories
func WriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("create %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
