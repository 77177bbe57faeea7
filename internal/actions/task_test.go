package actions

import (
	"testing"

	"github.com/arubanetworks/central-cli/internal/api"
)

func TestParseTasks_SingleMapping(t *testing.T) {
	data := []byte(`
action: create
group_name: Branch-01
group_attributes:
  template_info:
    wired: true
    wireless: false
  architecture: AOS10
  device_type: [AccessPoints]
`)
	tasks, err := ParseTasks(data)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("Expected 1 task, got %d", len(tasks))
	}
	task := tasks[0]
	if task.Action != "create" || task.GroupName != "Branch-01" {
		t.Errorf("Unexpected task: %+v", task)
	}
	if task.GroupAttributes == nil || task.GroupAttributes.TemplateInfo == nil {
		t.Fatal("Expected group attributes decoded")
	}
	if !task.GroupAttributes.TemplateInfo.Wired {
		t.Error("Expected wired=true")
	}
	if task.GroupAttributes.Architecture != api.ArchitectureAOS10 {
		t.Errorf("Expected AOS10, got %s", task.GroupAttributes.Architecture)
	}
}

func TestParseTasks_Sequence(t *testing.T) {
	data := []byte(`
- action: clone
  group_name: Branch-02
  clone_from_group: Branch-01
- action: delete
  group_name: Branch-03
`)
	tasks, err := ParseTasks(data)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("Expected 2 tasks, got %d", len(tasks))
	}
	if tasks[0].CloneFromGroup != "Branch-01" {
		t.Errorf("Unexpected clone source: %q", tasks[0].CloneFromGroup)
	}
	if tasks[1].Action != "delete" {
		t.Errorf("Unexpected second action: %q", tasks[1].Action)
	}
}

func TestParseTasks_JSONDocument(t *testing.T) {
	data := []byte(`{"action": "get_groups", "limit": 50, "offset": 10}`)
	tasks, err := ParseTasks(data)
	if err != nil {
		t.Fatalf("Expected JSON input accepted, got: %v", err)
	}
	req := tasks[0].Request()
	if req.Limit != 50 || req.Offset != 10 {
		t.Errorf("Expected paging overrides applied, got limit=%d offset=%d", req.Limit, req.Offset)
	}
}

func TestParseTasks_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty", ""},
		{"scalar", `"just a string"`},
		{"empty list", "[]"},
		{"malformed", "action: [unclosed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseTasks([]byte(tt.data)); err == nil {
				t.Errorf("Expected error for %q", tt.data)
			}
		})
	}
}

func TestTaskRequest_Defaults(t *testing.T) {
	req := Task{Action: "get_groups"}.Request()
	if req.Limit != DefaultLimit {
		t.Errorf("Expected default limit %d, got %d", DefaultLimit, req.Limit)
	}
	if req.Offset != DefaultOffset {
		t.Errorf("Expected default offset %d, got %d", DefaultOffset, req.Offset)
	}
}
