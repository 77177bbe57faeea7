package actions

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/arubanetworks/central-cli/internal/api"
)

// Task is the YAML/JSON shape of one declarative group operation. YAML is
// a superset of JSON, so a single decoder covers both file formats.
type Task struct {
	Action          string               `yaml:"action"`
	GroupName       string               `yaml:"group_name"`
	GroupList       []string             `yaml:"group_list"`
	GroupAttributes *api.GroupAttributes `yaml:"group_attributes"`
	CloneFromGroup  string               `yaml:"clone_from_group"`
	Limit           *int                 `yaml:"limit"`
	Offset          *int                 `yaml:"offset"`
}

// Request converts the task to a dispatch request with defaults applied.
// The action string is carried through unvalidated; Run rejects unknown
// actions before building any request.
func (t Task) Request() Request {
	req := NewRequest(Action(t.Action))
	req.GroupName = t.GroupName
	req.GroupList = t.GroupList
	req.GroupAttributes = t.GroupAttributes
	req.CloneFromGroup = t.CloneFromGroup
	if t.Limit != nil {
		req.Limit = *t.Limit
	}
	if t.Offset != nil {
		req.Offset = *t.Offset
	}
	return req
}

// ParseTasks decodes a task document: either a single task mapping or a
// sequence of task mappings.
func ParseTasks(data []byte) ([]Task, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid task file: %w", err)
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil, fmt.Errorf("task file is empty")
	}

	root := doc.Content[0]
	switch root.Kind {
	case yaml.SequenceNode:
		var tasks []Task
		if err := root.Decode(&tasks); err != nil {
			return nil, fmt.Errorf("invalid task list: %w", err)
		}
		if len(tasks) == 0 {
			return nil, fmt.Errorf("task file is empty")
		}
		return tasks, nil
	case yaml.MappingNode:
		var task Task
		if err := root.Decode(&task); err != nil {
			return nil, fmt.Errorf("invalid task: %w", err)
		}
		return []Task{task}, nil
	default:
		return nil, fmt.Errorf("task file must contain a task mapping or a list of tasks")
	}
}
