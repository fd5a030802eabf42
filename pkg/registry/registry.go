// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg ActivityRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse registry %s: %w", path, err)
	}
	return &reg, nil
}

// Find returns the activity bound to a task type.
func (r *ActivityRegistry) Find(taskType string) (Activity, bool) {
	for _, a := range r.Activities {
		if a.TaskType == taskType {
			return a, true
		}
	}
	return Activity{}, false
}

// Diff compares the registry with the task types a binary implements.
// Missing lists registered activities with no implementation, Unregistered
// lists implementations the registry does not describe.
func (r *ActivityRegistry) Diff(implemented []string) (missing, unregistered []string) {
	have := make(map[string]bool, len(implemented))
	for _, t := range implemented {
		have[t] = true
	}

	registered := make(map[string]bool, len(r.Activities))
	for _, a := range r.Activities {
		registered[a.TaskType] = true
		if !have[a.TaskType] && a.ImplementationStatus != StatusPlanned {
			missing = append(missing, a.TaskType)
		}
	}
	for _, t := range implemented {
		if !registered[t] {
			unregistered = append(unregistered, t)
		}
	}

	sort.Strings(missing)
	sort.Strings(unregistered)
	return missing, unregistered
}

// Validate checks that every activity has an id and task type and that task
// types are unique.
func (r *ActivityRegistry) Validate() error {
	seen := map[string]bool{}
	for i, a := range r.Activities {
		if a.ID == "" || a.TaskType == "" {
			return fmt.Errorf("activity %d: id and taskType are required", i)
		}
		if seen[a.TaskType] {
			return fmt.Errorf("activity %s: duplicate taskType %q", a.ID, a.TaskType)
		}
		seen[a.TaskType] = true
	}
	return nil
}
