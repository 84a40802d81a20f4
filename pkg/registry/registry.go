// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"
)

// activityIDPattern is domain.resource.action, e.g. inventory.dataset.ingest.
var activityIDPattern = regexp.MustCompile(`^[a-z]+\.[a-z]+\.[a-z]+(-[a-z]+)*$`)

var taskTypePattern = regexp.MustCompile(`^[a-z]+(-[a-z]+)*$`)

func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg ActivityRegistry
	err = json.Unmarshal(data, &reg)
	return &reg, err
}

// Save writes the registry as indented JSON, creating parent directories.
func Save(reg *ActivityRegistry, path string) error {
	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write registry file: %w", err)
	}
	return nil
}

// Find returns the activity with id, or nil.
func (r *ActivityRegistry) Find(id string) *Activity {
	for i := range r.Activities {
		if r.Activities[i].ID == id {
			return &r.Activities[i]
		}
	}
	return nil
}

// Upsert replaces the activity with the same ID or appends it.
func (r *ActivityRegistry) Upsert(a Activity) {
	if existing := r.Find(a.ID); existing != nil {
		*existing = a
	} else {
		r.Activities = append(r.Activities, a)
	}
	r.LastUpdated = time.Now().UTC().Format(time.RFC3339)
}

// ValidateActivityNaming checks the ID and task type conventions.
func ValidateActivityNaming(a Activity) error {
	if !activityIDPattern.MatchString(a.ID) {
		return fmt.Errorf("activity ID %q must look like domain.resource.action", a.ID)
	}
	if !taskTypePattern.MatchString(a.TaskType) {
		return fmt.Errorf("activity %s: task type %q must be lowercase kebab-case", a.ID, a.TaskType)
	}
	return nil
}

// Validate checks required fields, naming, statuses and uniqueness of IDs
// and task types.
func (r *ActivityRegistry) Validate() error {
	if len(r.Activities) == 0 {
		return fmt.Errorf("registry contains no activities")
	}

	ids := make(map[string]bool)
	taskTypes := make(map[string]string)
	for _, activity := range r.Activities {
		if activity.ID == "" {
			return fmt.Errorf("activity missing required field: ID")
		}
		if ids[activity.ID] {
			return fmt.Errorf("duplicate activity ID: %s", activity.ID)
		}
		ids[activity.ID] = true

		if activity.DisplayName == "" {
			return fmt.Errorf("activity %s missing required field: DisplayName", activity.ID)
		}
		if activity.TaskType == "" {
			return fmt.Errorf("activity %s missing required field: TaskType", activity.ID)
		}
		if activity.Category == "" {
			return fmt.Errorf("activity %s missing required field: Category", activity.ID)
		}
		if err := ValidateActivityNaming(activity); err != nil {
			return err
		}
		if other, ok := taskTypes[activity.TaskType]; ok {
			return fmt.Errorf("activities %s and %s share task type %s", other, activity.ID, activity.TaskType)
		}
		taskTypes[activity.TaskType] = activity.ID

		switch activity.ImplementationStatus {
		case StatusPlanned, StatusInProgress, StatusCompleted, StatusVerified:
		default:
			return fmt.Errorf("activity %s has unknown status %q", activity.ID, activity.ImplementationStatus)
		}
		if activity.Timeout != "" {
			if _, err := time.ParseDuration(activity.Timeout); err != nil {
				return fmt.Errorf("activity %s has invalid timeout %q", activity.ID, activity.Timeout)
			}
		}
	}
	return nil
}
