// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"

	apperrors "readiness-workers/internal/common/errors"
)

// DefaultPath is where the registry lives relative to the repository root.
const DefaultPath = "configs/activity-registry.json"

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

// Save writes the registry as indented JSON, creating the directory if
// needed.
func (r *ActivityRegistry) Save(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
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

func (r *ActivityRegistry) touch() {
	r.LastUpdated = time.Now().UTC().Format(time.RFC3339)
}

// Add appends an activity; ids must be unique.
func (r *ActivityRegistry) Add(activity Activity) error {
	if r.find(activity.ID) >= 0 {
		return fmt.Errorf("activity with ID %s already exists", activity.ID)
	}
	r.Activities = append(r.Activities, activity)
	r.touch()
	return nil
}

// Update sets one scalar field of the activity with the given id.
func (r *ActivityRegistry) Update(id, field, value string) error {
	i := r.find(id)
	if i < 0 {
		return fmt.Errorf("activity with ID %s not found", id)
	}

	a := &r.Activities[i]
	switch field {
	case "status":
		a.ImplementationStatus = value
	case "version":
		a.Version = value
	case "displayName":
		a.DisplayName = value
	case "description":
		a.Description = value
	case "category":
		a.Category = value
	case "taskType":
		a.TaskType = value
	case "timeout":
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid timeout value: %w", err)
		}
		a.Timeout = value
	case "retries":
		retries, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid retries value: %w", err)
		}
		a.Retries = retries
	default:
		return fmt.Errorf("unknown field: %s", field)
	}
	r.touch()
	return nil
}

// Find returns the activity registered for a job type.
func (r *ActivityRegistry) Find(taskType string) (*Activity, bool) {
	for i := range r.Activities {
		if r.Activities[i].TaskType == taskType {
			return &r.Activities[i], true
		}
	}
	return nil, false
}

// TaskTypes lists the registered job types in sorted order.
func (r *ActivityRegistry) TaskTypes() []string {
	out := make([]string, 0, len(r.Activities))
	for _, a := range r.Activities {
		out = append(out, a.TaskType)
	}
	sort.Strings(out)
	return out
}

func (r *ActivityRegistry) find(id string) int {
	for i := range r.Activities {
		if r.Activities[i].ID == id {
			return i
		}
	}
	return -1
}

// Validate checks required fields, uniqueness of ids and task types, that
// every error code is one the workers can throw and that the schemas
// compile.
func (r *ActivityRegistry) Validate() error {
	if len(r.Activities) == 0 {
		return fmt.Errorf("registry contains no activities")
	}

	known := knownErrorCodes()
	ids := make(map[string]bool)
	taskTypes := make(map[string]bool)
	var problems []string

	for _, a := range r.Activities {
		if a.ID == "" {
			problems = append(problems, "activity missing required field: ID")
			continue
		}
		if ids[a.ID] {
			problems = append(problems, "duplicate activity ID: "+a.ID)
		}
		ids[a.ID] = true

		if a.DisplayName == "" {
			problems = append(problems, fmt.Sprintf("activity %s missing required field: DisplayName", a.ID))
		}
		if a.Category == "" {
			problems = append(problems, fmt.Sprintf("activity %s missing required field: Category", a.ID))
		}
		if a.TaskType == "" {
			problems = append(problems, fmt.Sprintf("activity %s missing required field: TaskType", a.ID))
		} else if taskTypes[a.TaskType] {
			problems = append(problems, fmt.Sprintf("activity %s reuses task type %s", a.ID, a.TaskType))
		}
		taskTypes[a.TaskType] = true

		for _, code := range a.ErrorCodes {
			if !known[code] {
				problems = append(problems, fmt.Sprintf("activity %s lists unknown error code %s", a.ID, code))
			}
		}
		for name, schema := range map[string]map[string]interface{}{"input": a.InputSchema, "output": a.OutputSchema} {
			if len(schema) == 0 {
				continue
			}
			if _, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(schema)); err != nil {
				problems = append(problems, fmt.Sprintf("activity %s has an invalid %s schema: %v", a.ID, name, err))
			}
		}
	}

	if len(problems) > 0 {
		sort.Strings(problems)
		return fmt.Errorf("registry invalid: %s", strings.Join(problems, "; "))
	}
	return nil
}

// ValidateVariables checks process variables against an activity's input
// or output schema. An activity without that schema accepts anything.
func (a *Activity) ValidateVariables(vars interface{}, output bool) error {
	schema := a.InputSchema
	if output {
		schema = a.OutputSchema
	}
	if len(schema) == 0 {
		return nil
	}

	result, err := gojsonschema.Validate(gojsonschema.NewGoLoader(schema), gojsonschema.NewGoLoader(vars))
	if err != nil {
		return fmt.Errorf("validate %s variables: %w", a.TaskType, err)
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("%s variables do not match schema: %s", a.TaskType, strings.Join(msgs, "; "))
}

func knownErrorCodes() map[string]bool {
	known := make(map[string]bool, len(apperrors.BPMNErrorMapping)+1)
	for _, code := range apperrors.BPMNErrorMapping {
		known[code] = true
	}
	known[string(apperrors.ErrCodeInternal)] = true
	return known
}
