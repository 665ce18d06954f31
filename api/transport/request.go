package transport

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/fastygo/tasktracker/domain"
)

type UserCreateRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TaskCreateRequest uses pointers so absent and null fields can take defaults.
type TaskCreateRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Priority    *int    `json:"priority"`
}

// TaskUpdateRequest records which fields were present in the body.
type TaskUpdateRequest struct {
	Patch domain.TaskPatch
}

var nullJSON = []byte("null")

// UnmarshalJSON decodes a partial update. Absent fields stay nil; an explicit
// null clears the description and is rejected for every other field.
func (r *TaskUpdateRequest) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		return fmt.Errorf("expected a JSON object")
	}

	var patch domain.TaskPatch
	for key, value := range raw {
		isNull := bytes.Equal(bytes.TrimSpace(value), nullJSON)
		switch key {
		case "title":
			if isNull {
				return fmt.Errorf("title must not be null")
			}
			if err := json.Unmarshal(value, &patch.Title); err != nil {
				return fmt.Errorf("title: %w", err)
			}
		case "description":
			if isNull {
				patch.ClearDescription = true
				continue
			}
			if err := json.Unmarshal(value, &patch.Description); err != nil {
				return fmt.Errorf("description: %w", err)
			}
		case "status":
			if isNull {
				return fmt.Errorf("status must not be null")
			}
			if err := json.Unmarshal(value, &patch.Status); err != nil {
				return fmt.Errorf("status: %w", err)
			}
		case "priority":
			if isNull {
				return fmt.Errorf("priority must not be null")
			}
			if err := json.Unmarshal(value, &patch.Priority); err != nil {
				return fmt.Errorf("priority: %w", err)
			}
		}
	}
	r.Patch = patch
	return nil
}
