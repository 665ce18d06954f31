package domain

import (
	"math"
	"time"
)

const (
	DefaultTaskStatus   = "pending"
	DefaultTaskPriority = 1

	// Priorities are stored as 32-bit integers by every backend.
	MinTaskPriority = math.MinInt32
	MaxTaskPriority = math.MaxInt32
)

// ValidPriority reports whether p fits the stored priority range.
func ValidPriority(p int) bool {
	return p >= MinTaskPriority && p <= MaxTaskPriority
}

// Task represents a to-do item owned by exactly one user.
type Task struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Status      string    `json:"status"`
	Priority    int       `json:"priority"`
	CreatedAt   time.Time `json:"created_at"`
	OwnerID     int64     `json:"owner_id"`
}

// TaskPatch carries the fields of a partial update. Nil fields are left untouched.
// ClearDescription sets the description to null and wins over Description.
type TaskPatch struct {
	Title            *string
	Description      *string
	ClearDescription bool
	Status           *string
	Priority         *int
}

// SetsDescription reports whether the patch touches the description column.
func (p TaskPatch) SetsDescription() bool {
	return p.ClearDescription || p.Description != nil
}

// DescriptionValue returns the value to store when SetsDescription is true.
func (p TaskPatch) DescriptionValue() *string {
	if p.ClearDescription {
		return nil
	}
	return p.Description
}
