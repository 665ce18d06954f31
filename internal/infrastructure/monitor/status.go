package monitor

import "time"

// Status is the last observed health of every probed dependency.
type Status struct {
	Healthy   bool            `json:"healthy"`
	Services  map[string]bool `json:"services"`
	LastCheck time.Time       `json:"last_check"`
}
