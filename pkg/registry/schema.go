package registry

import "time"

// Implementation states an activity can be in.
const (
	StatusImplemented = "implemented"
	StatusPlanned     = "planned"
	StatusDeprecated  = "deprecated"
)

// ActivityRegistry is the catalogue of service tasks the orchestrator can
// serve, as exported to configs/activity-registry.json.
type ActivityRegistry struct {
	Version     string     `json:"version"`
	LastUpdated string     `json:"lastUpdated"`
	Activities  []Activity `json:"activities"`
}

// Activity describes one BPMN service task: its job type, the variables it
// accepts and returns, and the error codes it can raise.
type Activity struct {
	ID          string `json:"id"`
	TaskType    string `json:"taskType"`
	DisplayName string `json:"displayName"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Version     string `json:"version"`

	ImplementationStatus string `json:"implementationStatus"`

	InputSchema  map[string]interface{} `json:"inputSchema"`
	OutputSchema map[string]interface{} `json:"outputSchema"`
	ErrorCodes   []string               `json:"errorCodes"`

	// Timeout is a Go duration string, e.g. "2m".
	Timeout string `json:"timeout"`
	Retries int    `json:"retries"`

	Workflows []string `json:"workflows,omitempty"`
	Tags      []string `json:"tags,omitempty"`
}

// TimeoutDuration parses Timeout, returning fallback when it is empty.
func (a Activity) TimeoutDuration(fallback time.Duration) (time.Duration, error) {
	if a.Timeout == "" {
		return fallback, nil
	}
	return time.ParseDuration(a.Timeout)
}

// Implemented reports whether a worker exists for the activity.
func (a Activity) Implemented() bool {
	return a.ImplementationStatus == "" || a.ImplementationStatus == StatusImplemented
}
