// pkg/registry/schema.go
package registry

// Implementation states an activity moves through.
const (
	StatusPlanned    = "planned"
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"
)

type ActivityRegistry struct {
	Version     string     `json:"version"`
	LastUpdated string     `json:"lastUpdated"`
	Activities  []Activity `json:"activities"`
}

// Activity describes one Camunda service task of the matching process.
type Activity struct {
	ID                   string   `json:"id"`
	DisplayName          string   `json:"displayName"`
	Description          string   `json:"description"`
	Category             string   `json:"category"`
	Version              string   `json:"version"`
	TaskType             string   `json:"taskType"`
	ImplementationStatus string   `json:"implementationStatus"`
	InputVariables       []string `json:"inputVariables"`
	OutputVariables      []string `json:"outputVariables"`
	ErrorCodes           []string `json:"errorCodes"`
	Timeout              string   `json:"timeout"`
	Retries              int      `json:"retries"`
	Workflows            []string `json:"workflows"`
}
