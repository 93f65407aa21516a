// internal/workers/loan/update-loan-condition/models.go
package updateloancondition

type Input struct {
	ApplicationID string `json:"applicationId"`
	ConditionID   string `json:"conditionId"`
	Status        string `json:"status"`
}

type Output struct {
	ApplicationID     string `json:"applicationId"`
	ConditionID       string `json:"conditionId"`
	ConditionStatus   string `json:"conditionStatus"`
	ApplicationStatus string `json:"applicationStatus"`
	ClearToClose      bool   `json:"clearToClose"`
}
