// internal/workers/loan/add-loan-condition/models.go
package addloancondition

type Input struct {
	ApplicationID string `json:"applicationId"`
	ConditionName string `json:"conditionName"`
	Description   string `json:"description"`
	ConditionType string `json:"conditionType"`
	DueDate       string `json:"dueDate"` // YYYY-MM-DD
}

type Output struct {
	ApplicationID   string `json:"applicationId"`
	ConditionID     string `json:"conditionId"`
	ConditionType   string `json:"conditionType"`
	ConditionStatus string `json:"conditionStatus"`
}
