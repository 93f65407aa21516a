// internal/workers/loan/record-underwriting-decision/models.go
package recordunderwritingdecision

import "github.com/shopspring/decimal"

type Input struct {
	ApplicationID  string              `json:"applicationId"`
	Approved       bool                `json:"approved"`
	ApprovedAmount decimal.NullDecimal `json:"approvedAmount"`
	InterestRate   decimal.NullDecimal `json:"interestRate"`
	Reason         string              `json:"reason"`
	Conditions     []string            `json:"conditions"`
}

type Output struct {
	ApplicationID     string              `json:"applicationId"`
	ApplicationStatus string              `json:"applicationStatus"`
	Approved          bool                `json:"approved"`
	ApprovedAmount    decimal.NullDecimal `json:"approvedAmount"`
	InterestRate      decimal.NullDecimal `json:"interestRate"`
	OpenConditions    int                 `json:"openConditions"`
}
