// pkg/registry/activities.go
package registry

const uuidPattern = "^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$"

const workflowLoanOrigination = "loan-origination"

func uuidProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"pattern":     uuidPattern,
		"description": description,
	}
}

func object(required []string, properties map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"required":   required,
		"properties": properties,
	}
}

var applicationIDOnly = object([]string{"applicationId"}, map[string]interface{}{
	"applicationId": uuidProperty("Loan application id"),
})

var applicationOutput = object([]string{"applicationId", "applicationStatus"}, map[string]interface{}{
	"applicationId":     map[string]interface{}{"type": "string"},
	"applicationStatus": map[string]interface{}{"type": "string"},
})

var (
	conditionTypes    = []interface{}{"PriorToApproval", "PriorToClosing", "PriorToFunding", "PostClosing"}
	conditionStatuses = []interface{}{"Pending", "InProgress", "Satisfied", "Waived", "NotMet"}
	documentTypes     = []interface{}{"DriversLicense", "PayStubs", "W2Forms", "BankStatements", "TaxReturns", "PurchaseAgreement", "Other"}
	documentStatuses  = []interface{}{"Required", "Requested", "Received", "UnderReview", "Approved", "Rejected", "Waived"}
)

// Default is the registry of the loan origination activities served by
// this module.
func Default() *ActivityRegistry {
	return &ActivityRegistry{
		Version:     "1.0.0",
		LastUpdated: "2025-06-01T00:00:00Z",
		Activities: []Activity{
			{
				ID:          "create-loan-application",
				DisplayName: "Create Loan Application",
				Description: "Opens a draft application for an existing customer and property",
				Category:    "loan",
				Version:     "1.0.0",
				TaskType:    "create-loan-application",
				InputSchema: object(
					[]string{"customerId", "propertyId", "requestedLoanAmount", "requestedTermMonths"},
					map[string]interface{}{
						"customerId":          uuidProperty("Customer id"),
						"propertyId":          uuidProperty("Property id"),
						"requestedLoanAmount": map[string]interface{}{"type": "number", "exclusiveMinimum": 0},
						"downPaymentAmount":   map[string]interface{}{"type": "number", "minimum": 0},
						"requestedTermMonths": map[string]interface{}{"type": "integer", "minimum": 1, "maximum": 480},
						"purpose": map[string]interface{}{
							"type": "string",
							"enum": []interface{}{"Purchase", "Refinance", "CashOutRefinance", "HomeEquity", "Construction"},
						},
						"applicationType": map[string]interface{}{
							"type": "string",
							"enum": []interface{}{"Purchase", "Refinance", "HELOC", "ReverseMortgage"},
						},
						"notes": map[string]interface{}{"type": "string", "maxLength": 2000},
					},
				),
				OutputSchema: object([]string{"applicationId", "applicationNumber"}, map[string]interface{}{
					"applicationId":     map[string]interface{}{"type": "string"},
					"applicationNumber": map[string]interface{}{"type": "string"},
				}),
				ErrorCodes: []string{"VALIDATION_FAILED", "PERSISTENCE_FAILED"},
				Timeout:    "30s",
				Retries:    3,
				Workflows:  []string{workflowLoanOrigination},
				Tags:       []string{"application"},
			},
			{
				ID:          "submit-loan-application",
				DisplayName: "Submit Loan Application",
				Description: "Submits a draft application once terms are accepted and the credit check is authorized",
				Category:    "loan",
				Version:     "1.0.0",
				TaskType:    "submit-loan-application",
				InputSchema: object([]string{"applicationId", "acceptTerms", "authorizeCreditCheck"}, map[string]interface{}{
					"applicationId":        uuidProperty("Loan application id"),
					"acceptTerms":          map[string]interface{}{"type": "boolean"},
					"authorizeCreditCheck": map[string]interface{}{"type": "boolean"},
				}),
				OutputSchema: applicationOutput,
				ErrorCodes:   []string{"APPLICATION_NOT_FOUND", "INVALID_APPLICATION_STATE", "VALIDATION_FAILED"},
				Timeout:      "30s",
				Retries:      3,
				Workflows:    []string{workflowLoanOrigination},
				Tags:         []string{"application"},
			},
			{
				ID:          "start-underwriting",
				DisplayName: "Start Underwriting",
				Description: "Gathers customer and property data concurrently and runs automated underwriting",
				Category:    "underwriting",
				Version:     "1.0.0",
				TaskType:    "start-underwriting",
				InputSchema: applicationIDOnly,
				OutputSchema: object([]string{"applicationId", "underwritingDecision"}, map[string]interface{}{
					"applicationId":        map[string]interface{}{"type": "string"},
					"underwritingDecision": map[string]interface{}{"type": "string"},
					"issues":               map[string]interface{}{"type": "array"},
					"absentInputs":         map[string]interface{}{"type": "array"},
				}),
				ErrorCodes: []string{"APPLICATION_NOT_FOUND", "PERSISTENCE_FAILED", "CONCURRENT_OPERATION"},
				Timeout:    "120s",
				Retries:    3,
				Workflows:  []string{workflowLoanOrigination},
				Tags:       []string{"underwriting", "fan-out"},
			},
			{
				ID:          "record-underwriting-decision",
				DisplayName: "Record Underwriting Decision",
				Description: "Records an approve, conditional approve or reject decision",
				Category:    "underwriting",
				Version:     "1.0.0",
				TaskType:    "record-underwriting-decision",
				InputSchema: object([]string{"applicationId", "approved"}, map[string]interface{}{
					"applicationId":  uuidProperty("Loan application id"),
					"approved":       map[string]interface{}{"type": "boolean"},
					"approvedAmount": map[string]interface{}{"type": []interface{}{"number", "null"}, "exclusiveMinimum": 0},
					"interestRate":   map[string]interface{}{"type": []interface{}{"number", "null"}, "minimum": 0, "maximum": 100},
					"reason":         map[string]interface{}{"type": "string"},
					"conditions": map[string]interface{}{
						"type":  []interface{}{"array", "null"},
						"items": map[string]interface{}{"type": "string", "minLength": 1},
					},
				}),
				OutputSchema: applicationOutput,
				ErrorCodes:   []string{"APPLICATION_NOT_FOUND", "PERSISTENCE_FAILED", "CONCURRENT_OPERATION"},
				Timeout:      "30s",
				Retries:      3,
				Workflows:    []string{workflowLoanOrigination},
				Tags:         []string{"underwriting", "decision"},
			},
			{
				ID:          "fund-loan",
				DisplayName: "Fund Loan",
				Description: "Creates and funds the loan and sets up the payment schedule",
				Category:    "funding",
				Version:     "1.0.0",
				TaskType:    "fund-loan",
				InputSchema: applicationIDOnly,
				OutputSchema: object([]string{"applicationId", "loanId", "loanNumber"}, map[string]interface{}{
					"applicationId":   map[string]interface{}{"type": "string"},
					"loanId":          map[string]interface{}{"type": "string"},
					"loanNumber":      map[string]interface{}{"type": "string"},
					"funded":          map[string]interface{}{"type": "boolean"},
					"scheduleCreated": map[string]interface{}{"type": "boolean"},
				}),
				ErrorCodes: []string{"APPLICATION_NOT_FOUND", "INVALID_APPLICATION_STATE", "DEPENDENCY_FAILURE", "PERSISTENCE_FAILED", "CONCURRENT_OPERATION"},
				Timeout:    "120s",
				Retries:    3,
				Workflows:  []string{workflowLoanOrigination},
				Tags:       []string{"funding", "saga"},
			},
			{
				ID:          "withdraw-loan-application",
				DisplayName: "Withdraw Loan Application",
				Description: "Withdraws an application that has not reached a terminal status",
				Category:    "loan",
				Version:     "1.0.0",
				TaskType:    "withdraw-loan-application",
				InputSchema: object([]string{"applicationId"}, map[string]interface{}{
					"applicationId": uuidProperty("Loan application id"),
					"reason":        map[string]interface{}{"type": "string"},
				}),
				OutputSchema: applicationOutput,
				ErrorCodes:   []string{"APPLICATION_NOT_FOUND", "INVALID_APPLICATION_STATE"},
				Timeout:      "30s",
				Retries:      3,
				Workflows:    []string{workflowLoanOrigination},
				Tags:         []string{"application"},
			},
			{
				ID:          "add-loan-condition",
				DisplayName: "Add Loan Condition",
				Description: "Attaches a pending underwriting condition to an open application",
				Category:    "loan",
				Version:     "1.0.0",
				TaskType:    "add-loan-condition",
				InputSchema: object([]string{"applicationId", "conditionName"}, map[string]interface{}{
					"applicationId": uuidProperty("Loan application id"),
					"conditionName": map[string]interface{}{"type": "string", "minLength": 1},
					"description":   map[string]interface{}{"type": "string"},
					"conditionType": map[string]interface{}{"type": "string", "enum": conditionTypes},
					"dueDate":       map[string]interface{}{"type": "string", "pattern": `^\d{4}-\d{2}-\d{2}$`},
				}),
				OutputSchema: object([]string{"applicationId", "conditionId"}, map[string]interface{}{
					"applicationId":   map[string]interface{}{"type": "string"},
					"conditionId":     map[string]interface{}{"type": "string"},
					"conditionType":   map[string]interface{}{"type": "string"},
					"conditionStatus": map[string]interface{}{"type": "string"},
				}),
				ErrorCodes: []string{"APPLICATION_NOT_FOUND", "INVALID_APPLICATION_STATE", "VALIDATION_FAILED"},
				Timeout:    "30s",
				Retries:    3,
				Workflows:  []string{workflowLoanOrigination},
				Tags:       []string{"conditions"},
			},
			{
				ID:          "update-loan-condition",
				DisplayName: "Update Loan Condition",
				Description: "Records a condition's status and moves the application to ClearToClose once nothing blocks closing",
				Category:    "loan",
				Version:     "1.0.0",
				TaskType:    "update-loan-condition",
				InputSchema: object([]string{"applicationId", "conditionId", "status"}, map[string]interface{}{
					"applicationId": uuidProperty("Loan application id"),
					"conditionId":   uuidProperty("Condition id"),
					"status":        map[string]interface{}{"type": "string", "enum": conditionStatuses},
				}),
				OutputSchema: object([]string{"applicationId", "applicationStatus", "clearToClose"}, map[string]interface{}{
					"applicationId":     map[string]interface{}{"type": "string"},
					"conditionId":       map[string]interface{}{"type": "string"},
					"conditionStatus":   map[string]interface{}{"type": "string"},
					"applicationStatus": map[string]interface{}{"type": "string"},
					"clearToClose":      map[string]interface{}{"type": "boolean"},
				}),
				ErrorCodes: []string{"APPLICATION_NOT_FOUND", "VALIDATION_FAILED"},
				Timeout:    "30s",
				Retries:    3,
				Workflows:  []string{workflowLoanOrigination},
				Tags:       []string{"conditions"},
			},
			{
				ID:          "request-loan-document",
				DisplayName: "Request Loan Document",
				Description: "Asks the borrower for another document on an open application",
				Category:    "loan",
				Version:     "1.0.0",
				TaskType:    "request-loan-document",
				InputSchema: object([]string{"applicationId", "documentName"}, map[string]interface{}{
					"applicationId": uuidProperty("Loan application id"),
					"documentName":  map[string]interface{}{"type": "string", "minLength": 1},
					"documentType":  map[string]interface{}{"type": "string", "enum": documentTypes},
					"notes":         map[string]interface{}{"type": "string"},
				}),
				OutputSchema: object([]string{"applicationId", "documentId"}, map[string]interface{}{
					"applicationId":  map[string]interface{}{"type": "string"},
					"documentId":     map[string]interface{}{"type": "string"},
					"documentType":   map[string]interface{}{"type": "string"},
					"documentStatus": map[string]interface{}{"type": "string"},
					"requestedAt":    map[string]interface{}{"type": "string"},
				}),
				ErrorCodes: []string{"APPLICATION_NOT_FOUND", "INVALID_APPLICATION_STATE", "VALIDATION_FAILED"},
				Timeout:    "30s",
				Retries:    3,
				Workflows:  []string{workflowLoanOrigination},
				Tags:       []string{"documents"},
			},
			{
				ID:          "update-loan-document",
				DisplayName: "Update Loan Document",
				Description: "Records a document's review status and marks the application DocumentsReceived once nothing is outstanding",
				Category:    "loan",
				Version:     "1.0.0",
				TaskType:    "update-loan-document",
				InputSchema: object([]string{"applicationId", "documentId", "status"}, map[string]interface{}{
					"applicationId": uuidProperty("Loan application id"),
					"documentId":    uuidProperty("Document id"),
					"status":        map[string]interface{}{"type": "string", "enum": documentStatuses},
				}),
				OutputSchema: object([]string{"applicationId", "applicationStatus", "allDocumentsReceived"}, map[string]interface{}{
					"applicationId":        map[string]interface{}{"type": "string"},
					"documentId":           map[string]interface{}{"type": "string"},
					"documentStatus":       map[string]interface{}{"type": "string"},
					"applicationStatus":    map[string]interface{}{"type": "string"},
					"allDocumentsReceived": map[string]interface{}{"type": "boolean"},
				}),
				ErrorCodes: []string{"APPLICATION_NOT_FOUND", "VALIDATION_FAILED"},
				Timeout:    "30s",
				Retries:    3,
				Workflows:  []string{workflowLoanOrigination},
				Tags:       []string{"documents"},
			},
		},
	}
}
