// internal/workers/loan/request-loan-document/models.go
package requestloandocument

type Input struct {
	ApplicationID string `json:"applicationId"`
	DocumentName  string `json:"documentName"`
	DocumentType  string `json:"documentType"`
	Notes         string `json:"notes"`
}

type Output struct {
	ApplicationID  string `json:"applicationId"`
	DocumentID     string `json:"documentId"`
	DocumentType   string `json:"documentType"`
	DocumentStatus string `json:"documentStatus"`
	RequestedAt    string `json:"requestedAt"` // ISO 8601
}
