// internal/workers/loan/update-loan-document/models.go
package updateloandocument

type Input struct {
	ApplicationID string `json:"applicationId"`
	DocumentID    string `json:"documentId"`
	Status        string `json:"status"`
}

type Output struct {
	ApplicationID        string `json:"applicationId"`
	DocumentID           string `json:"documentId"`
	DocumentStatus       string `json:"documentStatus"`
	ApplicationStatus    string `json:"applicationStatus"`
	AllDocumentsReceived bool   `json:"allDocumentsReceived"`
}
