package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"time"

	apperrors "loan-orchestrator/internal/common/errors"
	"loan-orchestrator/internal/models"
	"loan-orchestrator/internal/statemachine"

	"github.com/google/uuid"
)

const documentsReceivedReason = "All requested documents received"

type NewDocument struct {
	Name  string
	Type  models.DocumentType
	Notes string
}

type DocumentResult struct {
	Application *models.Application
	Document    models.Document
	// AllReceived is set when the change moved the application from
	// DocumentsRequested to DocumentsReceived.
	AllReceived bool
}

// AddDocument requests another document from the borrower.
func (o *Orchestrator) AddDocument(ctx context.Context, applicationID uuid.UUID, nd NewDocument) (doc *models.Document, err error) {
	start := time.Now()
	defer func() { o.observe(ctx, "add-document", start, err) }()

	if strings.TrimSpace(nd.Name) == "" {
		return nil, apperrors.NewValidationFailedError("documentName is required")
	}
	if nd.Type == "" {
		nd.Type = models.DocumentOther
	}
	if !nd.Type.Valid() {
		return nil, apperrors.NewValidationFailedError(fmt.Sprintf("unknown document type %q", nd.Type))
	}

	app, err := o.load(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app.Status.Terminal() {
		return nil, apperrors.NewInvalidStateError(app.ID.String(), string(app.Status), "add-document")
	}

	now := o.clock.Now()
	requested := now
	d := models.Document{
		ID:            uuid.New(),
		ApplicationID: app.ID,
		Name:          nd.Name,
		Type:          nd.Type,
		Status:        models.DocumentRequired,
		Notes:         nd.Notes,
		RequestedAt:   &requested,
	}
	app.Documents = append(app.Documents, d)
	app.UpdatedAt = now

	if err := o.commit(ctx, "add-document", Changes{
		Application: app,
		Documents:   []models.Document{d},
	}); err != nil {
		return nil, err
	}

	o.logger.Info("document requested", map[string]interface{}{
		"applicationId": app.ID.String(),
		"documentId":    d.ID.String(),
		"documentType":  string(d.Type),
	})
	return &d, nil
}

// UpdateDocumentStatus records a document's review state. Received and
// Approved stamp their timestamps once.
func (o *Orchestrator) UpdateDocumentStatus(ctx context.Context, applicationID, documentID uuid.UUID, status models.DocumentStatus) (res *DocumentResult, err error) {
	start := time.Now()
	defer func() { o.observe(ctx, "update-document", start, err) }()

	if !status.Valid() {
		return nil, apperrors.NewValidationFailedError(fmt.Sprintf("unknown document status %q", status))
	}

	app, err := o.load(ctx, applicationID)
	if err != nil {
		return nil, err
	}

	var d *models.Document
	for i := range app.Documents {
		if app.Documents[i].ID == documentID {
			d = &app.Documents[i]
			break
		}
	}
	if d == nil {
		return nil, apperrors.NewValidationFailedError(
			fmt.Sprintf("document %s not found on application %s", documentID, app.ID)).
			WithMetadata("documentId", documentID.String())
	}

	now := o.clock.Now()
	d.Status = status
	switch status {
	case models.DocumentReceived:
		if d.ReceivedAt == nil {
			received := now
			d.ReceivedAt = &received
		}
	case models.DocumentApproved:
		if d.ApprovedAt == nil {
			approved := now
			d.ApprovedAt = &approved
		}
	}
	app.UpdatedAt = now

	changes := Changes{Application: app, DocumentUpdates: []models.Document{*d}}
	res = &DocumentResult{Application: app, Document: *d}

	if app.Status == models.StatusDocumentsRequested && !outstanding(app.Documents) {
		entry, err := statemachine.Transition(app, models.StatusDocumentsReceived, documentsReceivedReason, models.ActorSystem, now)
		if err != nil {
			return nil, err
		}
		changes.History = []models.StatusHistory{entry}
		res.AllReceived = true
	}

	if err := o.commit(ctx, "update-document", changes); err != nil {
		return nil, err
	}

	o.logger.Info("document updated", map[string]interface{}{
		"applicationId": app.ID.String(),
		"documentId":    documentID.String(),
		"status":        string(status),
		"allReceived":   res.AllReceived,
	})
	return res, nil
}

func outstanding(documents []models.Document) bool {
	for _, d := range documents {
		if d.Outstanding() {
			return true
		}
	}
	return false
}
