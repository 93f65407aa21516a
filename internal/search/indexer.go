// Package search keeps a denormalized view of each application in
// Elasticsearch for back-office queries.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"loan-orchestrator/internal/common/logger"
	"loan-orchestrator/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
)

type Indexer struct {
	client *elasticsearch.Client
	index  string
	logger logger.Logger
}

func NewIndexer(client *elasticsearch.Client, index string, log logger.Logger) *Indexer {
	return &Indexer{client: client, index: index, logger: log.Named("search")}
}

// ApplicationChanged upserts the application's summary document, keyed by
// application id.
func (i *Indexer) ApplicationChanged(ctx context.Context, app *models.Application, _ []models.StatusHistory) error {
	body, err := json.Marshal(app.Summary())
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}

	res, err := i.client.Index(
		i.index,
		bytes.NewReader(body),
		i.client.Index.WithContext(ctx),
		i.client.Index.WithDocumentID(app.ID.String()),
	)
	if err != nil {
		return fmt.Errorf("index application %s: %w", app.ID, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return fmt.Errorf("index application %s: %s: %s", app.ID, res.Status(), msg)
	}

	i.logger.Debug("application indexed", map[string]interface{}{
		"applicationId": app.ID.String(),
		"status":        string(app.Status),
	})
	return nil
}
