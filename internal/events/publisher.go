// Package events publishes application status changes to SNS.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"loan-orchestrator/internal/common/aws"
	"loan-orchestrator/internal/common/logger"
	"loan-orchestrator/internal/models"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/google/uuid"
)

const StatusChanged = "application.status_changed"

type SNSPublisher struct {
	client   aws.SNSAPI
	topicARN string
	logger   logger.Logger
}

func NewSNSPublisher(client aws.SNSAPI, topicARN string, log logger.Logger) *SNSPublisher {
	return &SNSPublisher{
		client:   client,
		topicARN: topicARN,
		logger:   log.Named("events"),
	}
}

// ApplicationChanged publishes one event per history entry, in order. It
// stops at the first failed publish.
func (p *SNSPublisher) ApplicationChanged(ctx context.Context, app *models.Application, history []models.StatusHistory) error {
	for _, entry := range history {
		event := NewStatusEvent(app, entry)
		body, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("marshal status event: %w", err)
		}

		out, err := p.client.Publish(ctx, &sns.PublishInput{
			TopicArn: awssdk.String(p.topicARN),
			Message:  awssdk.String(string(body)),
			Subject:  awssdk.String(fmt.Sprintf("Application %s is %s", app.ApplicationNumber, entry.ToStatus)),
			MessageAttributes: map[string]types.MessageAttributeValue{
				"eventType": {DataType: awssdk.String("String"), StringValue: awssdk.String(StatusChanged)},
				"toStatus":  {DataType: awssdk.String("String"), StringValue: awssdk.String(string(entry.ToStatus))},
			},
		})
		if err != nil {
			return fmt.Errorf("publish status event for %s: %w", app.ID, err)
		}

		p.logger.Debug("status event published", map[string]interface{}{
			"applicationId": app.ID.String(),
			"toStatus":      string(entry.ToStatus),
			"messageId":     awssdk.ToString(out.MessageId),
		})
	}
	return nil
}

func NewStatusEvent(app *models.Application, entry models.StatusHistory) models.StatusEvent {
	return models.StatusEvent{
		EventID:           uuid.NewString(),
		Type:              StatusChanged,
		ApplicationID:     app.ID.String(),
		ApplicationNumber: app.ApplicationNumber,
		CustomerID:        app.CustomerID.String(),
		FromStatus:        entry.FromStatus,
		ToStatus:          entry.ToStatus,
		Reason:            entry.Reason,
		ChangedBy:         entry.ChangedBy,
		OccurredAt:        entry.ChangedAt.UTC().Format(time.RFC3339),
	}
}
