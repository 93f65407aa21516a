package gateway

import (
	"context"
	"fmt"

	apphttp "loan-orchestrator/internal/common/http"
	"loan-orchestrator/internal/common/logger"
	"loan-orchestrator/internal/common/resilience"

	"github.com/google/uuid"
)

type PropertyClient struct {
	svc service
}

func NewPropertyClient(client *apphttp.Client, exec *resilience.Executor, log logger.Logger) *PropertyClient {
	return &PropertyClient{svc: newService("property-service", client, exec, log)}
}

func (c *PropertyClient) GetProperty(ctx context.Context, propertyID uuid.UUID) Result[Property] {
	return get[Property](ctx, c.svc, "get-property", fmt.Sprintf("/api/properties/%s", propertyID))
}

func (c *PropertyClient) GetAppraisal(ctx context.Context, propertyID uuid.UUID) Result[Appraisal] {
	return get[Appraisal](ctx, c.svc, "get-appraisal", fmt.Sprintf("/api/properties/%s/appraisal", propertyID))
}

func (c *PropertyClient) GetTitle(ctx context.Context, propertyID uuid.UUID) Result[TitleSearch] {
	return get[TitleSearch](ctx, c.svc, "get-title", fmt.Sprintf("/api/properties/%s/title", propertyID))
}

func (c *PropertyClient) Exists(ctx context.Context, propertyID uuid.UUID) Result[bool] {
	return exists(ctx, c.svc, "exists", fmt.Sprintf("/api/properties/%s", propertyID))
}
