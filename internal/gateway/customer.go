package gateway

import (
	"context"
	"fmt"

	apphttp "loan-orchestrator/internal/common/http"
	"loan-orchestrator/internal/common/logger"
	"loan-orchestrator/internal/common/resilience"

	"github.com/google/uuid"
)

type CustomerClient struct {
	svc service
}

func NewCustomerClient(client *apphttp.Client, exec *resilience.Executor, log logger.Logger) *CustomerClient {
	return &CustomerClient{svc: newService("customer-service", client, exec, log)}
}

func (c *CustomerClient) GetProfile(ctx context.Context, customerID uuid.UUID) Result[CustomerProfile] {
	return get[CustomerProfile](ctx, c.svc, "get-profile", fmt.Sprintf("/api/customers/%s", customerID))
}

func (c *CustomerClient) GetCredit(ctx context.Context, customerID uuid.UUID) Result[CreditReport] {
	return get[CreditReport](ctx, c.svc, "get-credit", fmt.Sprintf("/api/customers/%s/credit", customerID))
}

func (c *CustomerClient) ListEmployments(ctx context.Context, customerID uuid.UUID) Result[[]Employment] {
	return get[[]Employment](ctx, c.svc, "list-employments", fmt.Sprintf("/api/customers/%s/employments", customerID))
}

func (c *CustomerClient) Exists(ctx context.Context, customerID uuid.UUID) Result[bool] {
	return exists(ctx, c.svc, "exists", fmt.Sprintf("/api/customers/%s", customerID))
}
