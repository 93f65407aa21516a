package gateway

import (
	"context"

	apphttp "loan-orchestrator/internal/common/http"
	"loan-orchestrator/internal/common/logger"
	"loan-orchestrator/internal/common/resilience"
)

type PaymentClient struct {
	svc service
}

func NewPaymentClient(client *apphttp.Client, exec *resilience.Executor, log logger.Logger) *PaymentClient {
	return &PaymentClient{svc: newService("payment-service", client, exec, log)}
}

func (c *PaymentClient) CreateSchedule(ctx context.Context, req CreateScheduleRequest) Result[PaymentSchedule] {
	return post[PaymentSchedule](ctx, c.svc, "create-schedule", "/api/payments/schedule", req)
}
