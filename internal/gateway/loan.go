package gateway

import (
	"context"
	"fmt"
	"time"

	apphttp "loan-orchestrator/internal/common/http"
	"loan-orchestrator/internal/common/logger"
	"loan-orchestrator/internal/common/resilience"

	"github.com/google/uuid"
)

type LoanClient struct {
	svc service
}

func NewLoanClient(client *apphttp.Client, exec *resilience.Executor, log logger.Logger) *LoanClient {
	return &LoanClient{svc: newService("loan-service", client, exec, log)}
}

func (c *LoanClient) GetLoan(ctx context.Context, loanID uuid.UUID) Result[Loan] {
	return get[Loan](ctx, c.svc, "get-loan", fmt.Sprintf("/api/loans/%s?enrich=false", loanID))
}

func (c *LoanClient) CreateLoan(ctx context.Context, req CreateLoanRequest) Result[Loan] {
	return post[Loan](ctx, c.svc, "create-loan", "/api/loans", req)
}

// FundLoan reports whether the loan service accepted the funding.
func (c *LoanClient) FundLoan(ctx context.Context, loanID uuid.UUID, fundingDate, firstPaymentDate time.Time) bool {
	err := c.svc.run(ctx, "fund-loan", func(ctx context.Context) error {
		return c.svc.client.PostData(ctx, fmt.Sprintf("/api/loans/%s/fund", loanID), FundLoanRequest{
			FundingDate:      fundingDate,
			FirstPaymentDate: firstPaymentDate,
		}, nil)
	})
	return err == nil
}
