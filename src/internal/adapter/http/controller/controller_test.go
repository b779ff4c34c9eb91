package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/api-sage/bank-ledger/src/internal/adapter/http/models"
	"github.com/api-sage/bank-ledger/src/internal/commons"
	"github.com/api-sage/bank-ledger/src/internal/domain"
	"github.com/api-sage/bank-ledger/src/internal/logger"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.SetOutput(io.Discard, "error")
	os.Exit(m.Run())
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "invalid transaction", err: domain.ErrInvalidTransaction, want: http.StatusBadRequest},
		{name: "inactive account", err: domain.ErrAccountNotActive, want: http.StatusBadRequest},
		{name: "account not found", err: domain.ErrAccountNotFound, want: http.StatusNotFound},
		{name: "customer not found", err: domain.ErrCustomerNotFound, want: http.StatusNotFound},
		{name: "insufficient funds", err: domain.ErrInsufficientFunds, want: http.StatusUnprocessableEntity},
		{name: "credit limit", err: fmt.Errorf("withdraw: %w", domain.ErrCreditLimitExceeded), want: http.StatusUnprocessableEntity},
		{name: "conflict", err: domain.ErrConcurrentModification, want: http.StatusConflict},
		{name: "state transition", err: domain.ErrInvalidStateTransition, want: http.StatusConflict},
		{name: "duplicate", err: domain.ErrDuplicateRecord, want: http.StatusConflict},
		{name: "invalid pin", err: domain.ErrInvalidPin, want: http.StatusForbidden},
		{name: "persistence", err: fmt.Errorf("%w: commit", domain.ErrPersistence), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}

type stubTransactionService struct {
	got  models.PostTransactionRequest
	resp commons.Response[models.PostTransactionResponse]
	err  error
}

func (s *stubTransactionService) ExecuteTransaction(context.Context, domain.Transaction) error {
	return nil
}

func (s *stubTransactionService) Execute(context.Context, domain.Transaction) (domain.ExecutionResult, error) {
	return domain.ExecutionResult{}, nil
}

func (s *stubTransactionService) PostTransaction(_ context.Context, req models.PostTransactionRequest) (commons.Response[models.PostTransactionResponse], error) {
	s.got = req
	return s.resp, s.err
}

func serve(registrar interface{ RegisterRoutes(chi.Router) }, method, path, body string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	registrar.RegisterRoutes(r)

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestTransactionController_PostTransaction(t *testing.T) {
	stub := &stubTransactionService{
		resp: commons.SuccessResponse("transaction successful", models.PostTransactionResponse{}),
	}

	rr := serve(NewTransactionController(stub), http.MethodPost, "/transactions",
		`{"type":"WITHDRAWAL","amount":"25.50","sourceAccountNumber":"1234567890","transactionPin":"1234"}`)

	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.True(t, stub.got.Amount.Equal(decimal.RequireFromString("25.50")))
	assert.Equal(t, "1234567890", stub.got.SourceAccountNumber)
}

func TestTransactionController_MapsServiceErrors(t *testing.T) {
	stub := &stubTransactionService{
		resp: commons.ErrorResponse[models.PostTransactionResponse]("insufficient funds"),
		err:  domain.ErrInsufficientFunds,
	}

	rr := serve(NewTransactionController(stub), http.MethodPost, "/transactions",
		`{"type":"WITHDRAWAL","amount":"25.50","sourceAccountNumber":"1234567890","transactionPin":"1234"}`)

	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	var body commons.Response[models.PostTransactionResponse]
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "insufficient funds", body.Message)
}

func TestTransactionController_RejectsBadBodies(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "malformed json", body: `{"type":`},
		{name: "missing pin", body: `{"type":"DEPOSIT","amount":"10","destinationAccountNumber":"1234567890"}`},
		{name: "zero amount", body: `{"type":"DEPOSIT","amount":"0","destinationAccountNumber":"1234567890","transactionPin":"1234"}`},
		{name: "short account", body: `{"type":"DEPOSIT","amount":"10","destinationAccountNumber":"12345","transactionPin":"1234"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubTransactionService{}
			rr := serve(NewTransactionController(stub), http.MethodPost, "/transactions", tt.body)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Empty(t, stub.got.Type)
		})
	}
}

type stubSweepService struct {
	calls []string
	err   error
}

func (s *stubSweepService) report(job string) (domain.SweepReport, error) {
	s.calls = append(s.calls, job)
	return domain.SweepReport{Job: job, Scanned: 3, Affected: 1}, s.err
}

func (s *stubSweepService) RunInactivityClosureSweep(context.Context) (domain.SweepReport, error) {
	return s.report("inactivity-closure")
}

func (s *stubSweepService) RunLowBalanceSweep(context.Context) (domain.SweepReport, error) {
	return s.report("low-balance")
}

func (s *stubSweepService) RunSuspiciousActivityScan(context.Context) (domain.SweepReport, error) {
	return s.report("suspicious-activity")
}

func (s *stubSweepService) RunCreditInterestSweep(context.Context) (domain.SweepReport, error) {
	return s.report("credit-interest")
}

func (s *stubSweepService) RunSavingsInterestSweep(context.Context) (domain.SweepReport, error) {
	return s.report("savings-interest")
}

type stubInterestService struct {
	amount decimal.Decimal
	err    error
}

func (s stubInterestService) ApplyMonthlyCreditInterest(context.Context, string) (decimal.Decimal, error) {
	return s.amount, s.err
}

func (s stubInterestService) ApplyAnnualSavingsInterest(context.Context, string) (decimal.Decimal, error) {
	return s.amount, s.err
}

func TestJobsController_RunsNamedJob(t *testing.T) {
	sweeps := &stubSweepService{}
	rr := serve(NewJobsController(sweeps, stubInterestService{}), http.MethodPost, "/jobs/suspicious", "")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []string{"suspicious-activity"}, sweeps.calls)

	var body commons.Response[models.SweepResponse]
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.NotNil(t, body.Data)
	assert.Equal(t, 3, body.Data.Scanned)
	assert.Equal(t, 1, body.Data.Affected)
}

func TestJobsController_SweepFailure(t *testing.T) {
	sweeps := &stubSweepService{err: fmt.Errorf("%w: load accounts", domain.ErrPersistence)}
	rr := serve(NewJobsController(sweeps, stubInterestService{}), http.MethodPost, "/jobs/low-balance", "")

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestJobsController_ApplyInterest(t *testing.T) {
	interest := stubInterestService{amount: decimal.RequireFromString("12.34")}
	rr := serve(NewJobsController(&stubSweepService{}, interest), http.MethodPost, "/jobs/interest/credit/1234567890", "")

	require.Equal(t, http.StatusOK, rr.Code)
	var body commons.Response[models.InterestResponse]
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.NotNil(t, body.Data)
	assert.True(t, body.Data.Applied)
	assert.Equal(t, "credit", body.Data.Kind)
}

func TestJobsController_InterestWrongAccountType(t *testing.T) {
	interest := stubInterestService{err: fmt.Errorf("%w: savings interest does not apply", domain.ErrInvalidArgument)}
	rr := serve(NewJobsController(&stubSweepService{}, interest), http.MethodPost, "/jobs/interest/savings/1234567890", "")

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
