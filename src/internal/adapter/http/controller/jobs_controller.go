package controller

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/api-sage/bank-ledger/src/internal/adapter/http/models"
	"github.com/api-sage/bank-ledger/src/internal/commons"
	"github.com/api-sage/bank-ledger/src/internal/domain"
	"github.com/api-sage/bank-ledger/src/internal/usecase/service_interfaces"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// JobsController lets an external scheduler trigger the batch jobs.
type JobsController struct {
	sweeps   service_interfaces.SweepService
	interest service_interfaces.InterestService
}

func NewJobsController(sweeps service_interfaces.SweepService, interest service_interfaces.InterestService) *JobsController {
	return &JobsController{sweeps: sweeps, interest: interest}
}

func (c *JobsController) RegisterRoutes(r chi.Router) {
	r.Route("/jobs", func(r chi.Router) {
		r.Post("/{job}", c.runJob)
		r.Post("/interest/{kind}/{accountNumber}", c.applyInterest)
	})
}

func (c *JobsController) jobs() map[string]func(context.Context) (domain.SweepReport, error) {
	return map[string]func(context.Context) (domain.SweepReport, error){
		"credit-interest":  c.sweeps.RunCreditInterestSweep,
		"savings-interest": c.sweeps.RunSavingsInterestSweep,
		"inactivity":       c.sweeps.RunInactivityClosureSweep,
		"low-balance":      c.sweeps.RunLowBalanceSweep,
		"suspicious":       c.sweeps.RunSuspiciousActivityScan,
	}
}

func (c *JobsController) runJob(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	name := strings.ToLower(chi.URLParam(r, "job"))
	run, ok := c.jobs()[name]
	if !ok {
		response := commons.ErrorResponse[models.SweepResponse]("Job not found", fmt.Sprintf("unknown job %q", name))
		writeJSON(w, http.StatusNotFound, response)
		logResponse(r, http.StatusNotFound, response, start)
		return
	}

	report, err := run(r.Context())
	if err != nil {
		response := commons.ErrorResponse[models.SweepResponse]("job failed", err.Error())
		respond(w, r, http.StatusOK, response, err, start)
		return
	}

	respond(w, r, http.StatusOK, commons.SuccessResponse("job completed", models.NewSweepResponse(report)), nil, start)
}

func (c *JobsController) applyInterest(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	accountNumber := chi.URLParam(r, "accountNumber")
	kind := strings.ToLower(chi.URLParam(r, "kind"))

	var apply func(context.Context, string) (decimal.Decimal, error)
	switch kind {
	case "credit":
		apply = c.interest.ApplyMonthlyCreditInterest
	case "savings":
		apply = c.interest.ApplyAnnualSavingsInterest
	default:
		response := commons.ErrorResponse[models.InterestResponse]("validation failed", "kind must be credit or savings")
		writeJSON(w, http.StatusBadRequest, response)
		logResponse(r, http.StatusBadRequest, response, start)
		return
	}

	amount, err := apply(r.Context(), accountNumber)
	if err != nil {
		response := commons.ErrorResponse[models.InterestResponse]("interest not applied", err.Error())
		respond(w, r, http.StatusOK, response, err, start)
		return
	}

	respond(w, r, http.StatusOK, commons.SuccessResponse("interest processed", models.NewInterestResponse(accountNumber, kind, amount)), nil, start)
}
