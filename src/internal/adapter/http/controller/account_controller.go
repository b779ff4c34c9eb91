package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/api-sage/bank-ledger/src/internal/adapter/http/models"
	"github.com/api-sage/bank-ledger/src/internal/commons"
	"github.com/api-sage/bank-ledger/src/internal/usecase/service_interfaces"
	"github.com/go-chi/chi/v5"
)

type AccountController struct {
	service service_interfaces.AccountService
}

func NewAccountController(service service_interfaces.AccountService) *AccountController {
	return &AccountController{service: service}
}

func (c *AccountController) RegisterRoutes(r chi.Router) {
	r.Route("/accounts", func(r chi.Router) {
		r.Post("/", c.openAccount)
		r.Get("/{accountNumber}", c.getAccount)
		r.Post("/{accountNumber}/approve", c.lifecycle(c.service.ApproveAccount))
		r.Post("/{accountNumber}/reject", c.lifecycle(c.service.RejectAccount))
		r.Post("/{accountNumber}/close", c.lifecycle(c.service.CloseAccount))
		r.Get("/{accountNumber}/statement", c.getStatement)
		r.Get("/{accountNumber}/reconcile", c.reconcile)
	})
}

func (c *AccountController) openAccount(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	req, ok := decodeBody[models.OpenAccountRequest, models.AccountResponse](w, r, start)
	if !ok {
		return
	}

	if err := req.Validate(); err != nil {
		logError(r, err, nil)
		response := commons.ErrorResponse[models.AccountResponse]("validation failed", err.Error())
		writeJSON(w, http.StatusBadRequest, response)
		logResponse(r, http.StatusBadRequest, response, start)
		return
	}

	response, err := c.service.OpenAccount(r.Context(), req)
	respond(w, r, http.StatusCreated, response, err, start)
}

func (c *AccountController) getAccount(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	response, err := c.service.GetAccount(r.Context(), chi.URLParam(r, "accountNumber"))
	respond(w, r, http.StatusOK, response, err, start)
}

type accountAction func(ctx context.Context, accountNumber string) (commons.Response[models.AccountActionResponse], error)

func (c *AccountController) lifecycle(action accountAction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		logRequest(r, nil)

		response, err := action(r.Context(), chi.URLParam(r, "accountNumber"))
		respond(w, r, http.StatusOK, response, err, start)
	}
}

func (c *AccountController) getStatement(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	response, err := c.service.GetStatement(r.Context(), chi.URLParam(r, "accountNumber"))
	respond(w, r, http.StatusOK, response, err, start)
}

func (c *AccountController) reconcile(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	response, err := c.service.ReconcileAccount(r.Context(), chi.URLParam(r, "accountNumber"))
	respond(w, r, http.StatusOK, response, err, start)
}
