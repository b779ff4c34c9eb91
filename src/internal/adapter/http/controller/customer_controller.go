package controller

import (
	"net/http"
	"time"

	"github.com/api-sage/bank-ledger/src/internal/adapter/http/models"
	"github.com/api-sage/bank-ledger/src/internal/commons"
	"github.com/api-sage/bank-ledger/src/internal/usecase/service_interfaces"
	"github.com/go-chi/chi/v5"
)

type CustomerController struct {
	customers service_interfaces.CustomerService
	accounts  service_interfaces.AccountService
}

func NewCustomerController(customers service_interfaces.CustomerService, accounts service_interfaces.AccountService) *CustomerController {
	return &CustomerController{customers: customers, accounts: accounts}
}

func (c *CustomerController) RegisterRoutes(r chi.Router) {
	r.Route("/customers", func(r chi.Router) {
		r.Post("/", c.createCustomer)
		r.Get("/{customerID}", c.getCustomer)
		r.Get("/{customerID}/accounts", c.listAccounts)
		r.Post("/{customerID}/verify-pin", c.verifyPin)
	})
}

func (c *CustomerController) createCustomer(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	req, ok := decodeBody[models.CreateCustomerRequest, models.CreateCustomerResponse](w, r, start)
	if !ok {
		return
	}

	if err := req.Validate(); err != nil {
		logError(r, err, nil)
		response := commons.ErrorResponse[models.CreateCustomerResponse]("validation failed", err.Error())
		writeJSON(w, http.StatusBadRequest, response)
		logResponse(r, http.StatusBadRequest, response, start)
		return
	}

	response, err := c.customers.CreateCustomer(r.Context(), req)
	respond(w, r, http.StatusCreated, response, err, start)
}

func (c *CustomerController) getCustomer(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	response, err := c.customers.GetCustomer(r.Context(), chi.URLParam(r, "customerID"))
	respond(w, r, http.StatusOK, response, err, start)
}

func (c *CustomerController) listAccounts(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	response, err := c.accounts.ListCustomerAccounts(r.Context(), chi.URLParam(r, "customerID"))
	respond(w, r, http.StatusOK, response, err, start)
}

func (c *CustomerController) verifyPin(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	req, ok := decodeBody[models.VerifyPinRequest, models.VerifyPinResponse](w, r, start)
	if !ok {
		return
	}

	response, err := c.customers.VerifyTransactionPin(r.Context(), chi.URLParam(r, "customerID"), req.Pin)
	respond(w, r, http.StatusOK, response, err, start)
}
