package models

import (
	"net/mail"
	"strings"
	"time"

	"github.com/api-sage/bank-ledger/src/internal/domain"
)

type CreateCustomerRequest struct {
	FirstName      string `json:"firstName"`
	MiddleName     string `json:"middleName,omitempty"`
	LastName       string `json:"lastName"`
	DOB            string `json:"dob"`
	Email          string `json:"email"`
	PhoneNumber    string `json:"phoneNumber"`
	IDType         string `json:"idType"`
	IDNumber       string `json:"idNumber"`
	TransactionPin string `json:"transactionPin"`
}

func (r CreateCustomerRequest) Validate() error {
	var errs []string

	if strings.TrimSpace(r.FirstName) == "" {
		errs = append(errs, "firstName is required")
	}
	if strings.TrimSpace(r.LastName) == "" {
		errs = append(errs, "lastName is required")
	}
	if strings.TrimSpace(r.DOB) == "" {
		errs = append(errs, "dob is required")
	} else if _, err := time.Parse("2006-01-02", strings.TrimSpace(r.DOB)); err != nil {
		errs = append(errs, "dob must be in YYYY-MM-DD format")
	}
	if email := strings.TrimSpace(r.Email); email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			errs = append(errs, "email is not valid")
		}
	}
	if strings.TrimSpace(r.PhoneNumber) == "" {
		errs = append(errs, "phoneNumber is required")
	}
	if _, err := domain.ParseIDType(r.IDType); err != nil {
		errs = append(errs, "idType must be Passport or DL")
	}
	if strings.TrimSpace(r.IDNumber) == "" {
		errs = append(errs, "idNumber is required")
	}
	pin := strings.TrimSpace(r.TransactionPin)
	if len(pin) != 4 || !digitsOnly(pin) {
		errs = append(errs, "transactionPin must be exactly 4 digits")
	}

	return validationError(errs)
}

type CreateCustomerResponse struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type GetCustomerResponse struct {
	ID          string  `json:"id"`
	FirstName   string  `json:"firstName"`
	MiddleName  *string `json:"middleName,omitempty"`
	LastName    string  `json:"lastName"`
	DOB         string  `json:"dob"`
	Email       string  `json:"email,omitempty"`
	PhoneNumber string  `json:"phoneNumber"`
	IDType      string  `json:"idType"`
	IDNumber    string  `json:"idNumber"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt"`
}

type VerifyPinRequest struct {
	Pin string `json:"pin"`
}

type VerifyPinResponse struct {
	CustomerID string `json:"customerId"`
	IsValidPin bool   `json:"isValidPin"`
}
