package domain

import (
	"fmt"
	"strings"
	"time"
)

type IDType string

const (
	IDTypePassport IDType = "Passport"
	IDTypeDL       IDType = "DL"
)

func ParseIDType(raw string) (IDType, error) {
	switch t := IDType(strings.TrimSpace(raw)); t {
	case IDTypePassport, IDTypeDL:
		return t, nil
	default:
		return "", fmt.Errorf("%w: idType must be one of Passport, DL", ErrInvalidArgument)
	}
}

// Customer owns accounts. Accounts reference a customer by ID; a customer holds no account list.
type Customer struct {
	ID                 string
	FirstName          string
	MiddleName         *string
	LastName           string
	DOB                time.Time
	Email              string
	PhoneNumber        string
	IDType             IDType
	IDNumber           string
	TransactionPinHash string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (c Customer) FullName() string {
	parts := []string{c.FirstName}
	if c.MiddleName != nil && strings.TrimSpace(*c.MiddleName) != "" {
		parts = append(parts, strings.TrimSpace(*c.MiddleName))
	}
	parts = append(parts, c.LastName)
	return strings.Join(parts, " ")
}
