package router

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
)

func registerSwaggerRoutes(r chi.Router) {
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/swagger/", http.StatusMovedPermanently)
	})

	r.Get("/swagger/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprintf(w, swaggerHTML, "/swagger/openapi.json")
	})

	r.Get("/swagger/openapi.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(openAPI))
	})
}

const swaggerHTML = `<!doctype html>
<html>
<head>
  <meta charset="utf-8" />
  <title>Bank Ledger API Docs</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.onload = function() {
      window.ui = SwaggerUIBundle({
        url: "%s",
        dom_id: "#swagger-ui"
      });
    };
  </script>
</body>
</html>`

const openAPI = `{
  "openapi": "3.0.3",
  "info": {
    "title": "Bank Ledger API",
    "version": "1.0.0"
  },
  "security": [{"BasicAuth": []}],
  "paths": {
    "/customers": {
      "post": {
        "summary": "Create customer",
        "requestBody": {
          "required": true,
          "content": {
            "application/json": {
              "schema": {
                "type": "object",
                "required": ["firstName", "lastName", "dob", "phoneNumber", "idType", "idNumber", "transactionPin"],
                "properties": {
                  "firstName": {"type": "string"},
                  "middleName": {"type": "string"},
                  "lastName": {"type": "string"},
                  "dob": {"type": "string", "example": "1990-04-12"},
                  "phoneNumber": {"type": "string"},
                  "email": {"type": "string"},
                  "idType": {"type": "string", "enum": ["Passport", "DL"]},
                  "idNumber": {"type": "string"},
                  "transactionPin": {"type": "string", "example": "1234"}
                }
              }
            }
          }
        },
        "responses": {
          "201": {"description": "Customer created"},
          "400": {"description": "Validation error"}
        }
      }
    },
    "/customers/{customerID}": {
      "get": {
        "summary": "Get customer",
        "parameters": [{"name": "customerID", "in": "path", "required": true, "schema": {"type": "string"}}],
        "responses": {"200": {"description": "Customer"}, "404": {"description": "Customer not found"}}
      }
    },
    "/customers/{customerID}/accounts": {
      "get": {
        "summary": "List the customer's active accounts",
        "parameters": [{"name": "customerID", "in": "path", "required": true, "schema": {"type": "string"}}],
        "responses": {"200": {"description": "Accounts"}, "404": {"description": "Customer not found"}}
      }
    },
    "/customers/{customerID}/verify-pin": {
      "post": {
        "summary": "Verify transaction pin",
        "parameters": [{"name": "customerID", "in": "path", "required": true, "schema": {"type": "string"}}],
        "requestBody": {
          "required": true,
          "content": {"application/json": {"schema": {"type": "object", "required": ["pin"], "properties": {"pin": {"type": "string"}}}}}
        },
        "responses": {"200": {"description": "Pin verified"}, "403": {"description": "Invalid pin"}, "404": {"description": "Customer not found"}}
      }
    },
    "/accounts": {
      "post": {
        "summary": "Open account (pending approval)",
        "requestBody": {
          "required": true,
          "content": {
            "application/json": {
              "schema": {
                "type": "object",
                "required": ["customerId", "accountType"],
                "properties": {
                  "customerId": {"type": "string"},
                  "accountType": {"type": "string", "enum": ["CHECKING", "SAVINGS", "CREDIT", "CURRENCY"]},
                  "creditLimit": {"type": "string"},
                  "interestRate": {"type": "string"},
                  "annualInterestRate": {"type": "string"},
                  "currencyCode": {"type": "string"}
                }
              }
            }
          }
        },
        "responses": {"201": {"description": "Account opened"}, "400": {"description": "Validation error"}, "404": {"description": "Customer not found"}}
      }
    },
    "/accounts/{accountNumber}": {
      "get": {
        "summary": "Get account",
        "parameters": [{"name": "accountNumber", "in": "path", "required": true, "schema": {"type": "string"}}],
        "responses": {"200": {"description": "Account"}, "404": {"description": "Account not found"}}
      }
    },
    "/accounts/{accountNumber}/approve": {
      "post": {
        "summary": "Approve pending account",
        "parameters": [{"name": "accountNumber", "in": "path", "required": true, "schema": {"type": "string"}}],
        "responses": {"200": {"description": "Account active"}, "409": {"description": "Invalid state transition"}}
      }
    },
    "/accounts/{accountNumber}/reject": {
      "post": {
        "summary": "Reject pending account",
        "parameters": [{"name": "accountNumber", "in": "path", "required": true, "schema": {"type": "string"}}],
        "responses": {"200": {"description": "Account rejected"}, "409": {"description": "Invalid state transition"}}
      }
    },
    "/accounts/{accountNumber}/close": {
      "post": {
        "summary": "Close active account with zero balance",
        "parameters": [{"name": "accountNumber", "in": "path", "required": true, "schema": {"type": "string"}}],
        "responses": {"200": {"description": "Account closed"}, "409": {"description": "Invalid state transition"}}
      }
    },
    "/accounts/{accountNumber}/statement": {
      "get": {
        "summary": "Account statement with running balance",
        "parameters": [{"name": "accountNumber", "in": "path", "required": true, "schema": {"type": "string"}}],
        "responses": {"200": {"description": "Statement"}, "404": {"description": "Account not found"}}
      }
    },
    "/accounts/{accountNumber}/reconcile": {
      "get": {
        "summary": "Replay history against the stored balance",
        "parameters": [{"name": "accountNumber", "in": "path", "required": true, "schema": {"type": "string"}}],
        "responses": {"200": {"description": "Reconciliation result"}, "404": {"description": "Account not found"}}
      }
    },
    "/transactions": {
      "post": {
        "summary": "Post transaction",
        "requestBody": {
          "required": true,
          "content": {
            "application/json": {
              "schema": {
                "type": "object",
                "required": ["type", "amount", "transactionPin"],
                "properties": {
                  "type": {"type": "string", "enum": ["DEPOSIT", "WITHDRAWAL", "TRANSFER"]},
                  "description": {"type": "string"},
                  "amount": {"type": "string", "example": "250.00"},
                  "sourceAccountNumber": {"type": "string"},
                  "destinationAccountNumber": {"type": "string"},
                  "transactionPin": {"type": "string"}
                }
              }
            }
          }
        },
        "responses": {
          "201": {"description": "Transaction executed"},
          "400": {"description": "Invalid transaction"},
          "403": {"description": "Invalid pin"},
          "404": {"description": "Account not found"},
          "409": {"description": "Concurrent modification"},
          "422": {"description": "Insufficient funds or credit limit exceeded"}
        }
      }
    },
    "/jobs/{job}": {
      "post": {
        "summary": "Run batch job",
        "parameters": [{"name": "job", "in": "path", "required": true, "schema": {"type": "string", "enum": ["credit-interest", "savings-interest", "inactivity", "low-balance", "suspicious"]}}],
        "responses": {"200": {"description": "Job report"}, "404": {"description": "Unknown job"}}
      }
    },
    "/jobs/interest/{kind}/{accountNumber}": {
      "post": {
        "summary": "Apply interest to one account",
        "parameters": [
          {"name": "kind", "in": "path", "required": true, "schema": {"type": "string", "enum": ["credit", "savings"]}},
          {"name": "accountNumber", "in": "path", "required": true, "schema": {"type": "string"}}
        ],
        "responses": {"200": {"description": "Interest result"}, "400": {"description": "Wrong account type"}}
      }
    },
    "/health": {
      "get": {"summary": "Liveness", "security": [], "responses": {"200": {"description": "OK"}}}
    },
    "/metrics": {
      "get": {"summary": "Prometheus metrics", "security": [], "responses": {"200": {"description": "Metrics"}}}
    }
  },
  "components": {
    "securitySchemes": {
      "BasicAuth": {
        "type": "http",
        "scheme": "basic"
      }
    }
  }
}`
