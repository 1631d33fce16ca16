// Package docs registers the OpenAPI document served under /swagger.
// Regenerate the paths with `swag init -g cmd/compta_backend/main.go -o cmd/docs`.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/me": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["users"], "summary": "Get the current user", "responses": {"200": {"description": "OK"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["users"], "summary": "Delete the current user", "responses": {"204": {"description": "No Content"}}}
        },
        "/roles": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["roles"], "summary": "List system roles", "responses": {"200": {"description": "OK"}}}
        },
        "/entreprises": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["entreprises"], "summary": "Create an entreprise", "responses": {"201": {"description": "Created"}}}
        },
        "/tenants": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["tenants"], "summary": "List the caller's tenants", "responses": {"200": {"description": "OK"}}}
        },
        "/tenants/current": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["tenants"], "summary": "Resolve the current tenant", "responses": {"200": {"description": "OK"}}}
        },
        "/tenants/switch": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["tenants"], "summary": "Switch the current tenant", "responses": {"200": {"description": "OK"}}}
        },
        "/customers": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["customers"], "summary": "List customers of the current tenant", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["customers"], "summary": "Create a customer", "responses": {"201": {"description": "Created"}}}
        },
        "/invoices": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["invoices"], "summary": "List invoices", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["invoices"], "summary": "Create a draft invoice", "responses": {"201": {"description": "Created"}}}
        },
        "/invoices/chain/verify": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["invoices"], "summary": "Verify the invoice integrity chain of the current tenant", "responses": {"200": {"description": "OK"}, "409": {"description": "Chain mismatch"}}}
        },
        "/bank-transactions": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["bank"], "summary": "List bank transactions", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["bank"], "summary": "Import a bank transaction", "responses": {"201": {"description": "Created"}}}
        },
        "/reconciliations": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["bank"], "summary": "Match an invoice with a bank transaction", "responses": {"201": {"description": "Created"}}}
        },
        "/audit-logs": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["audit"], "summary": "List the audit trail of the current tenant", "responses": {"200": {"description": "OK"}}}
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and JWT token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Compta SaaS Backend API",
	Description:      "Multi-tenant invoicing and bank reconciliation backend.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
