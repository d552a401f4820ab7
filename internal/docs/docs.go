// Package docs registers the OpenAPI description served under /swagger.
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
        "/state": {"get": {"tags": ["state"], "summary": "Get state", "produces": ["application/json"], "responses": {"200": {"description": "Application state"}}}},
        "/dashboard": {"get": {"tags": ["state"], "summary": "Get dashboard", "produces": ["application/json"], "responses": {"200": {"description": "Dashboard"}, "400": {"description": "Invalid input"}}}},
        "/reset": {"post": {"tags": ["state"], "summary": "Reset", "produces": ["application/json"], "responses": {"200": {"description": "Fresh state"}}}},
        "/income": {"put": {"tags": ["ledger"], "summary": "Set income", "consumes": ["application/json"], "produces": ["application/json"], "responses": {"200": {"description": "Updated state"}, "400": {"description": "Invalid input"}}}},
        "/settings": {"put": {"tags": ["ledger"], "summary": "Update settings", "consumes": ["application/json"], "produces": ["application/json"], "responses": {"200": {"description": "Updated settings"}, "400": {"description": "Invalid input"}}}},
        "/currencies": {"get": {"tags": ["ledger"], "summary": "List currencies", "produces": ["application/json"], "responses": {"200": {"description": "Currencies"}}}},
        "/buckets": {"post": {"tags": ["buckets"], "summary": "Create a bucket", "consumes": ["application/json"], "produces": ["application/json"], "responses": {"201": {"description": "Bucket created"}, "400": {"description": "Invalid input"}}}},
        "/buckets/{id}": {"delete": {"tags": ["buckets"], "summary": "Delete a bucket", "produces": ["application/json"], "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "Bucket deleted"}, "404": {"description": "Bucket not found"}}}},
        "/buckets/{id}/allocation": {"put": {"tags": ["buckets"], "summary": "Set bucket allocation", "consumes": ["application/json"], "produces": ["application/json"], "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "Bucket updated"}, "404": {"description": "Bucket not found"}}}},
        "/transactions": {
            "get": {"tags": ["transactions"], "summary": "List transactions", "produces": ["application/json"], "parameters": [{"type": "string", "name": "search", "in": "query"}, {"type": "string", "name": "bucket", "in": "query"}, {"type": "number", "name": "min_amount", "in": "query"}, {"type": "number", "name": "max_amount", "in": "query"}, {"type": "string", "enum": ["date", "amount"], "name": "sort", "in": "query"}, {"type": "integer", "name": "page", "in": "query"}, {"type": "integer", "name": "page_size", "in": "query"}], "responses": {"200": {"description": "Paginated transactions"}}},
            "post": {"tags": ["transactions"], "summary": "Record a transaction", "consumes": ["application/json"], "produces": ["application/json"], "responses": {"201": {"description": "Transaction created"}, "400": {"description": "Invalid input"}}}
        },
        "/transactions/{id}": {
            "put": {"tags": ["transactions"], "summary": "Update a transaction", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "Transaction updated"}, "404": {"description": "Transaction not found"}}},
            "delete": {"tags": ["transactions"], "summary": "Delete a transaction", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "Transaction deleted"}, "404": {"description": "Transaction not found"}}}
        },
        "/onboarding/start": {"post": {"tags": ["onboarding"], "summary": "Start onboarding", "responses": {"200": {"description": "New phase"}, "409": {"description": "Onboarding already started"}}}},
        "/onboarding/profile": {"post": {"tags": ["onboarding"], "summary": "Submit profile", "consumes": ["application/json"], "responses": {"200": {"description": "Plans or the failure to get them"}, "409": {"description": "Not collecting a profile"}}}},
        "/profile": {"put": {"tags": ["onboarding"], "summary": "Update profile", "consumes": ["application/json"], "responses": {"200": {"description": "Profile"}}}},
        "/plans": {"get": {"tags": ["plans"], "summary": "Get plans", "responses": {"200": {"description": "Plans"}}}},
        "/plans/generate": {"post": {"tags": ["plans"], "summary": "Generate plans", "responses": {"200": {"description": "Plans or the failure to get them"}, "409": {"description": "Profile not submitted"}}}},
        "/plans/retry": {"post": {"tags": ["plans"], "summary": "Retry plans", "responses": {"200": {"description": "Plans or the failure to get them"}, "409": {"description": "Nothing to retry"}}}},
        "/plans/skip": {"post": {"tags": ["plans"], "summary": "Skip plans", "responses": {"200": {"description": "Buckets"}, "409": {"description": "Plans are still being generated"}}}},
        "/plans/{id}/apply": {"post": {"tags": ["plans"], "summary": "Apply a plan", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "Buckets"}, "404": {"description": "Plan not found"}, "422": {"description": "Plan is malformed"}}}},
        "/suggestions": {
            "get": {"tags": ["advisor"], "summary": "Get suggestions", "responses": {"200": {"description": "Suggestions"}}},
            "delete": {"tags": ["advisor"], "summary": "Dismiss suggestions", "responses": {"200": {"description": "Suggestions dismissed"}}}
        },
        "/suggestions/{index}/apply": {"post": {"tags": ["advisor"], "summary": "Apply a suggestion", "parameters": [{"type": "integer", "name": "index", "in": "path", "required": true}], "responses": {"200": {"description": "Whether the budget changed"}, "404": {"description": "Suggestion not found"}}}},
        "/advice": {"get": {"tags": ["advisor"], "summary": "Get advice", "responses": {"200": {"description": "Advice"}}}},
        "/advice/refresh": {"post": {"tags": ["advisor"], "summary": "Refresh advice", "responses": {"200": {"description": "Advice"}, "409": {"description": "Budget not active yet"}}}},
        "/goal-image": {"post": {"tags": ["advisor"], "summary": "Generate goal image", "consumes": ["application/json"], "responses": {"200": {"description": "Image data URL"}, "400": {"description": "Invalid input"}}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Rafiqe API",
	Description:      "Rafiqe is a personal budgeting assistant: income split into buckets, expense tracking and advisory plans.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
