// Package docs registers the OpenAPI description served under /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/projects": {
            "get": {"tags": ["projects"], "summary": "List projects", "produces": ["application/json"],
                "responses": {"200": {"description": "List of projects", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.Project"}}}}},
            "post": {"tags": ["projects"], "summary": "Create a project", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"name": "project", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.ProjectRequest"}}],
                "responses": {"201": {"description": "Project created", "schema": {"$ref": "#/definitions/models.Project"}}, "400": {"description": "Invalid project data"}}}
        },
        "/projects/search": {
            "get": {"tags": ["projects"], "summary": "Search projects", "produces": ["application/json"],
                "parameters": [{"name": "q", "in": "query", "required": true, "type": "string"}],
                "responses": {"200": {"description": "Matching projects", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.Project"}}}, "400": {"description": "Missing query"}}}
        },
        "/projects/ideas": {
            "post": {"tags": ["projects"], "summary": "Submit a business idea", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.IdeaRequest"}}],
                "responses": {"201": {"description": "Analysed project", "schema": {"$ref": "#/definitions/models.Project"}}, "400": {"description": "Empty idea"}}}
        },
        "/projects/{id}": {
            "get": {"tags": ["projects"], "summary": "Get a project by ID", "produces": ["application/json"],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}],
                "responses": {"200": {"description": "Project found", "schema": {"$ref": "#/definitions/models.Project"}}, "404": {"description": "Project not found"}}},
            "put": {"tags": ["projects"], "summary": "Update a project", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}, {"name": "project", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.ProjectRequest"}}],
                "responses": {"200": {"description": "Updated project", "schema": {"$ref": "#/definitions/models.Project"}}, "404": {"description": "Project not found"}}},
            "delete": {"tags": ["projects"], "summary": "Delete a project", "produces": ["application/json"],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}],
                "responses": {"200": {"description": "Project deleted"}}}
        },
        "/projects/{id}/status": {
            "patch": {"tags": ["projects"], "summary": "Change project status", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}, {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.StatusRequest"}}],
                "responses": {"200": {"description": "Updated project", "schema": {"$ref": "#/definitions/models.Project"}}, "409": {"description": "Transition not allowed"}}}
        },
        "/projects/{id}/view": {
            "post": {"tags": ["projects"], "summary": "Record a project view", "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}],
                "responses": {"200": {"description": "Updated project", "schema": {"$ref": "#/definitions/models.Project"}}}}
        },
        "/projects/{id}/like": {
            "post": {"tags": ["projects"], "summary": "Like a project", "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}],
                "responses": {"200": {"description": "Updated project", "schema": {"$ref": "#/definitions/models.Project"}}}}
        },
        "/projects/{id}/analyze": {
            "post": {"tags": ["analysis"], "summary": "Analyse a project", "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}],
                "responses": {"200": {"description": "Analysed project", "schema": {"$ref": "#/definitions/models.Project"}}, "404": {"description": "Project not found"}}}
        },
        "/projects/{id}/export": {
            "post": {"tags": ["analysis"], "summary": "Export a business plan", "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}],
                "responses": {"200": {"description": "Export created"}, "409": {"description": "Project not analysed"}, "503": {"description": "Export not configured"}}}
        },
        "/storage/status": {
            "get": {"tags": ["storage"], "summary": "Storage status", "responses": {"200": {"description": "Storage status"}}}
        },
        "/admin/sync": {
            "post": {"tags": ["storage"], "summary": "Sync local cache to the durable store", "responses": {"200": {"description": "Sync report"}, "503": {"description": "Durable store unavailable"}}}
        },
        "/health": {
            "get": {"tags": ["storage"], "summary": "Health check", "responses": {"200": {"description": "Service is up"}}}
        }
    },
    "definitions": {
        "handlers.IdeaRequest": {"type": "object", "properties": {"idea": {"type": "string"}, "user_id": {"type": "string"}}},
        "handlers.StatusRequest": {"type": "object", "properties": {"status": {"type": "string", "enum": ["funded", "completed", "cancelled"]}}},
        "handlers.ProjectRequest": {"type": "object", "properties": {
            "user_id": {"type": "string"}, "title": {"type": "string"}, "description": {"type": "string"},
            "business_idea": {"type": "string"}, "industry": {"type": "string"}, "target_audience": {"type": "string"},
            "budget": {"type": "string"}, "monetization": {"type": "string"},
            "stage": {"type": "string", "enum": ["idea", "mvp", "growth", "scaling"]},
            "tags": {"type": "array", "items": {"type": "string"}}, "investment_enabled": {"type": "boolean"},
            "funding_goal_ton": {"type": "number"}, "token_symbol": {"type": "string"}, "token_price_ton": {"type": "number"},
            "demo_url": {"type": "string"}, "website_url": {"type": "string"}}},
        "models.Project": {"type": "object", "properties": {
            "id": {"type": "integer"}, "user_id": {"type": "string"}, "title": {"type": "string"},
            "description": {"type": "string"}, "business_idea": {"type": "string"},
            "stage": {"type": "string"}, "status": {"type": "string"},
            "ai_analysis": {"type": "object"}, "market_research": {"type": "object"},
            "financial_projections": {"type": "object"}, "competitive_analysis": {"type": "object"},
            "tokenomics": {"type": "object"}, "pitch_deck_data": {"type": "object"}, "mvp_plan": {"type": "object"},
            "ai_score": {"type": "number"}, "pitch_deck_url": {"type": "string"},
            "view_count": {"type": "integer"}, "like_count": {"type": "integer"}, "investment_count": {"type": "integer"},
            "tags": {"type": "array", "items": {"type": "string"}},
            "created_at": {"type": "string"}, "updated_at": {"type": "string"}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "Planner API",
	Description:      "Business plan analysis backend of the Telegram mini app.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
