// Package docs registers the swagger document served at /swagger.
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
        "/api/v1/events": {
            "get": {"tags": ["Events"], "summary": "List events", "produces": ["application/json"], "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["Events"], "summary": "Add an event", "consumes": ["application/json"], "produces": ["application/json"], "responses": {"202": {"description": "Accepted"}, "400": {"description": "Bad Request"}, "503": {"description": "Service Unavailable"}}}
        },
        "/api/v1/events/stream": {
            "get": {"tags": ["Events"], "summary": "Live event stream", "produces": ["text/event-stream"], "responses": {"200": {"description": "OK"}}}
        },
        "/api/v1/events/export": {
            "get": {"tags": ["Events"], "summary": "Export events", "parameters": [{"type": "string", "name": "format", "in": "query"}, {"type": "string", "name": "range", "in": "query"}, {"type": "string", "name": "start_date", "in": "query"}, {"type": "string", "name": "end_date", "in": "query"}], "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}
        },
        "/api/v1/events/{id}": {
            "get": {"tags": ["Events"], "summary": "Get an event", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "patch": {"tags": ["Events"], "summary": "Update an event", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"202": {"description": "Accepted"}, "400": {"description": "Bad Request"}}},
            "delete": {"tags": ["Events"], "summary": "Delete an event", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"202": {"description": "Accepted"}}}
        },
        "/api/v1/page": {
            "get": {"tags": ["Page"], "summary": "Current page view", "responses": {"200": {"description": "OK"}}}
        },
        "/api/v1/page/selection": {
            "post": {"tags": ["Page"], "summary": "Select a date range", "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}
        },
        "/api/v1/page/form": {
            "put": {"tags": ["Page"], "summary": "Edit the dialog form", "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}}
        },
        "/api/v1/page/save": {
            "post": {"tags": ["Page"], "summary": "Save the dialog", "responses": {"202": {"description": "Accepted"}, "400": {"description": "Bad Request"}, "409": {"description": "Conflict"}}}
        },
        "/api/v1/page/close": {
            "post": {"tags": ["Page"], "summary": "Close the dialog", "responses": {"200": {"description": "OK"}}}
        },
        "/api/v1/page/notice": {
            "delete": {"tags": ["Page"], "summary": "Dismiss the failure notice", "responses": {"200": {"description": "OK"}}}
        },
        "/api/v1/page/preferences": {
            "put": {"tags": ["Page"], "summary": "Save grid preferences", "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}
        },
        "/api/v1/page/events/{id}/open": {
            "post": {"tags": ["Page"], "summary": "Open an event for editing", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}
        },
        "/api/v1/page/events/{id}/drop": {
            "post": {"tags": ["Page"], "summary": "Move an event", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"202": {"description": "Accepted"}, "404": {"description": "Not Found"}}}
        },
        "/api/v1/page/events/{id}/expand": {
            "post": {"tags": ["Page"], "summary": "Toggle sidebar details", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}
        },
        "/api/v1/page/events/{id}/menu": {
            "post": {"tags": ["Page"], "summary": "Toggle the action menu", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}
        },
        "/api/v1/page/events/{id}/delete": {
            "post": {"tags": ["Page"], "summary": "Delete an event after confirmation", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}
        },
        "/api/v1/auditlogs": {
            "get": {"tags": ["AuditLog"], "summary": "Get audit logs", "responses": {"200": {"description": "OK"}}}
        },
        "/api/v1/auditlogs/stats": {
            "get": {"tags": ["AuditLog"], "summary": "Audit log statistics", "responses": {"200": {"description": "OK"}}}
        },
        "/api/v1/auditlogs/{id}": {
            "get": {"tags": ["AuditLog"], "summary": "Get an audit log", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}
        },
        "/api/v1/notifications/recent": {
            "get": {"tags": ["Notifications"], "summary": "Recent calendar changes", "responses": {"200": {"description": "OK"}}}
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Event Calendar API",
	Description:      "Shared event calendar backed by a live remote collection.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
