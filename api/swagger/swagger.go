package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "SMA LINE Bot",
        "description": "LINE webhook bot for student registration and the admin holiday form",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http",
        "https"
    ],
    "tags": [
        {"name": "Webhook", "description": "Messaging API callbacks"},
        {"name": "Holidays", "description": "Token-gated holiday registration form"},
        {"name": "Ops", "description": "Health and metrics"}
    ],
    "paths": {
        "/health": {
            "get": {
                "tags": ["Ops"],
                "summary": "Liveness check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "tags": ["Ops"],
                "summary": "Readiness check (pings Postgres)",
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "Database unreachable"}
                }
            }
        },
        "/metrics": {
            "get": {
                "tags": ["Ops"],
                "summary": "Prometheus metrics",
                "produces": ["text/plain"],
                "responses": {
                    "200": {"description": "Prometheus exposition format"}
                }
            }
        },
        "/callback": {
            "post": {
                "tags": ["Webhook"],
                "summary": "LINE webhook callback",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"name": "X-Line-Signature", "in": "header", "required": true, "type": "string", "description": "Base64 HMAC-SHA256 of the body keyed by the channel secret"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {
                    "200": {"description": "Events accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid signature or payload", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/holiday": {
            "get": {
                "tags": ["Holidays"],
                "summary": "Show the holiday form",
                "description": "Verifies the token without consuming it. Responds with HTML when the client accepts text/html.",
                "produces": ["application/json", "text/html"],
                "parameters": [
                    {"name": "token", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Form data", "schema": {"$ref": "#/definitions/HolidayFormEnvelope"}},
                    "400": {"description": "Token missing", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Token invalid or expired", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Token not issued to an administrator", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/holiday/submit": {
            "post": {
                "tags": ["Holidays"],
                "summary": "Replace holidays from today onwards",
                "description": "Consumes the token whatever the outcome.",
                "consumes": ["application/json", "application/x-www-form-urlencoded"],
                "produces": ["application/json", "text/html"],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/HolidaySubmitRequest"}}
                ],
                "responses": {
                    "200": {"description": "Holidays replaced", "schema": {"$ref": "#/definitions/HolidaySubmitEnvelope"}},
                    "400": {"description": "Token missing or invalid dates", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Token invalid, expired or already used", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "500": {"description": "Storage failure", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "meta": {"type": "object"}
            }
        },
        "HolidayForm": {
            "type": "object",
            "properties": {
                "token": {"type": "string"},
                "dates": {"type": "array", "items": {"type": "string", "format": "date"}},
                "today": {"type": "string", "format": "date"},
                "expires_at": {"type": "string", "format": "date-time"}
            }
        },
        "HolidayFormEnvelope": {
            "type": "object",
            "properties": {
                "data": {"$ref": "#/definitions/HolidayForm"}
            }
        },
        "HolidaySubmitRequest": {
            "type": "object",
            "required": ["token"],
            "properties": {
                "token": {"type": "string"},
                "dates": {"type": "array", "items": {"type": "string", "format": "date"}}
            }
        },
        "HolidaySubmitResult": {
            "type": "object",
            "properties": {
                "inserted": {"type": "integer"},
                "dates": {"type": "array", "items": {"type": "string", "format": "date"}}
            }
        },
        "HolidaySubmitEnvelope": {
            "type": "object",
            "properties": {
                "data": {"$ref": "#/definitions/HolidaySubmitResult"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
