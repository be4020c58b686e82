// Package docs registers the OpenAPI document served under /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "{{.Title}}",
        "description": "{{escape .Description}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "schemes": {{ marshal .Schemes }},
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "paths": {
        "/auth/register": {
            "post": {
                "tags": ["auth"],
                "summary": "Register a new user",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/registerRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/tokenResponse"}},
                    "400": {"description": "Username already registered", "schema": {"$ref": "#/definitions/detail"}},
                    "422": {"description": "Validation error"}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["auth"],
                "summary": "Login",
                "consumes": ["application/json", "application/x-www-form-urlencoded"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/loginRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/tokenResponse"}},
                    "401": {"description": "Incorrect username or password", "schema": {"$ref": "#/definitions/detail"}}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["auth"],
                "summary": "Current user",
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/meResponse"}},
                    "401": {"description": "Invalid or expired token", "schema": {"$ref": "#/definitions/detail"}}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "tags": ["auth"],
                "summary": "Logout",
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/messageResponse"}},
                    "401": {"description": "Not authenticated", "schema": {"$ref": "#/definitions/detail"}}
                }
            }
        },
        "/dashboard/farmer": {
            "get": {
                "tags": ["dashboard"],
                "summary": "Farmer dashboard",
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dashboardResponse"}},
                    "401": {"description": "Not authenticated", "schema": {"$ref": "#/definitions/guardResponse"}},
                    "403": {"description": "Wrong role", "schema": {"$ref": "#/definitions/guardResponse"}}
                }
            }
        },
        "/dashboard/consumer": {
            "get": {
                "tags": ["dashboard"],
                "summary": "Consumer dashboard",
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dashboardResponse"}},
                    "401": {"description": "Not authenticated", "schema": {"$ref": "#/definitions/guardResponse"}},
                    "403": {"description": "Wrong role", "schema": {"$ref": "#/definitions/guardResponse"}}
                }
            }
        }
    },
    "definitions": {
        "detail": {"type": "object", "properties": {"detail": {"type": "string"}}},
        "guardResponse": {"type": "object", "properties": {"detail": {"type": "string"}, "redirect": {"type": "string"}}},
        "messageResponse": {"type": "object", "properties": {"message": {"type": "string"}}},
        "registerRequest": {
            "type": "object",
            "required": ["username", "password", "role"],
            "properties": {
                "username": {"type": "string", "minLength": 3, "maxLength": 50},
                "password": {"type": "string", "minLength": 6},
                "role": {"type": "string", "enum": ["farmer", "consumer"]},
                "name": {"type": "string"},
                "email": {"type": "string"}
            }
        },
        "loginRequest": {
            "type": "object",
            "required": ["username", "password"],
            "properties": {
                "username": {"type": "string"},
                "password": {"type": "string"},
                "role": {"type": "string", "enum": ["farmer", "consumer"]}
            }
        },
        "tokenResponse": {
            "type": "object",
            "properties": {
                "access_token": {"type": "string"},
                "token_type": {"type": "string"},
                "role": {"type": "string"},
                "username": {"type": "string"},
                "id": {"type": "integer"}
            }
        },
        "meResponse": {
            "type": "object",
            "properties": {
                "username": {"type": "string"},
                "role": {"type": "string"},
                "id": {"type": "integer"},
                "name": {"type": "string"},
                "email": {"type": "string"}
            }
        },
        "dashboardResponse": {
            "type": "object",
            "properties": {
                "dashboard": {"type": "string"},
                "message": {"type": "string"},
                "username": {"type": "string"},
                "id": {"type": "integer"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "KisaanConnect Auth API",
	Description:      "Accounts, tokens and role dashboards for KisaanConnect.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
