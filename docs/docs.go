// Package docs holds the OpenAPI document served under /swagger when the
// binary is built with -tags=swagger. Regenerate with `swag init -g cmd/tutord/docs.go`.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "tutord maintainers"
        },
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/download": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["download"],
                "summary": "Download the model asset",
                "parameters": [
                    {"type": "string", "description": "Set to 1 to return immediately", "name": "async", "in": "query"},
                    {"description": "Overrides", "name": "body", "in": "body", "schema": {"$ref": "#/definitions/types.DownloadRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.DownloadResponse"}},
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/types.DownloadResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/download/progress": {
            "get": {
                "produces": ["application/json"],
                "tags": ["download"],
                "summary": "Download progress",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.ProgressResponse"}}
                }
            }
        },
        "/download/cancel": {
            "post": {
                "produces": ["application/json"],
                "tags": ["download"],
                "summary": "Cancel the running download",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.CancelResponse"}}
                }
            }
        },
        "/initialize": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["session"],
                "summary": "Validate the asset and initialize the backend",
                "parameters": [
                    {"description": "Initialization config", "name": "body", "in": "body", "schema": {"$ref": "#/definitions/types.InitializeRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.InitializeResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/generate": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["session"],
                "summary": "Generate a reply",
                "parameters": [
                    {"description": "Prompt and sampling parameters", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/types.GenerateRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.GenerateResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/session": {
            "delete": {
                "tags": ["session"],
                "summary": "Dispose the active session",
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/asset": {
            "get": {
                "produces": ["application/json"],
                "tags": ["status"],
                "summary": "Local asset state",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.AssetStatus"}}
                }
            }
        },
        "/status": {
            "get": {
                "produces": ["application/json"],
                "tags": ["status"],
                "summary": "Runtime status",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.StatusResponse"}}
                }
            }
        }
    },
    "definitions": {
        "types.AssetStatus": {
            "type": "object",
            "properties": {
                "exists": {"type": "boolean"},
                "min_size_bytes": {"type": "integer"},
                "path": {"type": "string"},
                "size_bytes": {"type": "integer"},
                "valid": {"type": "boolean"}
            }
        },
        "types.CancelResponse": {
            "type": "object",
            "properties": {
                "acknowledged": {"type": "boolean"}
            }
        },
        "types.DownloadRequest": {
            "type": "object",
            "properties": {
                "auth_token": {"type": "string"},
                "destination_path": {"type": "string"},
                "source_url": {"type": "string"}
            }
        },
        "types.DownloadResponse": {
            "type": "object",
            "properties": {
                "bytes_written": {"type": "integer"},
                "destination_path": {"type": "string"},
                "error_message": {"type": "string"},
                "started": {"type": "boolean"},
                "success": {"type": "boolean"}
            }
        },
        "types.ErrorResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "integer"},
                "error_message": {"type": "string"},
                "success": {"type": "boolean"}
            }
        },
        "types.GenerateRequest": {
            "type": "object",
            "properties": {
                "max_tokens": {"type": "integer"},
                "prompt": {"type": "string"},
                "temperature": {"type": "number"},
                "top_k": {"type": "integer"},
                "top_p": {"type": "number"}
            }
        },
        "types.GenerateResponse": {
            "type": "object",
            "properties": {
                "elapsed_millis": {"type": "integer"},
                "text": {"type": "string"},
                "tokens_per_second": {"type": "number"}
            }
        },
        "types.InitializeRequest": {
            "type": "object",
            "properties": {
                "asset_path": {"type": "string"},
                "backend_thread_hint": {"type": "integer"},
                "max_sequence_tokens": {"type": "integer"},
                "use_accelerated_backend": {"type": "boolean"}
            }
        },
        "types.InitializeResponse": {
            "type": "object",
            "properties": {
                "backend_name": {"type": "string"},
                "error_message": {"type": "string"},
                "session_id": {"type": "string"},
                "success": {"type": "boolean"}
            }
        },
        "types.ProgressResponse": {
            "type": "object",
            "properties": {
                "bytes_transferred": {"type": "integer"},
                "fraction_complete": {"type": "number"},
                "is_downloading": {"type": "boolean"},
                "total_bytes": {"type": "integer"}
            }
        },
        "types.StatusResponse": {
            "type": "object",
            "properties": {
                "asset": {"$ref": "#/definitions/types.AssetStatus"},
                "download": {"$ref": "#/definitions/types.ProgressResponse"},
                "generations_total": {"type": "integer"},
                "inits_total": {"type": "integer"},
                "last_error": {"type": "string"},
                "phase": {"type": "string"},
                "server_time_unix": {"type": "integer"},
                "uptime_seconds": {"type": "integer"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "tutord API",
	Description:      "HTTP API for the on-device tutor model: asset download, initialization and generation.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
