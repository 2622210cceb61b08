// Package docs holds the OpenAPI description of the demo User API.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "Thamos Maintainers",
            "url": "https://github.com/raysh454/thamos"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/": {
            "get": {
                "produces": ["application/json"],
                "tags": ["meta"],
                "summary": "API information",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.APIInfo"}}
                }
            }
        },
        "/advise/python": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["advise"],
                "summary": "Submit an advise for a Python application stack",
                "parameters": [
                    {"description": "Application stack and runtime environment", "name": "input", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.AdviseInput"}},
                    {"type": "string", "description": "Recommendation type", "name": "recommendation_type", "in": "query", "required": true},
                    {"type": "integer", "description": "Maximum number of stacks to resolve", "name": "limit", "in": "query"},
                    {"type": "integer", "description": "Number of stacks to report", "name": "count", "in": "query"},
                    {"type": "boolean", "description": "Run in debug mode", "name": "debug", "in": "query"},
                    {"type": "boolean", "description": "Do not use cached results", "name": "force", "in": "query"}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/server.AnalysisResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/server.ErrorResponse"}}
                }
            }
        },
        "/advise/python/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["advise"],
                "summary": "Retrieve an advise result",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/server.AnalysisResultResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/server.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/server.ErrorResponse"}}
                }
            }
        },
        "/advise/python/{id}/status": {
            "get": {
                "produces": ["application/json"],
                "tags": ["advise"],
                "summary": "Retrieve the status of an advise",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.AnalysisStatusResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/server.ErrorResponse"}}
                }
            }
        },
        "/advise/python/{id}/log": {
            "get": {
                "produces": ["application/json"],
                "tags": ["advise"],
                "summary": "Retrieve the log of an advise",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/server.AnalysisLogResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/server.ErrorResponse"}}
                }
            }
        },
        "/provenance/python": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["provenance"],
                "summary": "Submit a provenance check of a locked Python application stack",
                "parameters": [
                    {"description": "Application stack", "name": "input", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.ProvenanceInput"}},
                    {"type": "boolean", "description": "Run in debug mode", "name": "debug", "in": "query"},
                    {"type": "boolean", "description": "Do not use cached results", "name": "force", "in": "query"}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/server.AnalysisResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/server.ErrorResponse"}}
                }
            }
        },
        "/provenance/python/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["provenance"],
                "summary": "Retrieve a provenance check result",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/server.AnalysisResultResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/server.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/server.ErrorResponse"}}
                }
            }
        },
        "/provenance/python/{id}/status": {
            "get": {
                "produces": ["application/json"],
                "tags": ["provenance"],
                "summary": "Retrieve the status of a provenance check",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.AnalysisStatusResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/server.ErrorResponse"}}
                }
            }
        },
        "/provenance/python/{id}/log": {
            "get": {
                "produces": ["application/json"],
                "tags": ["provenance"],
                "summary": "Retrieve the log of a provenance check",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/server.AnalysisLogResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/server.ErrorResponse"}}
                }
            }
        },
        "/analyze": {
            "post": {
                "produces": ["application/json"],
                "tags": ["analyze"],
                "summary": "Submit an analysis of a container image",
                "parameters": [
                    {"type": "string", "description": "Image to analyze", "name": "image", "in": "query", "required": true},
                    {"type": "boolean", "description": "Verify TLS when pulling the image", "name": "verify_tls", "in": "query"},
                    {"type": "string", "description": "Registry user", "name": "registry_user", "in": "query"},
                    {"type": "string", "description": "Registry password", "name": "registry_password", "in": "query"},
                    {"type": "boolean", "description": "Run in debug mode", "name": "debug", "in": "query"},
                    {"type": "boolean", "description": "Do not use cached results", "name": "force", "in": "query"}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/server.AnalysisResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/server.ErrorResponse"}}
                }
            }
        },
        "/analyze/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["analyze"],
                "summary": "Retrieve an image analysis result",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/server.AnalysisResultResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/server.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/server.ErrorResponse"}}
                }
            }
        },
        "/analyze/{id}/status": {
            "get": {
                "produces": ["application/json"],
                "tags": ["analyze"],
                "summary": "Retrieve the status of an image analysis",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.AnalysisStatusResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/server.ErrorResponse"}}
                }
            }
        },
        "/analyze/{id}/log": {
            "get": {
                "produces": ["application/json"],
                "tags": ["analyze"],
                "summary": "Retrieve the log of an image analysis",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/server.AnalysisLogResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/server.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "model.APIInfo": {
            "type": "object",
            "properties": {
                "deployment_name": {"type": "string"},
                "version": {"type": "string"}
            }
        },
        "model.PythonStack": {
            "type": "object",
            "properties": {
                "requirements": {"type": "string"},
                "requirements_format": {"type": "string"},
                "requirements_lock": {"type": "string"}
            }
        },
        "model.AdviseInput": {
            "type": "object",
            "properties": {
                "application_stack": {"$ref": "#/definitions/model.PythonStack"},
                "runtime_environment": {"type": "object"}
            }
        },
        "model.ProvenanceInput": {
            "type": "object",
            "properties": {
                "application_stack": {"$ref": "#/definitions/model.PythonStack"}
            }
        },
        "model.AnalysisStatus": {
            "type": "object",
            "properties": {
                "exit_code": {"type": "integer"},
                "finished_at": {"type": "string"},
                "reason": {"type": "string"},
                "started_at": {"type": "string"},
                "state": {"type": "string"}
            }
        },
        "model.AnalysisStatusResponse": {
            "type": "object",
            "properties": {
                "analysis_id": {"type": "string"},
                "status": {"$ref": "#/definitions/model.AnalysisStatus"}
            }
        },
        "server.AnalysisLogResponse": {
            "type": "object",
            "properties": {
                "analysis_id": {"type": "string", "example": "adviser-5f3c9b8e"},
                "log": {"type": "string"}
            }
        },
        "server.AnalysisResponse": {
            "type": "object",
            "properties": {
                "analysis_id": {"type": "string", "example": "adviser-5f3c9b8e"},
                "cached": {"type": "boolean"},
                "parameters": {"type": "object", "additionalProperties": {}}
            }
        },
        "server.AnalysisResultResponse": {
            "type": "object",
            "properties": {
                "analysis_id": {"type": "string", "example": "adviser-5f3c9b8e"},
                "metadata": {"type": "object"},
                "parameters": {"type": "object", "additionalProperties": {}},
                "result": {"type": "object"}
            }
        },
        "server.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string", "example": "Requested analysis not found"},
                "parameters": {"type": "object", "additionalProperties": {}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "0.1",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Thoth User API (demo)",
	Description:      "In-process implementation of the User API endpoints consumed by thamos.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
