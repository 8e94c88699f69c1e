package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Scholarship API",
        "description": "Scholarship eligibility and ranking service",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Login and token issuance"},
        {"name": "Students", "description": "Student record management"},
        {"name": "Import", "description": "CSV bulk import"},
        {"name": "Allocations", "description": "Ranking and scholarship assignment"},
        {"name": "Programs", "description": "Admission plan catalog"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate user",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "Token issued", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/students": {
            "get": {
                "tags": ["Students"],
                "summary": "List students",
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "programId", "in": "query", "type": "integer"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Students"],
                "summary": "Create student",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SaveStudentRequest"}}
                ],
                "responses": {"201": {"description": "Created"}}
            },
            "delete": {
                "tags": ["Students"],
                "summary": "Delete all students",
                "responses": {"204": {"description": "Cleared"}}
            }
        },
        "/students/{id}": {
            "get": {
                "tags": ["Students"],
                "summary": "Get student detail",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}
            },
            "put": {
                "tags": ["Students"],
                "summary": "Update student",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SaveStudentRequest"}}
                ],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}
            },
            "delete": {
                "tags": ["Students"],
                "summary": "Delete student",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"204": {"description": "Deleted"}, "404": {"description": "Not found"}}
            }
        },
        "/students/import": {
            "post": {
                "tags": ["Import"],
                "summary": "Import students from CSV",
                "consumes": ["multipart/form-data"],
                "parameters": [{"name": "file", "in": "formData", "required": true, "type": "file"}],
                "responses": {"200": {"description": "Import report"}, "400": {"description": "Missing required columns"}}
            }
        },
        "/students/import/preview": {
            "post": {
                "tags": ["Import"],
                "summary": "Preview a CSV import",
                "consumes": ["multipart/form-data"],
                "parameters": [{"name": "file", "in": "formData", "required": true, "type": "file"}],
                "responses": {"200": {"description": "Preview"}, "400": {"description": "Missing required columns"}}
            }
        },
        "/allocations/run": {
            "post": {
                "tags": ["Allocations"],
                "summary": "Run scholarship allocation",
                "responses": {"200": {"description": "Allocation summary"}}
            }
        },
        "/allocations/results": {
            "get": {
                "tags": ["Allocations"],
                "summary": "Get allocation results",
                "parameters": [{"name": "scholarsOnly", "in": "query", "type": "boolean"}],
                "responses": {"200": {"description": "Results grouped by program"}}
            }
        },
        "/allocations/results/export": {
            "get": {
                "tags": ["Allocations"],
                "summary": "Export allocation results",
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]},
                    {"name": "scholarsOnly", "in": "query", "type": "boolean"}
                ],
                "responses": {"200": {"description": "File download"}, "400": {"description": "Unsupported format"}}
            }
        },
        "/programs": {
            "get": {
                "tags": ["Programs"],
                "summary": "List programs",
                "responses": {"200": {"description": "Admission plan"}}
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "SaveStudentRequest": {
            "type": "object",
            "required": ["program_id", "name", "surname"],
            "properties": {
                "program_id": {"type": "integer"},
                "name": {"type": "string"},
                "surname": {"type": "string"},
                "scores": {"type": "object"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
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
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
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
