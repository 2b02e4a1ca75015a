// Package docs registers the Swagger document of the HTTP API.
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
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Service health",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.HealthResponse"}},
                    "503": {"description": "Degraded", "schema": {"$ref": "#/definitions/types.HealthResponse"}}
                }
            }
        },
        "/api/student/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["students"],
                "summary": "Fetch a student into the session",
                "parameters": [{"type": "string", "description": "8-digit student id", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dashboard.View"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/api/generate-student": {
            "get": {
                "produces": ["application/json"],
                "tags": ["students"],
                "summary": "Generate a synthetic student",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dashboard.View"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/api/assess": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["assessment"],
                "summary": "Assess the selected risk factors",
                "parameters": [{"description": "Assessment request", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/types.AssessRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dashboard.View"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "503": {"description": "History unavailable", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/api/classify": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["assessment"],
                "summary": "Classify a metric set",
                "parameters": [{"description": "Metrics", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/types.ClassifyRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/risk.Classification"}},
                    "422": {"description": "Invalid metric", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/api/factors/categorize": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["factors"],
                "summary": "Group factor tags into categories",
                "parameters": [{"description": "Factor tags", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/types.CategorizeRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.CategorizeResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/api/factors/catalog": {
            "get": {
                "produces": ["application/json"],
                "tags": ["factors"],
                "summary": "Known factor tags with display labels",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/risk.FactorOption"}}}
                }
            }
        },
        "/api/history": {
            "get": {
                "produces": ["application/json"],
                "tags": ["history"],
                "summary": "List the profile's assessments",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.HistoryResponse"}},
                    "503": {"description": "History unavailable", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["history"],
                "summary": "Record a client-measured assessment",
                "parameters": [{"description": "Assessment", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/types.RecordRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/dashboard.AssessmentView"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "422": {"description": "Invalid metric", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            },
            "delete": {
                "produces": ["application/json"],
                "tags": ["history"],
                "summary": "Clear the profile's history",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.MessageResponse"}}
                }
            }
        },
        "/api/history/latest": {
            "get": {
                "produces": ["application/json"],
                "tags": ["history"],
                "summary": "Latest assessment",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/risk.Assessment"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/api/statistics": {
            "get": {
                "produces": ["application/json"],
                "tags": ["history"],
                "summary": "Dashboard statistics",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dashboard.Statistics"}}
                }
            }
        },
        "/api/distribution": {
            "get": {
                "produces": ["application/json"],
                "tags": ["history"],
                "summary": "Population distribution of the profile's history",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/risk.Distribution"}}
                }
            }
        },
        "/api/distribution/assessment": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["assessment"],
                "summary": "Per-assessment distribution of a metric set",
                "parameters": [{"description": "Metrics", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/types.DistributionRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/risk.Distribution"}},
                    "422": {"description": "Invalid metric", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/api/reset": {
            "post": {
                "produces": ["application/json"],
                "tags": ["assessment"],
                "summary": "Reset the session and the history",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dashboard.View"}}
                }
            }
        }
    },
    "definitions": {
        "errors.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "message": {"type": "string"},
                "category": {"type": "string"},
                "details": {"type": "object", "additionalProperties": {"type": "string"}},
                "timestamp": {"type": "string"},
                "request_id": {"type": "string"}
            }
        },
        "risk.Metrics": {
            "type": "object",
            "properties": {
                "academic_performance": {"type": "number", "example": 0.85},
                "attendance_rate": {"type": "number", "example": 0.92},
                "behavioral_incidents": {"type": "integer", "example": 1},
                "social_emotional_score": {"type": "number", "example": 0.74}
            }
        },
        "risk.Classification": {
            "type": "object",
            "properties": {
                "health": {"type": "object", "additionalProperties": {"type": "number"}},
                "grades": {"type": "object", "additionalProperties": {"type": "string"}},
                "riskScore": {"type": "number"},
                "riskLevel": {"type": "string", "enum": ["Low", "Medium", "High"]},
                "flags": {"type": "array", "items": {"type": "string"}}
            }
        },
        "risk.Assessment": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "studentId": {"type": "string"},
                "timestamp": {"type": "string"},
                "metrics": {"$ref": "#/definitions/risk.Metrics"},
                "grades": {"type": "object", "additionalProperties": {"type": "string"}},
                "riskScore": {"type": "number"},
                "riskLevel": {"type": "string"},
                "factors": {"type": "array", "items": {"type": "string"}}
            }
        },
        "risk.Distribution": {
            "type": "object",
            "properties": {
                "low": {"type": "integer"},
                "medium": {"type": "integer"},
                "high": {"type": "integer"},
                "total": {"type": "integer"}
            }
        },
        "risk.FactorOption": {
            "type": "object",
            "properties": {
                "tag": {"type": "string"},
                "label": {"type": "string"},
                "category": {"type": "string"}
            }
        },
        "dashboard.AssessmentView": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "studentId": {"type": "string"},
                "riskScore": {"type": "number"},
                "riskLevel": {"type": "string"},
                "categories": {"type": "object", "additionalProperties": {"type": "array", "items": {"type": "string"}}},
                "distribution": {"$ref": "#/definitions/risk.Distribution"},
                "flags": {"type": "array", "items": {"type": "string"}}
            }
        },
        "dashboard.View": {
            "type": "object",
            "properties": {
                "profile": {"type": "string"},
                "student": {"type": "object"},
                "assessment": {"$ref": "#/definitions/dashboard.AssessmentView"},
                "factors": {"type": "array", "items": {"type": "string"}}
            }
        },
        "dashboard.Statistics": {
            "type": "object",
            "properties": {
                "total": {"type": "integer"},
                "distribution": {"$ref": "#/definitions/risk.Distribution"},
                "latest": {"$ref": "#/definitions/risk.Assessment"},
                "categories": {"type": "object", "additionalProperties": {"type": "array", "items": {"type": "string"}}},
                "latestDistribution": {"$ref": "#/definitions/risk.Distribution"}
            }
        },
        "types.AssessRequest": {
            "type": "object",
            "properties": {
                "studentId": {"type": "string", "example": "12345678"},
                "factors": {"type": "array", "items": {"type": "string"}}
            }
        },
        "types.ClassifyRequest": {
            "type": "object",
            "properties": {
                "metrics": {"$ref": "#/definitions/risk.Metrics"},
                "partial": {"type": "boolean"}
            }
        },
        "types.CategorizeRequest": {
            "type": "object",
            "properties": {
                "factors": {"type": "array", "items": {"type": "string"}}
            }
        },
        "types.CategorizeResponse": {
            "type": "object",
            "properties": {
                "categories": {"type": "object", "additionalProperties": {"type": "array", "items": {"type": "string"}}}
            }
        },
        "types.RecordRequest": {
            "type": "object",
            "required": ["studentId"],
            "properties": {
                "studentId": {"type": "string"},
                "metrics": {"$ref": "#/definitions/risk.Metrics"},
                "factors": {"type": "array", "items": {"type": "string"}},
                "partial": {"type": "boolean"}
            }
        },
        "types.DistributionRequest": {
            "type": "object",
            "properties": {
                "metrics": {"$ref": "#/definitions/risk.Metrics"}
            }
        },
        "types.HistoryResponse": {
            "type": "object",
            "properties": {
                "profile": {"type": "string"},
                "assessments": {"type": "array", "items": {"$ref": "#/definitions/risk.Assessment"}},
                "count": {"type": "integer"}
            }
        },
        "types.HealthResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "timestamp": {"type": "string"},
                "version": {"type": "string"},
                "services": {"type": "object"}
            }
        },
        "types.MessageResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Student Risk Meter API",
	Description:      "Classifies student wellbeing metrics, aggregates risk and keeps a per-profile assessment history.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
