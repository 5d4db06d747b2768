package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Bible Studies Scheduling API",
        "description": "Lecturer scheduling with availability conflict checks",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Lecturers", "description": "Lecturer pick list and availability"},
        {"name": "Classes", "description": "Class pick list"},
        {"name": "Schedules", "description": "Schedule creation and upcoming table"},
        {"name": "Bookings", "description": "Interactive booking sessions"}
    ],
    "paths": {
        "/lecturers": {
            "get": {
                "tags": ["Lecturers"],
                "summary": "List lecturers",
                "parameters": [
                    {"name": "status", "in": "query", "type": "string", "enum": ["Active", "Inactive", "all"]},
                    {"name": "q", "in": "query", "type": "string", "description": "Case-insensitive name or email search"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/lecturers/{id}": {
            "get": {
                "tags": ["Lecturers"],
                "summary": "Get lecturer",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string", "format": "uuid"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/lecturers/{id}/availability": {
            "get": {
                "tags": ["Lecturers"],
                "summary": "Check lecturer availability for a time range",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string", "format": "uuid"},
                    {"name": "date", "in": "query", "required": true, "type": "string", "format": "date"},
                    {"name": "start_time", "in": "query", "required": true, "type": "string", "description": "HH:MM"},
                    {"name": "end_time", "in": "query", "required": true, "type": "string", "description": "HH:MM"},
                    {"name": "exclude_schedule_id", "in": "query", "type": "string", "format": "uuid"}
                ],
                "responses": {
                    "200": {"description": "Available or conflict", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid range", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "503": {"description": "Availability unknown", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/classes": {
            "get": {
                "tags": ["Classes"],
                "summary": "List active classes",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedules": {
            "post": {
                "tags": ["Schedules"],
                "summary": "Create schedule",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateScheduleRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Schedule conflict", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "503": {"description": "Availability unknown", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedules/overview": {
            "get": {
                "tags": ["Schedules"],
                "summary": "Schedule overview counts for today",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "500": {"description": "Internal error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedules/upcoming": {
            "get": {
                "tags": ["Schedules"],
                "summary": "List upcoming schedules",
                "parameters": [
                    {"name": "from", "in": "query", "type": "string", "format": "date"},
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "lecturer_id", "in": "query", "type": "string", "format": "uuid"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedules/upcoming/export": {
            "get": {
                "tags": ["Schedules"],
                "summary": "Export upcoming schedules",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]},
                    {"name": "from", "in": "query", "type": "string", "format": "date"},
                    {"name": "lecturer_id", "in": "query", "type": "string", "format": "uuid"}
                ],
                "responses": {
                    "200": {"description": "File"}
                }
            }
        },
        "/bookings": {
            "post": {
                "tags": ["Bookings"],
                "summary": "Open booking session",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/OpenBookingRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Lecturer inactive or invalid", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/bookings/{id}": {
            "get": {
                "tags": ["Bookings"],
                "summary": "Get booking session",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "patch": {
                "tags": ["Bookings"],
                "summary": "Edit booking fields",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateBookingRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Invalid state", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Bookings"],
                "summary": "Cancel booking session",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Invalid state", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/bookings/{id}/submit": {
            "post": {
                "tags": ["Bookings"],
                "summary": "Submit booking",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Committed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Schedule conflict", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "503": {"description": "Availability unknown", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/metrics/summary": {
            "get": {
                "summary": "Runtime metrics snapshot",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "CreateScheduleRequest": {
            "type": "object",
            "required": ["class_id", "lecturer_id", "scheduled_date", "start_time", "end_time"],
            "properties": {
                "class_id": {"type": "string", "format": "uuid"},
                "lecturer_id": {"type": "string", "format": "uuid"},
                "scheduled_date": {"type": "string", "format": "date"},
                "start_time": {"type": "string", "example": "09:00"},
                "end_time": {"type": "string", "example": "10:30"},
                "location": {"type": "string"},
                "notes": {"type": "string"}
            }
        },
        "OpenBookingRequest": {
            "type": "object",
            "required": ["lecturer_id"],
            "properties": {
                "lecturer_id": {"type": "string", "format": "uuid"},
                "class_id": {"type": "string", "format": "uuid"}
            }
        },
        "UpdateBookingRequest": {
            "type": "object",
            "properties": {
                "class_id": {"type": "string"},
                "scheduled_date": {"type": "string"},
                "start_time": {"type": "string"},
                "end_time": {"type": "string"},
                "location": {"type": "string"},
                "notes": {"type": "string"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "details": {"type": "object"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
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
