// Package docs registers the OpenAPI description of the control API with
// swag so gin-swagger can serve it under /swagger. Keep it in step with the
// @Router annotations on the handlers.
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
        "/state": {
            "get": {
                "produces": ["application/json"],
                "tags": ["state"],
                "summary": "Current session snapshot",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/access-logs": {
            "get": {
                "produces": ["application/json"],
                "tags": ["state"],
                "summary": "Access log, newest first",
                "parameters": [
                    {"type": "integer", "description": "Maximum number of entries", "name": "limit", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Invalid limit"}}
            }
        },
        "/address": {
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["connection"],
                "summary": "Change the lock address while disconnected",
                "responses": {"200": {"description": "OK"}, "400": {"description": "Empty address"}, "409": {"description": "Connected or busy"}}
            }
        },
        "/connect": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["connection"],
                "summary": "Probe the lock and connect",
                "responses": {"200": {"description": "OK"}, "409": {"description": "Busy, address locked or aborted"}, "502": {"description": "Lock unreachable"}, "504": {"description": "Lock timed out"}}
            }
        },
        "/disconnect": {
            "post": {
                "produces": ["application/json"],
                "tags": ["connection"],
                "summary": "Disconnect from the lock",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/refresh": {
            "post": {
                "produces": ["application/json"],
                "tags": ["connection"],
                "summary": "Re-read lock status",
                "responses": {"200": {"description": "OK"}, "409": {"description": "Not connected or busy"}, "502": {"description": "Lock unreachable"}}
            }
        },
        "/unlock": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["lock"],
                "summary": "Open the lock",
                "responses": {"200": {"description": "OK"}, "409": {"description": "Not connected or busy"}, "502": {"description": "Lock refused or unreachable"}}
            }
        },
        "/lock": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["lock"],
                "summary": "Close the lock",
                "responses": {"200": {"description": "OK"}, "409": {"description": "Not connected or busy"}, "502": {"description": "Lock refused or unreachable"}}
            }
        },
        "/password/verify": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["password"],
                "summary": "Open the lock with its password",
                "responses": {"200": {"description": "OK"}, "400": {"description": "Empty password"}, "401": {"description": "Incorrect password"}, "409": {"description": "Not connected or busy"}}
            }
        },
        "/password": {
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["password"],
                "summary": "Change the lock password",
                "responses": {"200": {"description": "OK"}, "400": {"description": "Empty or mismatched fields"}, "409": {"description": "Not connected or busy"}}
            }
        },
        "/fingerprints": {
            "get": {
                "produces": ["application/json"],
                "tags": ["fingerprints"],
                "summary": "Enrolled fingerprints",
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "produces": ["application/json"],
                "tags": ["fingerprints"],
                "summary": "Enroll a fingerprint",
                "responses": {"200": {"description": "OK"}, "409": {"description": "Not connected or busy"}, "422": {"description": "Sensor read failed"}}
            }
        },
        "/fingerprints/{id}": {
            "delete": {
                "produces": ["application/json"],
                "tags": ["fingerprints"],
                "summary": "Delete a fingerprint",
                "parameters": [
                    {"type": "integer", "description": "Fingerprint ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Invalid id"}, "409": {"description": "Not connected or busy"}}
            }
        },
        "/voice": {
            "get": {
                "produces": ["application/json"],
                "tags": ["voice"],
                "summary": "Voice capture status",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/voice/start": {
            "post": {
                "produces": ["application/json"],
                "tags": ["voice"],
                "summary": "Start listening for a voice command",
                "responses": {"200": {"description": "OK"}, "409": {"description": "Not connected or already listening"}}
            }
        },
        "/voice/transcript": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["voice"],
                "summary": "Submit the recognised phrase",
                "responses": {"200": {"description": "OK"}, "409": {"description": "Not listening"}}
            }
        },
        "/voice/error": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["voice"],
                "summary": "Report a recognition failure",
                "responses": {"200": {"description": "OK"}, "409": {"description": "Not listening"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/v1",
	Schemes:          []string{},
	Title:            "Smart Lock Remote API",
	Description:      "Control API for a single HTTP door lock: connection, lock commands, password, fingerprints, access log and voice commands.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
