// Package docs holds the OpenAPI description of the BigBrain API.
// Regenerate with: swag init -g cmd/server/main.go -o docs
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
        "/admin/auth/register": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["admin auth"],
                "summary": "Register an admin",
                "parameters": [
                    {"description": "credentials", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.RegisterRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.TokenResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/admin/auth/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["admin auth"],
                "summary": "Log an admin in",
                "parameters": [
                    {"description": "credentials", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.TokenResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/admin/auth/logout": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["admin auth"],
                "summary": "Log an admin out",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/admin/games": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["admin games"],
                "summary": "List the caller's games",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.GamesResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["admin games"],
                "summary": "Replace the caller's games",
                "parameters": [
                    {"description": "games", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.ReplaceGamesRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/admin/game/{gameid}/mutate": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["admin games"],
                "summary": "Start, advance or end a game's session",
                "parameters": [
                    {"type": "string", "description": "game id", "name": "gameid", "in": "path", "required": true},
                    {"description": "START, ADVANCE or END", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.MutateRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.MutateResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/admin/session/{sessionid}/status": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["admin sessions"],
                "summary": "Session snapshot",
                "parameters": [
                    {"type": "string", "description": "session id", "name": "sessionid", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.StatusResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/admin/session/{sessionid}/results": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["admin sessions"],
                "summary": "Results of an ended session",
                "parameters": [
                    {"type": "string", "description": "session id", "name": "sessionid", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.ResultsResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/admin/session/{sessionid}/leaderboard": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["admin sessions"],
                "summary": "Ranked players of a session",
                "parameters": [
                    {"type": "string", "description": "session id", "name": "sessionid", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.LeaderboardResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/play/join/{sessionid}": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["play"],
                "summary": "Join a session that has not started",
                "parameters": [
                    {"type": "string", "description": "session id", "name": "sessionid", "in": "path", "required": true},
                    {"description": "player name", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.JoinRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.JoinResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/play/{playerid}/status": {
            "get": {
                "produces": ["application/json"],
                "tags": ["play"],
                "summary": "Whether the player's session has started",
                "parameters": [
                    {"type": "string", "description": "player id", "name": "playerid", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.StartedResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/play/{playerid}/question": {
            "get": {
                "produces": ["application/json"],
                "tags": ["play"],
                "summary": "Current question without its answers",
                "parameters": [
                    {"type": "string", "description": "player id", "name": "playerid", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/play/{playerid}/answer": {
            "get": {
                "produces": ["application/json"],
                "tags": ["play"],
                "summary": "Correct answers once revealed",
                "parameters": [
                    {"type": "string", "description": "player id", "name": "playerid", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.AnswersResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            },
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["play"],
                "summary": "Answer the current question",
                "parameters": [
                    {"type": "string", "description": "player id", "name": "playerid", "in": "path", "required": true},
                    {"description": "chosen answers", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.AnswersRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/play/{playerid}/results": {
            "get": {
                "produces": ["application/json"],
                "tags": ["play"],
                "summary": "The player's answers after the session ended",
                "parameters": [
                    {"type": "string", "description": "player id", "name": "playerid", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/model.PlayerAnswer"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "handler.ErrorResponse": {"type": "object", "properties": {"error": {"type": "string"}}},
        "handler.GamesResponse": {"type": "object", "properties": {"games": {"type": "array", "items": {"type": "object"}}}},
        "handler.ReplaceGamesRequest": {"type": "object", "properties": {"games": {"type": "array", "items": {"type": "object"}}}},
        "handler.MutateRequest": {"type": "object", "properties": {"mutationType": {"type": "string"}}},
        "handler.MutateResponse": {"type": "object", "properties": {"data": {"$ref": "#/definitions/model.MutationResult"}}},
        "handler.StatusResponse": {"type": "object", "properties": {"results": {"$ref": "#/definitions/model.SessionStatus"}}},
        "handler.ResultsResponse": {"type": "object", "properties": {"results": {"type": "array", "items": {"$ref": "#/definitions/model.Player"}}}},
        "handler.LeaderboardResponse": {"type": "object", "properties": {"leaderboard": {"type": "array", "items": {"$ref": "#/definitions/model.LeaderboardEntry"}}}},
        "handler.JoinRequest": {"type": "object", "properties": {"name": {"type": "string"}}},
        "handler.JoinResponse": {"type": "object", "properties": {"playerId": {"type": "integer"}}},
        "handler.StartedResponse": {"type": "object", "properties": {"started": {"type": "boolean"}}},
        "handler.AnswersRequest": {"type": "object", "properties": {"answers": {"type": "array", "items": {}}}},
        "handler.AnswersResponse": {"type": "object", "properties": {"answers": {"type": "array", "items": {}}}},
        "model.RegisterRequest": {"type": "object", "properties": {"email": {"type": "string"}, "name": {"type": "string"}, "password": {"type": "string"}}},
        "model.LoginRequest": {"type": "object", "properties": {"email": {"type": "string"}, "password": {"type": "string"}}},
        "model.TokenResponse": {"type": "object", "properties": {"token": {"type": "string"}}},
        "model.MutationResult": {"type": "object", "properties": {"status": {"type": "string"}, "sessionId": {"type": "integer"}, "position": {"type": "integer"}}},
        "model.SessionStatus": {
            "type": "object",
            "properties": {
                "active": {"type": "boolean"},
                "answerAvailable": {"type": "boolean"},
                "isoTimeLastQuestionStarted": {"type": "string"},
                "position": {"type": "integer"},
                "questions": {"type": "array", "items": {"type": "object"}},
                "players": {"type": "array", "items": {"type": "string"}}
            }
        },
        "model.Player": {"type": "object", "properties": {"name": {"type": "string"}, "answers": {"type": "array", "items": {"$ref": "#/definitions/model.PlayerAnswer"}}}},
        "model.PlayerAnswer": {
            "type": "object",
            "properties": {
                "questionStartedAt": {"type": "string"},
                "answeredAt": {"type": "string"},
                "answers": {"type": "array", "items": {}},
                "correct": {"type": "boolean"}
            }
        },
        "model.LeaderboardEntry": {
            "type": "object",
            "properties": {
                "rank": {"type": "integer"},
                "playerId": {"type": "integer"},
                "name": {"type": "string"},
                "score": {"type": "number"},
                "correct": {"type": "integer"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "BigBrain API",
	Description:      "Live quiz sessions: admins run games, players join and answer timed questions.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
