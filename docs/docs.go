package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "description": "Toggle Service API Documentation",
        "title": "Toggle Service API",
        "version": "1.0"
    },
    "host": "localhost:8080",
    "basePath": "/",
    "schemes": ["http"],
    "paths": {
        "/create": {
            "post": {
                "tags": ["Toggles"],
                "summary": "Create Toggle",
                "description": "Mint a toggle with a generated identifier and initial state false. The new toggle is persisted before the response is sent.",
                "produces": ["application/json"],
                "responses": {
                    "200": {
                        "description": "Toggle created",
                        "schema": {
                            "type": "object",
                            "properties": {
                                "guid": {
                                    "type": "string",
                                    "example": "58a2bbac-e534-4479-8da2-5f344d91de79"
                                },
                                "state": {
                                    "type": "boolean",
                                    "example": false
                                }
                            }
                        }
                    },
                    "500": {
                        "description": "Snapshot write failed"
                    }
                }
            }
        },
        "/toggle/{guid}": {
            "post": {
                "tags": ["Toggles"],
                "summary": "Flip Toggle",
                "description": "Invert the boolean state of an existing toggle. The new state is persisted before the response is sent.",
                "produces": ["application/json"],
                "parameters": [
                    {
                        "in": "path",
                        "name": "guid",
                        "description": "Toggle identifier",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "New toggle state",
                        "schema": {
                            "type": "object",
                            "properties": {
                                "guid": {
                                    "type": "string",
                                    "example": "58a2bbac-e534-4479-8da2-5f344d91de79"
                                },
                                "state": {
                                    "type": "boolean",
                                    "example": true
                                }
                            }
                        }
                    },
                    "404": {
                        "description": "Toggle not found"
                    },
                    "500": {
                        "description": "Snapshot write failed"
                    }
                }
            }
        },
        "/status/{guid}": {
            "get": {
                "tags": ["Toggles"],
                "summary": "Get Toggle Status",
                "description": "Report the current boolean state of an existing toggle without mutating it.",
                "produces": ["application/json"],
                "parameters": [
                    {
                        "in": "path",
                        "name": "guid",
                        "description": "Toggle identifier",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Current toggle state",
                        "schema": {
                            "type": "object",
                            "properties": {
                                "guid": {
                                    "type": "string",
                                    "example": "58a2bbac-e534-4479-8da2-5f344d91de79"
                                },
                                "state": {
                                    "type": "boolean",
                                    "example": true
                                }
                            }
                        }
                    },
                    "404": {
                        "description": "Toggle not found"
                    }
                }
            }
        },
        "/health": {
            "get": {
                "tags": ["Health"],
                "summary": "Health Check",
                "description": "Check if server is running",
                "responses": {
                    "200": {
                        "description": "Server is healthy"
                    }
                }
            }
        },
        "/health/detailed": {
            "get": {
                "tags": ["Health"],
                "summary": "Detailed Health Check",
                "description": "Health plus store statistics: toggle count and snapshot path",
                "responses": {
                    "200": {
                        "description": "Health details"
                    }
                }
            }
        }
    }
}`

var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "Toggle Service API",
	Description:      "Toggle Service API Documentation",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
