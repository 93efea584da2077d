// Package docs holds the OpenAPI document served under /swagger.
// Regenerate with: swag init -g cmd/server/main.go
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
		"/api/auth/github": {
			"get": {
				"tags": [
					"auth"
				],
				"summary": "Start GitHub login",
				"responses": {
					"307": {
						"description": "Temporary Redirect"
					}
				}
			}
		},
		"/api/auth/github/callback": {
			"get": {
				"tags": [
					"auth"
				],
				"summary": "GitHub login callback",
				"parameters": [
					{
						"description": "Authorization code",
						"name": "code",
						"in": "query",
						"type": "string"
					},
					{
						"description": "Anti-forgery state",
						"name": "state",
						"in": "query",
						"type": "string"
					}
				],
				"responses": {
					"307": {
						"description": "Temporary Redirect"
					}
				}
			}
		},
		"/api/clientes": {
			"get": {
				"security": [
					{
						"BearerAuth": []
					}
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"clientes"
				],
				"summary": "Client names",
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/handler.clientsResponse"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"type": "object",
							"additionalProperties": {
								"type": "string"
							}
						}
					}
				}
			}
		},
		"/api/login": {
			"post": {
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"auth"
				],
				"summary": "Login",
				"parameters": [
					{
						"description": "Login credentials",
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/handler.credentialsRequest"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/handler.authResponse"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"type": "object",
							"additionalProperties": {
								"type": "string"
							}
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"type": "object",
							"additionalProperties": {
								"type": "string"
							}
						}
					},
					"429": {
						"description": "Too Many Requests",
						"schema": {
							"type": "object",
							"additionalProperties": {
								"type": "string"
							}
						}
					}
				}
			}
		},
		"/api/logout": {
			"post": {
				"security": [
					{
						"BearerAuth": []
					}
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"auth"
				],
				"summary": "Logout",
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/handler.messageResponse"
						}
					}
				}
			}
		},
		"/api/profile": {
			"get": {
				"security": [
					{
						"BearerAuth": []
					}
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"auth"
				],
				"summary": "Current user profile",
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/handler.profileResponse"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"type": "object",
							"additionalProperties": {
								"type": "string"
							}
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"type": "object",
							"additionalProperties": {
								"type": "string"
							}
						}
					}
				}
			}
		},
		"/api/register": {
			"post": {
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"auth"
				],
				"summary": "Register a new user",
				"parameters": [
					{
						"description": "Email and password",
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/handler.credentialsRequest"
						}
					}
				],
				"responses": {
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/handler.authResponse"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"type": "object",
							"additionalProperties": {
								"type": "string"
							}
						}
					},
					"429": {
						"description": "Too Many Requests",
						"schema": {
							"type": "object",
							"additionalProperties": {
								"type": "string"
							}
						}
					}
				}
			}
		},
		"/api/solicitudes": {
			"post": {
				"security": [
					{
						"BearerAuth": []
					}
				],
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"solicitudes"
				],
				"summary": "Create a travel request",
				"parameters": [
					{
						"description": "Travel request",
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/ports.TravelRequestInput"
						}
					}
				],
				"responses": {
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/handler.travelRequestResponse"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"type": "object",
							"additionalProperties": {
								"type": "string"
							}
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"type": "object",
							"additionalProperties": {
								"type": "string"
							}
						}
					}
				}
			},
			"get": {
				"security": [
					{
						"BearerAuth": []
					}
				],
				"description": "Clients only see their own requests. estado=todas disables the status filter.",
				"produces": [
					"application/json"
				],
				"tags": [
					"solicitudes"
				],
				"summary": "List travel requests",
				"parameters": [
					{
						"description": "pendiente, en proceso, finalizada or todas",
						"name": "estado",
						"in": "query",
						"type": "string"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/handler.travelRequestListResponse"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"type": "object",
							"additionalProperties": {
								"type": "string"
							}
						}
					}
				}
			}
		},
		"/api/solicitudes/next-id": {
			"get": {
				"security": [
					{
						"BearerAuth": []
					}
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"solicitudes"
				],
				"summary": "Next correlative id",
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/handler.nextIDResponse"
						}
					}
				}
			}
		},
		"/api/solicitudes/stats": {
			"get": {
				"security": [
					{
						"BearerAuth": []
					}
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"solicitudes"
				],
				"summary": "Travel request counters",
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/handler.statsResponse"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"type": "object",
							"additionalProperties": {
								"type": "string"
							}
						}
					}
				}
			}
		},
		"/api/solicitudes/{id}": {
			"get": {
				"security": [
					{
						"BearerAuth": []
					}
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"solicitudes"
				],
				"summary": "Get a travel request",
				"parameters": [
					{
						"description": "Request id",
						"name": "id",
						"in": "path",
						"required": true,
						"type": "string"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/handler.travelRequestResponse"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"type": "object",
							"additionalProperties": {
								"type": "string"
							}
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"type": "object",
							"additionalProperties": {
								"type": "string"
							}
						}
					}
				}
			},
			"put": {
				"security": [
					{
						"BearerAuth": []
					}
				],
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"solicitudes"
				],
				"summary": "Update a travel request",
				"parameters": [
					{
						"description": "Request id",
						"name": "id",
						"in": "path",
						"required": true,
						"type": "string"
					},
					{
						"description": "Travel request",
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/ports.TravelRequestInput"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/handler.travelRequestResponse"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"type": "object",
							"additionalProperties": {
								"type": "string"
							}
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"type": "object",
							"additionalProperties": {
								"type": "string"
							}
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"type": "object",
							"additionalProperties": {
								"type": "string"
							}
						}
					}
				}
			},
			"delete": {
				"security": [
					{
						"BearerAuth": []
					}
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"solicitudes"
				],
				"summary": "Delete a travel request",
				"parameters": [
					{
						"description": "Request id",
						"name": "id",
						"in": "path",
						"required": true,
						"type": "string"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/handler.messageResponse"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"type": "object",
							"additionalProperties": {
								"type": "string"
							}
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"type": "object",
							"additionalProperties": {
								"type": "string"
							}
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"type": "object",
							"additionalProperties": {
								"type": "string"
							}
						}
					}
				}
			}
		}
	},
	"definitions": {
		"domain.TravelRequest": {
			"type": "object",
			"properties": {
				"id": {
					"type": "string"
				},
				"dni": {
					"type": "string"
				},
				"nombreCliente": {
					"type": "string"
				},
				"origen": {
					"type": "string"
				},
				"destino": {
					"type": "string"
				},
				"tipoViaje": {
					"type": "string",
					"enum": [
						"negocios",
						"turismo",
						"otros"
					]
				},
				"fechaSalida": {
					"type": "string"
				},
				"fechaRegreso": {
					"type": "string"
				},
				"estado": {
					"type": "string",
					"enum": [
						"pendiente",
						"en proceso",
						"finalizada"
					]
				},
				"fechaRegistro": {
					"type": "string"
				},
				"fechaActualizacion": {
					"type": "string"
				},
				"usuarioEmail": {
					"type": "string"
				}
			}
		},
		"ports.TravelRequestInput": {
			"type": "object",
			"properties": {
				"dni": {
					"type": "string"
				},
				"nombreCliente": {
					"type": "string"
				},
				"origen": {
					"type": "string"
				},
				"destino": {
					"type": "string"
				},
				"tipoViaje": {
					"type": "string",
					"enum": [
						"negocios",
						"turismo",
						"otros"
					]
				},
				"fechaSalida": {
					"type": "string"
				},
				"fechaRegreso": {
					"type": "string"
				},
				"estado": {
					"type": "string",
					"enum": [
						"pendiente",
						"en proceso",
						"finalizada"
					]
				}
			},
			"required": [
				"dni",
				"nombreCliente",
				"origen",
				"destino",
				"tipoViaje",
				"fechaSalida",
				"fechaRegreso",
				"estado"
			]
		},
		"handler.messageResponse": {
			"type": "object",
			"properties": {
				"message": {
					"type": "string"
				}
			}
		},
		"handler.credentialsRequest": {
			"type": "object",
			"properties": {
				"email": {
					"type": "string"
				},
				"password": {
					"type": "string"
				}
			},
			"required": [
				"email",
				"password"
			]
		},
		"handler.userSummary": {
			"type": "object",
			"properties": {
				"id": {
					"type": "string"
				},
				"email": {
					"type": "string"
				}
			}
		},
		"handler.authResponse": {
			"type": "object",
			"properties": {
				"message": {
					"type": "string"
				},
				"token": {
					"type": "string"
				},
				"user": {
					"$ref": "#/definitions/handler.userSummary"
				}
			}
		},
		"handler.profileResponse": {
			"type": "object",
			"properties": {
				"id": {
					"type": "string"
				},
				"email": {
					"type": "string"
				},
				"createdAt": {
					"type": "string"
				},
				"rol": {
					"type": "string",
					"enum": [
						"agente",
						"cliente"
					]
				}
			}
		},
		"handler.travelRequestResponse": {
			"type": "object",
			"properties": {
				"message": {
					"type": "string"
				},
				"solicitud": {
					"$ref": "#/definitions/domain.TravelRequest"
				}
			}
		},
		"handler.travelRequestListResponse": {
			"type": "object",
			"properties": {
				"solicitudes": {
					"type": "array",
					"items": {
						"$ref": "#/definitions/domain.TravelRequest"
					}
				},
				"rol": {
					"type": "string"
				}
			}
		},
		"handler.statsResponse": {
			"type": "object",
			"properties": {
				"total": {
					"type": "integer"
				},
				"pendientes": {
					"type": "integer"
				},
				"enProceso": {
					"type": "integer"
				},
				"finalizadas": {
					"type": "integer"
				},
				"rol": {
					"type": "string"
				}
			}
		},
		"handler.clientsResponse": {
			"type": "object",
			"properties": {
				"clientes": {
					"type": "array",
					"items": {
						"type": "string"
					}
				}
			}
		},
		"handler.nextIDResponse": {
			"type": "object",
			"properties": {
				"id": {
					"type": "string"
				}
			}
		}
	},
	"securityDefinitions": {
		"BearerAuth": {
			"description": "Type \"Bearer\" followed by a space and the JWT.",
			"type": "apiKey",
			"name": "Authorization",
			"in": "header"
		}
	}
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Agencia de Viajes Oeste API",
	Description:      "Travel request tracking for agents and clients.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
