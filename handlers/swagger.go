package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints for the document service.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
// Paths in the document are rendered under apiPrefix (e.g. "/api").
func RegisterSwagger(rg *gin.Engine, apiPrefix string) {
	doc := []byte(strings.ReplaceAll(swaggerJSON, "{{prefix}}", strings.TrimRight(apiPrefix, "/")))

	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", doc)
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>tiereddocs - Swagger</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "tiereddocs", "version": "v1.0.0", "description": "Document management API" },
  "components": {
    "parameters": {
      "id": { "name": "id", "in": "path", "required": true, "schema": { "type": "string" }, "example": "507f1f77bcf86cd799439011" },
      "authorId": { "name": "authorId", "in": "path", "required": true, "schema": { "type": "string" } },
      "limit": { "name": "limit", "in": "query", "schema": { "type": "integer", "minimum": 1, "maximum": 100, "default": 10 } }
    },
    "schemas": {
      "Document": { "type": "object", "properties": {
        "id": { "type": "string" }, "title": { "type": "string", "maxLength": 200 }, "content": { "type": "string" },
        "status": { "type": "string", "enum": ["draft", "published", "archived"] }, "authorId": { "type": "string" },
        "createdAt": { "type": "string", "format": "date-time" }, "updatedAt": { "type": "string", "format": "date-time" } } },
      "CreateDocument": { "type": "object", "required": ["title", "content", "authorId"], "additionalProperties": false, "properties": {
        "title": { "type": "string", "maxLength": 200 }, "content": { "type": "string" },
        "status": { "type": "string", "enum": ["draft", "published", "archived"], "default": "draft" }, "authorId": { "type": "string" } } },
      "UpdateDocument": { "type": "object", "additionalProperties": false, "properties": {
        "title": { "type": "string", "maxLength": 200 }, "content": { "type": "string" },
        "status": { "type": "string", "enum": ["draft", "published", "archived"] } } }
    }
  },
  "paths": {
    "{{prefix}}/docs": {
      "post": { "summary": "Create a new document", "requestBody": { "content": { "application/json": { "schema": { "$ref": "#/components/schemas/CreateDocument" } } } },
        "responses": { "201": { "description": "Document created successfully" }, "400": { "description": "Bad request - validation failed" } } },
      "get": { "summary": "Get all documents with pagination and filtering",
        "parameters": [
          { "name": "page", "in": "query", "schema": { "type": "integer", "minimum": 1, "default": 1 } },
          { "$ref": "#/components/parameters/limit" },
          { "name": "status", "in": "query", "schema": { "type": "string", "enum": ["draft", "published", "archived"] } },
          { "name": "q", "in": "query", "description": "Search query for title and content", "schema": { "type": "string" } }
        ],
        "responses": { "200": { "description": "Documents retrieved successfully" }, "400": { "description": "Invalid query" } } }
    },
    "{{prefix}}/docs/stats": { "get": { "summary": "Document counts by status", "responses": { "200": { "description": "Statistics retrieved successfully" } } } },
    "{{prefix}}/docs/search": { "get": { "summary": "Relevance-ranked text search",
      "parameters": [ { "name": "q", "in": "query", "schema": { "type": "string" } }, { "$ref": "#/components/parameters/limit" } ],
      "responses": { "200": { "description": "Search completed successfully" } } } },
    "{{prefix}}/docs/published": { "get": { "summary": "Newest published documents", "parameters": [ { "$ref": "#/components/parameters/limit" } ],
      "responses": { "200": { "description": "Published documents retrieved successfully" } } } },
    "{{prefix}}/docs/authors/{authorId}/recent": { "get": { "summary": "Newest non-archived documents of an author",
      "parameters": [ { "$ref": "#/components/parameters/authorId" }, { "$ref": "#/components/parameters/limit" } ],
      "responses": { "200": { "description": "Recent documents retrieved successfully" } } } },
    "{{prefix}}/docs/authors/{authorId}/count": { "get": { "summary": "Number of non-archived documents of an author",
      "parameters": [ { "$ref": "#/components/parameters/authorId" } ], "responses": { "200": { "description": "Document count retrieved successfully" } } } },
    "{{prefix}}/docs/{id}": {
      "parameters": [ { "$ref": "#/components/parameters/id" } ],
      "get": { "summary": "Get a document by ID", "responses": { "200": { "description": "Document retrieved successfully" }, "404": { "description": "Document not found" } } },
      "patch": { "summary": "Update a document by ID", "requestBody": { "content": { "application/json": { "schema": { "$ref": "#/components/schemas/UpdateDocument" } } } },
        "responses": { "200": { "description": "Document updated successfully" }, "400": { "description": "Bad request - validation failed" }, "404": { "description": "Document not found" } } },
      "delete": { "summary": "Soft delete a document by ID (set status to archived)",
        "responses": { "200": { "description": "Document soft deleted successfully" }, "404": { "description": "Document not found" } } }
    },
    "{{prefix}}/docs/{id}/restore": { "post": { "summary": "Restore an archived document to draft", "parameters": [ { "$ref": "#/components/parameters/id" } ],
      "responses": { "200": { "description": "Document restored successfully" }, "404": { "description": "Document not found" } } } },
    "{{prefix}}/health": { "get": { "summary": "Health check endpoint", "responses": { "200": { "description": "Application is healthy" }, "503": { "description": "A dependency is down" } } } },
    "{{prefix}}/health/ping": { "get": { "summary": "Simple ping endpoint", "responses": { "200": { "description": "Pong response" } } } },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } },
    "/metrics": { "get": { "summary": "Prometheus metrics", "responses": { "200": { "description": "metrics in text exposition format" } } } }
  }
}`
