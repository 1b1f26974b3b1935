package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dafibh/ledger/ledger-backend/docs"
	"github.com/labstack/echo/v4"
	"github.com/swaggo/swag"
)

// OpenAPI3Spec is the subset of an OpenAPI 3.0 document derived from the swagger 2.0 one
type OpenAPI3Spec struct {
	OpenAPI    string         `json:"openapi"`
	Info       map[string]any `json:"info"`
	Servers    []Server       `json:"servers"`
	Paths      map[string]any `json:"paths"`
	Components map[string]any `json:"components,omitempty"`
}

// Server represents an OpenAPI 3.0 server
type Server struct {
	URL         string `json:"url"`
	Description string `json:"description"`
}

// toOpenAPI3 rewrites $ref targets to components/schemas and moves
// non-body parameter types under a schema object
func toOpenAPI3(data any) any {
	switch v := data.(type) {
	case map[string]any:
		_, hasIn := v["in"]
		_, hasName := v["name"]
		if hasIn && hasName {
			return toOpenAPI3Parameter(v)
		}

		result := make(map[string]any, len(v))
		for key, value := range v {
			if ref, ok := value.(string); ok && key == "$ref" {
				result[key] = strings.Replace(ref, "#/definitions/", "#/components/schemas/", 1)
				continue
			}
			result[key] = toOpenAPI3(value)
		}
		return result
	case []any:
		result := make([]any, len(v))
		for i, item := range v {
			result[i] = toOpenAPI3(item)
		}
		return result
	default:
		return data
	}
}

func toOpenAPI3Parameter(param map[string]any) map[string]any {
	if param["in"] == "body" || param["in"] == "formData" {
		return param
	}

	result := make(map[string]any)
	for _, field := range []string{"name", "in", "description", "required"} {
		if val, ok := param[field]; ok {
			result[field] = val
		}
	}

	schema := make(map[string]any)
	for _, field := range []string{"type", "format", "enum", "default", "minimum", "maximum", "items"} {
		if val, ok := param[field]; ok {
			schema[field] = toOpenAPI3(val)
		}
	}
	if len(schema) > 0 {
		result["schema"] = schema
	}
	return result
}

// ServeOpenAPI3Spec serves the generated swagger document converted to OpenAPI 3.0.
// The server URL is the requesting host joined with basePath.
func ServeOpenAPI3Spec(basePath string) echo.HandlerFunc {
	return func(c echo.Context) error {
		doc, err := swag.ReadDoc(docs.SwaggerInfo.InstanceName())
		if err != nil {
			return err
		}

		var swagger2 map[string]any
		if err := json.Unmarshal([]byte(doc), &swagger2); err != nil {
			return err
		}

		info, _ := swagger2["info"].(map[string]any)
		paths, _ := swagger2["paths"].(map[string]any)

		components := make(map[string]any)
		if secDefs, ok := swagger2["securityDefinitions"].(map[string]any); ok {
			components["securitySchemes"] = secDefs
		}
		if definitions, ok := swagger2["definitions"].(map[string]any); ok {
			components["schemas"] = toOpenAPI3(definitions)
		}

		req := c.Request()
		return c.JSON(http.StatusOK, OpenAPI3Spec{
			OpenAPI: "3.0.3",
			Info:    info,
			Servers: []Server{{
				URL:         c.Scheme() + "://" + req.Host + basePath,
				Description: "This server",
			}},
			Paths:      toOpenAPI3(paths).(map[string]any),
			Components: components,
		})
	}
}
