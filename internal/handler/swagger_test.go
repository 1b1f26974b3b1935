package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToOpenAPI3_RewritesRefsAndParameters(t *testing.T) {
	in := map[string]any{
		"schema": map[string]any{"$ref": "#/definitions/handler.Response"},
		"parameters": []any{
			map[string]any{"name": "pageSize", "in": "query", "type": "integer"},
			map[string]any{"name": "file", "in": "formData", "type": "file"},
		},
	}

	out := toOpenAPI3(in).(map[string]any)

	assert.Equal(t, "#/components/schemas/handler.Response", out["schema"].(map[string]any)["$ref"])
	params := out["parameters"].([]any)
	assert.Equal(t, map[string]any{"type": "integer"}, params[0].(map[string]any)["schema"])
	assert.Equal(t, "file", params[1].(map[string]any)["type"], "form parameters are left alone")
}

func TestServeOpenAPI3Spec(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/openapi.json", nil)
	req.Host = "ledger.test"
	rec := httptest.NewRecorder()

	require.NoError(t, ServeOpenAPI3Spec("/api")(e.NewContext(req, rec)))

	require.Equal(t, http.StatusOK, rec.Code)
	var spec OpenAPI3Spec
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &spec))
	assert.Equal(t, "3.0.3", spec.OpenAPI)
	require.Len(t, spec.Servers, 1)
	assert.Equal(t, "http://ledger.test/api", spec.Servers[0].URL)
	assert.Contains(t, spec.Paths, "/{entity}/{id}")
	assert.Contains(t, spec.Components, "schemas")
}
