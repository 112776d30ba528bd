// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package apidoc

import (
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
)

const swaggerUIBase = "https://cdn.jsdelivr.net/npm/swagger-ui-dist@5"

var uiTemplate = template.Must(template.New("swagger").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>{{.Title}}</title>
  <link rel="stylesheet" href="{{.Base}}/swagger-ui.css">
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="{{.Base}}/swagger-ui-bundle.js"></script>
  <script>
    window.ui = SwaggerUIBundle({ url: {{.SpecURL}}, dom_id: "#swagger-ui" });
  </script>
</body>
</html>
`))

// SpecHandler serves the document as JSON. The document is encoded once.
func SpecHandler(doc *openapi3.T) http.HandlerFunc {
	body, err := json.Marshal(doc)
	if err != nil {
		panic(err)
	}

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write(body)
	}
}

// UIHandler serves a Swagger UI page that loads specURL.
func UIHandler(specURL string) http.HandlerFunc {
	data := struct {
		Title   string
		Base    string
		SpecURL string
	}{Title, swaggerUIBase, specURL}

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := uiTemplate.Execute(w, data); err != nil {
			slog.Error("failed to render api docs", "error", err)
		}
	}
}
