// SPDX-License-Identifier: MIT

package docs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"

	"github.com/ManuGH/snippets/internal/config"
	"github.com/ManuGH/snippets/internal/log"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	"gopkg.in/yaml.v3"
)

// MountPath is where the documentation is served.
const MountPath = "/docs"

// Enabled reports whether documentation is served for this configuration:
// everywhere except production.
func Enabled(acc *config.Accessor) bool {
	env, err := acc.String("app", "env")
	if err != nil {
		return false
	}
	return env != config.EnvProduction
}

// Handler serves a pre-rendered document.
type Handler struct {
	json []byte
	yaml []byte
	ui   []byte
}

// NewHandler renders doc as JSON and YAML once.
func NewHandler(doc *openapi3.T) (*Handler, error) {
	js, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("render openapi json: %w", err)
	}

	// JSON is valid YAML; decoding into a node keeps key order.
	var node yaml.Node
	if err := yaml.Unmarshal(js, &node); err != nil {
		return nil, fmt.Errorf("convert openapi to yaml: %w", err)
	}
	ys, err := yaml.Marshal(&node)
	if err != nil {
		return nil, fmt.Errorf("render openapi yaml: %w", err)
	}

	ui, err := renderUI(doc.Info.Title)
	if err != nil {
		return nil, err
	}
	return &Handler{json: js, yaml: ys, ui: ui}, nil
}

// Routes returns a router for mounting at MountPath.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.serve("text/html; charset=utf-8", h.ui))
	r.Get("/openapi.json", h.serve("application/json", h.json))
	r.Get("/openapi.yaml", h.serve("application/yaml", h.yaml))
	return r
}

func (h *Handler) serve(contentType string, body []byte) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", contentType)
		if _, err := w.Write(body); err != nil {
			logger := log.WithComponentFromContext(r.Context(), "docs")
			logger.Debug().Err(err).Msg("failed to write docs response")
		}
	}
}

var uiTemplate = template.Must(template.New("ui").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>{{.Title}}</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css">
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js" crossorigin></script>
  <script>
    window.onload = () => { window.ui = SwaggerUIBundle({ url: "{{.SpecURL}}", dom_id: "#swagger-ui" }); };
  </script>
</body>
</html>
`))

func renderUI(title string) ([]byte, error) {
	var buf bytes.Buffer
	err := uiTemplate.Execute(&buf, struct{ Title, SpecURL string }{title, MountPath + "/openapi.json"})
	if err != nil {
		return nil, fmt.Errorf("render docs ui: %w", err)
	}
	return buf.Bytes(), nil
}
