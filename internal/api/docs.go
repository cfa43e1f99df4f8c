package api

import (
	"encoding/json"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
)

// RegisterDocsRoutes serves the OpenAPI document as JSON.
func RegisterDocsRoutes(mux *http.ServeMux, doc *openapi3.T) {
	body, err := json.Marshal(doc)
	if err != nil {
		body = []byte(`{"error":"openapi document unavailable"}`)
	}

	mux.HandleFunc("GET /openapi.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	})
}
