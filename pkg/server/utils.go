package server

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/aleksaelezovic/sparqlconsole/pkg/render"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// writeError writes an error response
func (s *Server) writeError(w http.ResponseWriter, statusCode int, message string) {
	log.Printf("Error: %s", message)
	s.writeJSON(w, statusCode, errorBody{Error: errorDetail{Code: statusCode, Message: message}})
}

func (s *Server) writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to write response: %v", err)
	}
}

func writeHTML(w http.ResponseWriter, statusCode int, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)
	_, _ = w.Write([]byte(body)) // #nosec G104 - error writing response is logged elsewhere if needed
}

// sessionID parses the {id} path value
func (s *Server) sessionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid result id")
		return uuid.Nil, false
	}
	return id, true
}

// negotiateFormat determines the export format based on the Accept header
func (s *Server) negotiateFormat(acceptHeader string) render.Format {
	accept := strings.ToLower(acceptHeader)

	if strings.Contains(accept, "application/sparql-results+xml") {
		return render.FormatXML
	}
	if strings.Contains(accept, "application/sparql-results+json") {
		return render.FormatJSON
	}
	if strings.Contains(accept, "text/csv") {
		return render.FormatCSV
	}
	if strings.Contains(accept, "text/tab-separated-values") {
		return render.FormatTSV
	}
	if strings.Contains(accept, "application/graphml+xml") {
		return render.FormatGraphML
	}
	if strings.Contains(accept, "application/json") {
		return render.FormatJSON
	}
	if strings.Contains(accept, "text/xml") || strings.Contains(accept, "application/xml") {
		return render.FormatXML
	}

	return render.FormatJSON
}

func resultPath(id uuid.UUID) string {
	return "/results/" + id.String()
}
