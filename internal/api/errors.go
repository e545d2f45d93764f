package api

import (
	"encoding/json"
	"net/http"
	"strings"
)

// errorResponse is the body of every non-2xx reply. Error is the status
// text in snake case, e.g. "service_unavailable".
type errorResponse struct {
	Error     string `json:"error"`
	Detail    string `json:"detail,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // client may have gone away
		json.NewEncoder(w).Encode(v)
	}
}

// fail replies with status and echoes the request id so a client report can
// be matched to the server log.
func fail(w http.ResponseWriter, r *http.Request, status int, detail string) {
	id, _ := r.Context().Value(ctxKeyRequestID).(string)
	writeJSON(w, status, errorResponse{
		Error:     strings.ReplaceAll(strings.ToLower(http.StatusText(status)), " ", "_"),
		Detail:    detail,
		RequestID: id,
	})
}
