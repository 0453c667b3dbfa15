package handlers

import (
	"encoding/json"
	"log"
	"net/http"
)

// writeJSON serializes v as the response body. An encode failure can
// only be logged: the status line and headers are already on the wire.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode response failed: method=%s path=%s err=%v", r.Method, r.URL.Path, err)
	}
}

// writeError emits the uniform {"error": msg} document all handlers use.
func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, map[string]string{"error": msg})
}
