package utils

import (
	"encoding/json"
	"net/http"
)

// JSON writes data with the given status. Timer and question polls change
// every second, so no response may be cached.
func JSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(statusCode)
	if data == nil {
		return
	}
	json.NewEncoder(w).Encode(data)
}
