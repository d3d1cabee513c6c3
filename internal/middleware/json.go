package middleware

import (
	"encoding/json"
	"net/http"
)

// jsonEncode writes the response envelope for middleware that answer
// requests directly (guards, recovery) without going through a handler.
func jsonEncode(w http.ResponseWriter, value any) error {
	return json.NewEncoder(w).Encode(value)
}
