package common

import (
	"net/http"

	"github.com/goccy/go-json"
)

// maxBodyBytes caps request bodies when the caller passes no limit
const maxBodyBytes = 1 << 20

// APIResponse is the success envelope. Errors use pkg/errors.ErrorResponse,
// which shares the success flag.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
}

// RespondJSON writes data inside the envelope. Success follows the status
// class.
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(APIResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
	})
}

// ParseJSONBody decodes the request body into v, rejecting unknown fields
// and anything past maxBytes. An empty body leaves v untouched.
func ParseJSONBody(r *http.Request, v interface{}, maxBytes int64) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	if maxBytes <= 0 {
		maxBytes = maxBodyBytes
	}
	r.Body = http.MaxBytesReader(nil, r.Body, maxBytes)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}
