package handlers

import (
	"encoding/json"
	"net/http"

	log "github.com/sirupsen/logrus"
)

type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    int    `json:"code"`
}

// sendError writes a JSON error body. err is shown to the client, so callers
// pass errors without locations.
func sendError(w http.ResponseWriter, logger log.FieldLogger, message string, err error, code int) {
	entry := logger.WithField(`code`, code)
	response := ErrorResponse{
		Message: message,
		Code:    code,
	}
	if err != nil {
		entry = entry.WithError(err)
		response.Error = err.Error()
	}
	if code >= http.StatusInternalServerError {
		entry.Error(message)
	} else {
		entry.Warn(message)
	}

	writeJSON(w, code, response)
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set(`Content-Type`, `application/json`)
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.WithError(err).Error(`failed to encode response`)
	}
}
