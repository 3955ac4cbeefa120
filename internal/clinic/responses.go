package clinic

import (
	"encoding/json"
	"net/http"

	"github.com/clinicore/clinic-backend/pkg/types"
)

// writeJSON writes a JSON response with the given status code
func (s *Service) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Errorf("Failed to encode response: %v", err)
	}
}

// writeMessage writes the map-shaped message body used by every
// informational response
func (s *Service) writeMessage(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"message": message})
}

// writeError maps a domain error onto an HTTP status and a message
// body. Internal causes are logged, never serialized.
func (s *Service) writeError(w http.ResponseWriter, err error) {
	ce, ok := err.(*types.ClinicError)
	if !ok {
		s.logger.Errorf("Unclassified error reached the HTTP surface: %v", err)
		s.writeMessage(w, http.StatusInternalServerError, "internal error")
		return
	}

	status := http.StatusInternalServerError
	switch ce.Type {
	case types.ErrorTypeAuthentication:
		status = http.StatusUnauthorized
	case types.ErrorTypeAuthorization:
		status = http.StatusForbidden
	case types.ErrorTypeNotFound:
		// A mutation aimed at a missing appointment is a bad request,
		// matching what legacy clients already handle. Missing doctors,
		// patients and records stay plain 404s.
		if ce.Code == types.ErrCodeAppointmentNotFound {
			status = http.StatusBadRequest
		} else {
			status = http.StatusNotFound
		}
	case types.ErrorTypeValidation:
		status = http.StatusBadRequest
	case types.ErrorTypeConflict:
		status = http.StatusConflict
	case types.ErrorTypeInternal, types.ErrorTypeTimeout:
		s.logger.Errorf("Internal failure: %v", ce)
	}

	s.writeJSON(w, status, map[string]string{
		"code":    ce.Code,
		"message": ce.Message,
	})
}

// decodeBody decodes a JSON request body into dst
func (s *Service) decodeBody(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return types.NewValidationError(types.ErrCodeInvalidInput, "invalid request body")
	}
	return nil
}
