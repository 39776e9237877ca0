package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wonny/liga/backend/internal/contracts"
	"github.com/wonny/liga/backend/pkg/logger"
)

// maxBodyBytes caps request bodies
const maxBodyBytes = 4 << 20

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// respondErr maps an error to a status: invalid input → 422, not found → 404, anything else → 500
func respondErr(w http.ResponseWriter, log *logger.Logger, err error, message string) {
	switch {
	case contracts.IsInvalidInput(err):
		respondJSON(w, http.StatusUnprocessableEntity, inputErrorBody(err))
	case errors.Is(err, contracts.ErrNotFound):
		respondError(w, http.StatusNotFound, message+": not found")
	default:
		log.WithError(err).Error(message)
		respondError(w, http.StatusInternalServerError, message)
	}
}

// inputErrorBody tells the caller which record and field was rejected
func inputErrorBody(err error) map[string]interface{} {
	body := map[string]interface{}{"error": err.Error()}

	var inputErr *contracts.InputError
	if errors.As(err, &inputErr) {
		body["record"] = inputErr.Record
		body["field"] = inputErr.Field
		if inputErr.Index >= 0 {
			body["index"] = inputErr.Index
		}
	}
	return body
}

// decodeJSON reads a JSON body; a malformed body is an input error
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return &contracts.InputError{Record: "request", Index: -1, Field: "body", Message: err.Error()}
	}
	return nil
}
