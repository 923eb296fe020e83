package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"GOTOURS_BACK-END/internal/dto"
	"GOTOURS_BACK-END/internal/logging"
	"GOTOURS_BACK-END/internal/services"
)

// maxJSONBody caps request bodies decoded by DecodeJSONRequest.
const maxJSONBody = 1 << 20

// WriteJSONResponse writes a JSON response to the HTTP response writer
func WriteJSONResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// WriteErrorResponse writes an error response in the standard envelope
func WriteErrorResponse(w http.ResponseWriter, status int, errMsg, message string) {
	WriteJSONResponse(w, status, dto.ErrorResponse{Error: errMsg, Message: message})
}

// WriteServiceError maps a service error to its HTTP status. Internal
// errors are logged with their cause and answered with a generic message.
func WriteServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var se *services.Error
	if !errors.As(err, &se) {
		se = &services.Error{Kind: services.KindInternal, Message: "unexpected error", Err: err}
	}

	status := StatusForKind(se.Kind)
	if status == http.StatusInternalServerError {
		logging.FromContext(r.Context()).Error().Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("request failed")
		WriteJSONResponse(w, status, dto.ErrorResponse{
			Error:   http.StatusText(status),
			Message: "Something went wrong, please try again later",
		})
		return
	}

	WriteJSONResponse(w, status, dto.ErrorResponse{
		Error:   http.StatusText(status),
		Message: se.Message,
		Code:    string(se.Reason),
		Fields:  se.Fields,
	})
}

// StatusForKind returns the HTTP status for a service error kind
func StatusForKind(kind services.Kind) int {
	switch kind {
	case services.KindNotFound:
		return http.StatusNotFound
	case services.KindUnauthorized:
		return http.StatusUnauthorized
	case services.KindForbidden:
		return http.StatusForbidden
	case services.KindConflict:
		return http.StatusConflict
	case services.KindValidation:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// DecodeJSONRequest decodes the request body into dst. On failure it writes
// a 400 response and returns the error; the caller just returns.
func DecodeJSONRequest(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		msg := "Request body must be valid JSON"
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			msg = "Request body must not be empty"
		case errors.As(err, &syntaxErr):
			msg = fmt.Sprintf("Malformed JSON at position %d", syntaxErr.Offset)
		case errors.As(err, &typeErr):
			msg = fmt.Sprintf("Field %q has the wrong type", typeErr.Field)
		case errors.As(err, &maxErr):
			msg = "Request body is too large"
		default:
			if err.Error() != "" {
				msg = err.Error()
			}
		}
		WriteErrorResponse(w, http.StatusBadRequest, "Invalid request body", msg)
		return err
	}
	return nil
}
