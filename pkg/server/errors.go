package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/goliatone/go-qform/pkg/render"
	"github.com/goliatone/go-qform/pkg/session"
)

// StatusError pairs an error with the HTTP status it should produce.
type StatusError struct {
	Code int
	Err  error
}

func (e StatusError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.Code)
}

func (e StatusError) Unwrap() error { return e.Err }

// StatusCode defaults to 500.
func (e StatusError) StatusCode() int {
	if e.Code <= 0 {
		return http.StatusInternalServerError
	}
	return e.Code
}

func classify(err error) StatusError {
	var status StatusError
	switch {
	case errors.As(err, &status):
		return status
	case errors.Is(err, session.ErrNotFound), errors.Is(err, ErrUnknownQuestionnaire):
		return StatusError{Code: http.StatusNotFound, Err: err}
	case errors.Is(err, render.ErrMalformedAction), errors.Is(err, session.ErrUnknownAction):
		return StatusError{Code: http.StatusBadRequest, Err: err}
	default:
		return StatusError{Code: http.StatusInternalServerError, Err: err}
	}
}

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
