package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/GGyongfeng/HuiXueJiaoPei/internal/domain"
)

// envelope is the response shape every endpoint returns: a status code, a
// message, and the payload (null on failure).
type envelope struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(body)
	if err != nil {
		_, _ = w.Write([]byte(`{"code":500,"message":"internal error","data":null}`))
		return
	}
	_, _ = w.Write(payload)
}

func writeData(w http.ResponseWriter, message string, data any) {
	writeJSON(w, http.StatusOK, envelope{Code: 0, Message: message, Data: data})
}

func writeFailure(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{Code: status, Message: message, Data: nil})
}

// writeDomainError translates service errors into response envelopes.
// Unrecognized errors are reported generically; internals never leak.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrOrderNotFound):
		writeFailure(w, http.StatusNotFound, "order not found or deleted")
	case errors.Is(err, domain.ErrOrderCodeTaken):
		writeFailure(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrOrderCodeRequired),
		errors.Is(err, domain.ErrSubjectsRequired),
		errors.Is(err, domain.ErrStaffRequired),
		errors.Is(err, domain.ErrTeacherRequired),
		errors.Is(err, domain.ErrEmptyUpdate),
		errors.Is(err, domain.ErrInvalidID):
		writeFailure(w, http.StatusBadRequest, err.Error())
	default:
		writeFailure(w, http.StatusInternalServerError, "internal error")
	}
}
