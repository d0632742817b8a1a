package http

import (
	"encoding/json"
	"net/http"
)

// Error codes used in the error envelope.
const (
	codeInvalidYear        = "invalid_year"
	codeDatasetUnavailable = "dataset_unavailable"
	codeTimeout            = "timeout"
	codeInternal           = "internal"
	codeNotFound           = "not_found"
)

type dataEnvelope struct {
	Data any `json:"data"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	writeContent(w, status, "application/json", v)
}

func writeContent(w http.ResponseWriter, status int, contentType string, v any) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // client may have gone away
}

func writeData(w http.ResponseWriter, v any) {
	writeJSON(w, http.StatusOK, dataEnvelope{Data: v})
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorEnvelope{Error: errorBody{Code: code, Message: message}})
}
