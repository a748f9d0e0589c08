// internal/app/system/httpjson/httpjson.go

// Package httpjson is the one place request/response JSON is encoded
// and decoded, so every endpoint speaks the same envelope.
//
// Errors are returned as:
//
//	{ "error": { "code": "duplicate_tag", "message": "…" } }
package httpjson

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// Stable machine-readable error codes the mobile client switches on.
const (
	CodeBadRequest            = "bad_request"
	CodeUnauthorized          = "unauthorized"
	CodeForbidden             = "forbidden"
	CodeNotFound              = "not_found"
	CodeDuplicateTag          = "duplicate_tag"
	CodeDuplicateEmail        = "duplicate_email"
	CodeAlreadyMember         = "already_member"
	CodeClassificationFailure = "classification_failure"
	CodeStoreUnavailable      = "store_unavailable"
)

// maxBodyBytes bounds JSON request bodies. Photo uploads use multipart
// and are limited separately by the detect handler.
const maxBodyBytes = 1 << 20

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

// Write encodes v as JSON with the given status.
func Write(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Error writes the error envelope.
func Error(w http.ResponseWriter, status int, code, message string) {
	Write(w, status, errorEnvelope{Error: errorBody{Code: code, Message: message}})
}

// Decode reads a JSON request body into dst. Unknown fields are
// rejected so client typos surface as 400s instead of silent zeroes.
func Decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	// A second value means trailing garbage after the JSON document.
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("request body must contain a single JSON object")
	}
	return nil
}
