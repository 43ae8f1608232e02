package common

import "errors"

type Code string

const (
	CodeValidation              Code = "validation"
	CodeNotFound                Code = "not_found"
	CodeUnauthorized            Code = "unauthorized"
	CodeForbidden               Code = "forbidden"
	CodeConflict                Code = "conflict"
	CodeRateLimited             Code = "rate_limited"
	CodeInvalidTransition       Code = "invalid_transition"
	CodeDuplicateApplication    Code = "duplicate_application"
	CodeDuplicatePipelineRecord Code = "duplicate_pipeline_record"
	CodeMissingRequiredNote     Code = "missing_required_note"
	CodeStoreFailure            Code = "store_failure"
	CodePartialFailure          Code = "partial_failure"
	CodeInternal                Code = "internal"
)

type Error struct {
	Code    Code              `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
	// Step names the already-committed step of a compound operation when
	// Code is CodePartialFailure, so callers can retry safely.
	Step string `json:"step,omitempty"`
	Err  error  `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewError(code Code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

func NewValidationError(message string, fields map[string]string) *Error {
	return &Error{Code: CodeValidation, Message: message, Fields: fields}
}

func NewPartialFailure(step, message string, err error) *Error {
	return &Error{Code: CodePartialFailure, Message: message, Step: step, Err: err}
}

func Is(err error, code Code) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// CodeOf extracts the discriminated code from any error, defaulting to
// CodeInternal for errors that did not originate in this module.
func CodeOf(err error) Code {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}
