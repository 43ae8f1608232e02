package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"talentgate/internal/common"
)

type ErrorCollector interface {
	RecordError(code string)
}

var collector ErrorCollector

func SetErrorCollector(c ErrorCollector) {
	collector = c
}

func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

type errorBody struct {
	Code    common.Code       `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
	Step    string            `json:"step,omitempty"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

func Error(w http.ResponseWriter, err error) {
	code := common.CodeOf(err)
	body := errorBody{Code: code, Message: "internal error"}
	var appErr *common.Error
	if errors.As(err, &appErr) {
		body.Message = appErr.Message
		body.Fields = appErr.Fields
		body.Step = appErr.Step
	}
	if collector != nil {
		collector.RecordError(string(code))
	}
	JSON(w, statusFor(code), errorEnvelope{Error: body})
}

func statusFor(code common.Code) int {
	switch code {
	case common.CodeValidation, common.CodeMissingRequiredNote:
		return http.StatusBadRequest
	case common.CodeUnauthorized:
		return http.StatusUnauthorized
	case common.CodeForbidden:
		return http.StatusForbidden
	case common.CodeNotFound:
		return http.StatusNotFound
	case common.CodeConflict, common.CodeInvalidTransition, common.CodeDuplicateApplication, common.CodeDuplicatePipelineRecord:
		return http.StatusConflict
	case common.CodeRateLimited:
		return http.StatusTooManyRequests
	case common.CodeStoreFailure, common.CodePartialFailure:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
