package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"talentgate/internal/common"
)

func decodeJSON(r *http.Request, target any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		return common.NewValidationError("invalid request body", map[string]string{"body": err.Error()})
	}
	return nil
}

// idFromPath extracts the path segment at index as a UUID; index counts
// non-empty segments, so for /pipeline/{id} the id sits at index 1.
func idFromPath(r *http.Request, index int) (common.UUID, error) {
	segments := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if index >= len(segments) {
		return "", common.NewValidationError("invalid path", map[string]string{"id": "id is required"})
	}
	parsed, err := common.ParseUUID(segments[index])
	if err != nil {
		return "", common.NewValidationError("invalid path", map[string]string{"id": "invalid uuid"})
	}
	return parsed, nil
}

func errUnauthorized() error {
	return common.NewError(common.CodeUnauthorized, "authentication required", nil)
}
