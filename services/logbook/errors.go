package logbook

import (
	"encoding/json"
	"fmt"
)

// APIRequestError is a non-2xx provider reply other than an unrecoverable 401.
// Body holds the decoded JSON when the reply was JSON, otherwise the raw text.
type APIRequestError struct {
	StatusCode int
	Body       any
}

func newAPIRequestError(status int, body []byte) *APIRequestError {
	var decoded any
	err := json.Unmarshal(body, &decoded)
	if err != nil {
		decoded = string(body)
	}
	return &APIRequestError{
		StatusCode: status,
		Body:       decoded,
	}
}

func (e *APIRequestError) Error() string {
	switch body := e.Body.(type) {
	case string:
		if body == "" {
			body = "Unknown error"
		}
		return fmt.Sprintf("API request failed (%d): %s", e.StatusCode, body)
	default:
		encoded, _ := json.Marshal(body)
		return fmt.Sprintf("API request failed (%d): %s", e.StatusCode, encoded)
	}
}
