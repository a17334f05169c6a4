package sources

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/lysyi3m/news-comb/app/fetch"
)

// ErrorResponse is the payload returned in place of a result on failure.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Render serializes a result, or the error envelope when err is set.
// Results are indented with two spaces; the envelope is compact.
func Render(v any, err error) string {
	if err != nil {
		return RenderError(err)
	}

	data, encodeErr := encode(v, "  ")
	if encodeErr != nil {
		return RenderError(encodeErr)
	}
	return data
}

func RenderError(err error) string {
	data, encodeErr := encode(ErrorResponse{Error: ErrorMessage(err)}, "")
	if encodeErr != nil {
		return `{"error":"An unknown error occurred."}`
	}
	return data
}

// ErrorMessage maps an error to its user-facing message.
func ErrorMessage(err error) string {
	var (
		unknownSource *UnknownSourceError
		invalid       *InvalidInputError
		statusErr     *fetch.StatusError
		timeoutErr    *fetch.TimeoutError
		unexpected    *fetch.UnexpectedError
	)

	switch {
	case err == nil:
		return ""
	case errors.As(err, &unknownSource):
		return unknownSource.Error()
	case errors.As(err, &invalid):
		return invalid.Error()
	case errors.As(err, &statusErr):
		switch statusErr.Code {
		case http.StatusNotFound:
			return "Resource not found. Please verify your query."
		case http.StatusTooManyRequests:
			return "Rate limit exceeded. Please wait before retrying."
		case http.StatusServiceUnavailable:
			return "Service temporarily unavailable. Try again shortly."
		default:
			return fmt.Sprintf("API request failed with status %d.", statusErr.Code)
		}
	case errors.As(err, &timeoutErr):
		return "Request timed out. The service may be slow. Try again."
	case errors.As(err, &unexpected):
		return "Unexpected error: " + unexpected.Error()
	default:
		return "Unexpected error: " + err.Error()
	}
}

// StatusCode maps an error to the HTTP status the REST surface answers with.
func StatusCode(err error) int {
	var (
		unknownSource *UnknownSourceError
		invalid       *InvalidInputError
		timeoutErr    *fetch.TimeoutError
	)

	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &unknownSource), errors.As(err, &invalid):
		return http.StatusBadRequest
	case errors.As(err, &timeoutErr):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

func encode(v any, indent string) (string, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", indent)

	if err := encoder.Encode(v); err != nil {
		return "", fmt.Errorf("failed to encode payload: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
