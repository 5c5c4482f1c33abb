package ai

import (
	"context"
	"errors"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

// Diagnose turns an OpenAI failure into a short human-readable hint.
func Diagnose(err error) string {
	if err == nil {
		return ""
	}

	status := 0
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	case errors.Is(err, context.Canceled):
		return "Request canceled by the caller."
	case errors.Is(err, context.DeadlineExceeded):
		return "OpenAI did not answer in time."
	case errors.Is(err, ErrNoChoices):
		return "OpenAI returned no choices."
	}

	switch {
	case status == http.StatusUnauthorized:
		return "Invalid OpenAI API key."
	case status == http.StatusNotFound:
		return "Model not found."
	case status == http.StatusTooManyRequests:
		return "OpenAI rate limit or quota exceeded."
	case status == http.StatusBadRequest:
		return "Malformed request to OpenAI."
	case status >= 500:
		return "OpenAI internal error."
	}
	return "Unknown OpenAI error: " + err.Error()
}
