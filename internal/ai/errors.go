package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	genai "google.golang.org/genai"
)

var (
	ErrEmptyResponse   = errors.New("model returned an empty response")
	ErrMalformedOutput = errors.New("model output is not valid JSON for the package schema")
	ErrRateLimited     = errors.New("rate limit exceeded")
	ErrAuth            = errors.New("API key authentication failed")
	ErrContentFiltered = errors.New("content blocked by safety filters")
	ErrNoImageReturned = errors.New("no image was generated")
	ErrUnknown         = errors.New("AI request failed")
)

// classify maps a transport error from the model API onto the adapter taxonomy.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrUnknown, err)
	}
	code := 0
	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
		code = apiErr.Code
	case errors.As(err, &apiErrPtr) && apiErrPtr != nil:
		code = apiErrPtr.Code
	}
	msg := err.Error()
	switch {
	case code == 429 || strings.Contains(msg, "429") || strings.Contains(msg, "RESOURCE_EXHAUSTED"):
		return fmt.Errorf("%w: %w", ErrRateLimited, err)
	case code == 401 || code == 403 || strings.Contains(msg, "401") || strings.Contains(msg, "403") ||
		strings.Contains(msg, "PERMISSION_DENIED") || strings.Contains(msg, "UNAUTHENTICATED"):
		return fmt.Errorf("%w: %w", ErrAuth, err)
	case strings.Contains(msg, "SAFETY"):
		return fmt.Errorf("%w: %w", ErrContentFiltered, err)
	}
	return fmt.Errorf("%w: %w", ErrUnknown, err)
}

// blocked reports why a response was withheld by safety filtering, or "".
func blocked(res *genai.GenerateContentResponse) string {
	if res == nil {
		return ""
	}
	if res.PromptFeedback != nil && res.PromptFeedback.BlockReason != "" {
		return string(res.PromptFeedback.BlockReason)
	}
	for _, c := range res.Candidates {
		if c == nil {
			continue
		}
		r := string(c.FinishReason)
		if strings.Contains(r, "SAFETY") || strings.Contains(r, "PROHIBITED") || r == "BLOCKLIST" || r == "SPII" {
			return r
		}
	}
	return ""
}
