package studio

import (
	"errors"
	"fmt"

	"github.com/thywilljoshua/itinerary-architect/internal/ai"
	"github.com/thywilljoshua/itinerary-architect/internal/extract"
)

var (
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrWrongStep       = errors.New("operation not available in this step")
	ErrInvalidValue    = errors.New("invalid value")
	ErrImageTooLarge   = errors.New("image file too large")
	ErrNotAnImage      = errors.New("file is not an image")
	ErrExportFailure   = errors.New("export failed")
)

func outOfRange(what string, i, n int) error {
	return fmt.Errorf("%w: %s %d (have %d)", ErrIndexOutOfRange, what, i, n)
}

// Describe turns an operation failure into the message shown to the user.
func Describe(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, extract.ErrUnsupportedFormat):
		return "Please upload a .docx, .doc, or .txt file."
	case errors.Is(err, extract.ErrEmptyDocument):
		return "The document appears to be empty. Please upload a file that contains the itinerary text."
	case errors.Is(err, extract.ErrTooLarge):
		return "The document is too large to process."
	case errors.Is(err, extract.ErrExtraction):
		return "Could not read the document. The file may be damaged or in an older format."
	case errors.Is(err, ai.ErrEmptyResponse):
		return "The AI model returned an empty response. Please try with a clearer document."
	case errors.Is(err, ai.ErrMalformedOutput):
		return "Failed to structure the document data correctly. The AI output was malformed."
	case errors.Is(err, ai.ErrRateLimited):
		return "Rate limit exceeded. Please wait a few seconds before trying again."
	case errors.Is(err, ai.ErrAuth):
		return "API Key authentication failed. Please select a valid key from a paid project."
	case errors.Is(err, ai.ErrContentFiltered):
		return "The request was blocked by safety filters. Try different wording or a different location."
	case errors.Is(err, ai.ErrNoImageReturned):
		return "No image was generated. The AI model might be busy or the prompt was restricted."
	case errors.Is(err, ai.ErrUnknown):
		return "An unexpected error occurred while contacting the AI service: " + err.Error()
	case errors.Is(err, ErrImageTooLarge):
		return "Image is too large. " + err.Error()
	case errors.Is(err, ErrNotAnImage):
		return "The selected file is not an image."
	case errors.Is(err, ErrExportFailure):
		return "Export failed. Please try again."
	}
	return err.Error()
}
