// Package extract turns an uploaded itinerary document into plain text.
//
// Supported formats:
//   - .docx       Microsoft Word (archive/zip -> word/document.xml)
//   - .txt, .doc  read directly as text
package extract

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrEmptyDocument     = errors.New("document contains no text")
	ErrExtraction        = errors.New("text extraction failed")
	ErrTooLarge          = errors.New("document too large")
)

type Format string

const (
	FormatDocx Format = "docx"
	FormatDoc  Format = "doc"
	FormatTXT  Format = "txt"
)

// DefaultMaxSize bounds uploads when Config.MaxSize is zero.
const DefaultMaxSize = 20 << 20

type Config struct {
	MaxSize int64
	Logger  zerolog.Logger
}

type Extractor struct {
	maxSize int64
	log     zerolog.Logger
}

func New(cfg Config) *Extractor {
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = DefaultMaxSize
	}
	return &Extractor{maxSize: cfg.MaxSize, log: cfg.Logger}
}

// Detect returns the document format for a file name.
func Detect(name string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".docx":
		return FormatDocx, nil
	case ".doc":
		return FormatDoc, nil
	case ".txt":
		return FormatTXT, nil
	default:
		return "", fmt.Errorf("%w: %q (use .docx, .doc or .txt)", ErrUnsupportedFormat, ext)
	}
}

// Extract returns the plain text of the named document.
func (e *Extractor) Extract(ctx context.Context, name string, data []byte) (string, error) {
	format, err := Detect(name)
	if err != nil {
		return "", err
	}
	if int64(len(data)) > e.maxSize {
		return "", fmt.Errorf("%w: %d bytes (max %d)", ErrTooLarge, len(data), e.maxSize)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	e.log.Debug().Str("file", name).Str("format", string(format)).Int("bytes", len(data)).Msg("extracting document")

	var text string
	switch format {
	case FormatDocx:
		text, err = docxText(data)
		if err != nil {
			return "", fmt.Errorf("%w: %s: %w", ErrExtraction, name, err)
		}
	default:
		text = plainText(data)
	}

	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: %s", ErrEmptyDocument, name)
	}
	return text, nil
}

func plainText(data []byte) string {
	if utf8.Valid(data) {
		return strings.TrimPrefix(string(data), "\ufeff")
	}
	return strings.ToValidUTF8(string(data), "\uFFFD")
}
