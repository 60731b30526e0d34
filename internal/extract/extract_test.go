package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildDocx(t *testing.T, body string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		body + `</w:body></w:document>`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func newExtractor() *Extractor {
	return New(Config{Logger: zerolog.Nop()})
}

func TestExtract_Text(t *testing.T) {
	text, err := newExtractor().Extract(context.Background(), "trip.txt",
		[]byte("Day 1: Arrive in Ladakh. Acclimatize."))
	require.NoError(t, err)
	assert.Equal(t, "Day 1: Arrive in Ladakh. Acclimatize.", text)
}

func TestExtract_DocReadAsText(t *testing.T) {
	text, err := newExtractor().Extract(context.Background(), "TRIP.DOC", []byte("\ufeffSpiti Valley"))
	require.NoError(t, err)
	assert.Equal(t, "Spiti Valley", text)
}

func TestExtract_Docx(t *testing.T) {
	data := buildDocx(t,
		`<w:p><w:r><w:t>Ladakh Expedition</w:t></w:r></w:p>`+
			`<w:p><w:r><w:t xml:space="preserve">Day 1: </w:t></w:r><w:r><w:t>Arrive</w:t><w:tab/><w:t>Leh</w:t></w:r></w:p>`)

	text, err := newExtractor().Extract(context.Background(), "itinerary.docx", data)
	require.NoError(t, err)
	assert.Equal(t, "Ladakh Expedition\nDay 1: Arrive\tLeh\n", text)
}

func TestExtract_UnsupportedFormat(t *testing.T) {
	for _, name := range []string{"trip.pdf", "trip.md", "trip", "trip.docx.bak"} {
		_, err := newExtractor().Extract(context.Background(), name, []byte("Day 1"))
		assert.ErrorIs(t, err, ErrUnsupportedFormat, name)
	}
}

func TestExtract_EmptyDocument(t *testing.T) {
	_, err := newExtractor().Extract(context.Background(), "blank.txt", []byte(" \n\t "))
	assert.ErrorIs(t, err, ErrEmptyDocument)

	_, err = newExtractor().Extract(context.Background(), "blank.docx", buildDocx(t, `<w:p></w:p>`))
	assert.ErrorIs(t, err, ErrEmptyDocument)
}

func TestExtract_CorruptDocx(t *testing.T) {
	_, err := newExtractor().Extract(context.Background(), "broken.docx", []byte("not a zip"))
	assert.ErrorIs(t, err, ErrExtraction)
}

func TestExtract_DocxWithoutBody(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	_, err := zw.Create("word/styles.xml")
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	_, err = newExtractor().Extract(context.Background(), "odd.docx", buf.Bytes())
	assert.ErrorIs(t, err, ErrExtraction)
}

func TestExtract_TooLarge(t *testing.T) {
	e := New(Config{MaxSize: 4, Logger: zerolog.Nop()})
	_, err := e.Extract(context.Background(), "trip.txt", []byte("Day 1: ride"))
	assert.ErrorIs(t, err, ErrTooLarge)
}
