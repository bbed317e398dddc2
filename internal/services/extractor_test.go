package services

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"

	"cvscreener/internal/models"
)

func buildDOCX(t *testing.T, paragraphs []string) []byte {
	t.Helper()

	var body strings.Builder
	body.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	body.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for _, p := range paragraphs {
		body.WriteString(`<w:p><w:r><w:t>` + p + `</w:t></w:r></w:p>`)
	}
	body.WriteString(`</w:body></w:document>`)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	f, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create zip entry: %v", err)
	}
	if _, err := f.Write([]byte(body.String())); err != nil {
		t.Fatalf("write zip entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}

	return buf.Bytes()
}

func TestExtractDOCXParagraphs(t *testing.T) {
	extractor := NewExtractorService()

	doc := &models.RawDocument{
		FileName: "cv.docx",
		Format:   models.FormatDOCX,
		Bytes:    buildDOCX(t, []string{"Jane Doe", "Work Experience", "Led a platform team."}),
	}

	result := extractor.Extract(doc)
	if !result.Succeeded {
		t.Fatalf("expected extraction to succeed, got failure: %s", result.FailureReason)
	}

	expected := "Jane Doe\nWork Experience\nLed a platform team.\n"
	if result.Text != expected {
		t.Fatalf("unexpected text: %q", result.Text)
	}
}

func TestExtractTXTUTF8(t *testing.T) {
	extractor := NewExtractorService()

	doc := &models.RawDocument{
		FileName: "cv.txt",
		Format:   models.FormatTXT,
		Bytes:    []byte("Señor Developer\nExperience: 5 years"),
	}

	result := extractor.Extract(doc)
	if !result.Succeeded {
		t.Fatalf("expected extraction to succeed: %s", result.FailureReason)
	}
	if !strings.Contains(result.Text, "Señor Developer") {
		t.Fatalf("unexpected text: %q", result.Text)
	}
}

func TestExtractTXTLatin1Fallback(t *testing.T) {
	extractor := NewExtractorService()

	// 0xE9 is é in Latin-1 and invalid as a standalone UTF-8 byte.
	doc := &models.RawDocument{
		FileName: "cv.txt",
		Format:   models.FormatTXT,
		Bytes:    []byte{'R', 0xE9, 's', 'u', 'm', 0xE9},
	}

	result := extractor.Extract(doc)
	if !result.Succeeded {
		t.Fatalf("expected fallback decode to succeed: %s", result.FailureReason)
	}
	if result.Text != "Résumé" {
		t.Fatalf("unexpected decoded text: %q", result.Text)
	}
}

func TestExtractFailuresNeverPanic(t *testing.T) {
	extractor := NewExtractorService()

	cases := []struct {
		name string
		doc  *models.RawDocument
	}{
		{
			name: "empty file",
			doc:  &models.RawDocument{FileName: "empty.pdf", Format: models.FormatPDF},
		},
		{
			name: "corrupt pdf",
			doc:  &models.RawDocument{FileName: "bad.pdf", Format: models.FormatPDF, Bytes: []byte("%PDF-1.4 garbage")},
		},
		{
			name: "corrupt docx",
			doc:  &models.RawDocument{FileName: "bad.docx", Format: models.FormatDOCX, Bytes: []byte("not a zip")},
		},
		{
			name: "unsupported format",
			doc:  &models.RawDocument{FileName: "cv.odt", Format: "odt", Bytes: []byte("text")},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := extractor.Extract(tc.doc)
			if result.Succeeded {
				t.Fatal("expected extraction failure")
			}
			if result.FailureReason == "" {
				t.Fatal("expected a failure reason")
			}
			if result.Text != "" {
				t.Fatalf("text must be empty on failure, got %q", result.Text)
			}
		})
	}
}
