package models

import "strings"

type DocumentFormat string

const (
	FormatPDF  DocumentFormat = "pdf"
	FormatDOCX DocumentFormat = "docx"
	FormatTXT  DocumentFormat = "txt"
)

// FormatFromFileName maps a file name to a supported format using its
// extension. The second return value is false for unsupported extensions.
func FormatFromFileName(name string) (DocumentFormat, bool) {
	idx := strings.LastIndex(name, ".")
	if idx < 0 {
		return "", false
	}

	switch strings.ToLower(name[idx+1:]) {
	case "pdf":
		return FormatPDF, true
	case "docx":
		return FormatDOCX, true
	case "txt":
		return FormatTXT, true
	default:
		return "", false
	}
}

// RawDocument is an uploaded candidate document. It is immutable: the
// pipeline reads the bytes once and never writes back.
type RawDocument struct {
	FileName string
	Format   DocumentFormat
	Bytes    []byte
}

// ExtractedText is the result of text extraction for one document.
// Text is empty if and only if Succeeded is false.
type ExtractedText struct {
	Source        *RawDocument
	Text          string
	Succeeded     bool
	FailureReason string
}
