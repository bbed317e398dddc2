package services

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"golang.org/x/text/encoding/charmap"

	"cvscreener/internal/models"
)

// ExtractorService converts the raw bytes of a supported document format
// into plain text. It never fails the batch: any format-specific problem
// is reported through ExtractedText.Succeeded and FailureReason.
type ExtractorService interface {
	Extract(doc *models.RawDocument) models.ExtractedText
}

type extractorService struct{}

func NewExtractorService() ExtractorService {
	return &extractorService{}
}

func (e *extractorService) Extract(doc *models.RawDocument) models.ExtractedText {
	text, err := e.extract(doc)
	if err != nil {
		return models.ExtractedText{
			Source:        doc,
			Succeeded:     false,
			FailureReason: err.Error(),
		}
	}

	if strings.TrimSpace(text) == "" {
		return models.ExtractedText{
			Source:        doc,
			Succeeded:     false,
			FailureReason: fmt.Sprintf("no text content found in %s document", doc.Format),
		}
	}

	return models.ExtractedText{
		Source:    doc,
		Text:      text,
		Succeeded: true,
	}
}

func (e *extractorService) extract(doc *models.RawDocument) (string, error) {
	if len(doc.Bytes) == 0 {
		return "", fmt.Errorf("document %q is empty", doc.FileName)
	}

	switch doc.Format {
	case models.FormatPDF:
		return extractPDF(doc.Bytes)
	case models.FormatDOCX:
		return extractDOCX(doc.Bytes)
	case models.FormatTXT:
		return extractTXT(doc.Bytes), nil
	default:
		return "", fmt.Errorf("unsupported document format %q", doc.Format)
	}
}

// extractPDF concatenates per-page plain text with page markers. The pdf
// library panics on some corrupt streams, so the whole walk runs under a
// recover that converts the panic into an extraction failure.
func extractPDF(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("failed to parse PDF: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}

	var textBuilder strings.Builder
	totalPage := reader.NumPage()

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := reader.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		pageText, err := page.GetPlainText(nil)
		if err != nil {
			// A single unreadable page should not sink the document.
			continue
		}

		textBuilder.WriteString(fmt.Sprintf("--- Page %d ---\n", pageIndex))
		textBuilder.WriteString(pageText)
		textBuilder.WriteString("\n\n")
	}

	return textBuilder.String(), nil
}

// extractDOCX reads word/document.xml out of the OOXML container and
// joins paragraph runs with newlines. No library in use here: the format
// is a zip of XML and the two elements we need (w:p, w:t) are stable.
func extractDOCX(data []byte) (string, error) {
	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open DOCX container: %w", err)
	}

	var document *zip.File
	for _, f := range archive.File {
		if f.Name == "word/document.xml" {
			document = f
			break
		}
	}
	if document == nil {
		return "", fmt.Errorf("DOCX container has no word/document.xml")
	}

	rc, err := document.Open()
	if err != nil {
		return "", fmt.Errorf("failed to read DOCX body: %w", err)
	}
	defer rc.Close()

	var textBuilder strings.Builder
	decoder := xml.NewDecoder(rc)

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to decode DOCX body: %w", err)
		}

		switch elem := token.(type) {
		case xml.StartElement:
			switch elem.Name.Local {
			case "t":
				var run string
				if err := decoder.DecodeElement(&run, &elem); err != nil {
					return "", fmt.Errorf("failed to decode DOCX text run: %w", err)
				}
				textBuilder.WriteString(run)
			case "tab":
				textBuilder.WriteString("\t")
			case "br":
				textBuilder.WriteString("\n")
			}
		case xml.EndElement:
			if elem.Name.Local == "p" {
				textBuilder.WriteString("\n")
			}
		}
	}

	return textBuilder.String(), nil
}

// extractTXT decodes bytes as UTF-8 and falls back to Latin-1, which
// accepts any byte sequence. Decoding never fails.
func extractTXT(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}

	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		// Latin-1 maps every byte, keep the replacement-character path
		// anyway rather than returning an error.
		return strings.ToValidUTF8(string(data), "�")
	}

	return string(decoded)
}
