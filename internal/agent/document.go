package agent

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

const previewChars = 160

// ErrNotPDF is returned when an upload candidate is not a readable PDF.
var ErrNotPDF = errors.New("file is not a readable PDF")

var pdfMagic = []byte("%PDF-")

var whitespaceRun = regexp.MustCompile(`\s+`)

// Document summarizes a local PDF before it is uploaded.
type Document struct {
	Name    string
	Path    string
	Pages   int
	Preview string
}

// InspectDocument checks that path is a PDF with at least one page and pulls
// a short text preview from it.
func InspectDocument(path string) (Document, error) {
	doc := Document{Name: filepath.Base(path), Path: path}

	head, err := readHead(path, len(pdfMagic))
	if err != nil {
		return doc, err
	}
	if !bytes.Equal(head, pdfMagic) {
		return doc, fmt.Errorf("%s: %w", doc.Name, ErrNotPDF)
	}

	file, reader, err := pdf.Open(path)
	if err != nil {
		return doc, fmt.Errorf("%s: %w: %v", doc.Name, ErrNotPDF, err)
	}
	defer file.Close()

	doc.Pages = reader.NumPage()
	if doc.Pages == 0 {
		return doc, fmt.Errorf("%s: %w: no pages", doc.Name, ErrNotPDF)
	}

	// Scanned PDFs have no text layer; the backend may still cope, so a
	// missing preview is not an error.
	if content, err := reader.GetPlainText(); err == nil {
		var builder strings.Builder
		if _, err := io.Copy(&builder, io.LimitReader(content, 4*previewChars)); err == nil {
			doc.Preview = clipPreview(builder.String())
		}
	}
	return doc, nil
}

func readHead(path string, n int) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	buf := make([]byte, n)
	read, err := io.ReadFull(file, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return buf[:read], nil
}

func clipPreview(text string) string {
	text = strings.TrimSpace(whitespaceRun.ReplaceAllString(text, " "))
	runes := []rune(text)
	if len(runes) <= previewChars {
		return text
	}
	return strings.TrimSpace(string(runes[:previewChars-1])) + "…"
}
