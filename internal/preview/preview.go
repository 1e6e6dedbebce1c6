// Package preview renders downloaded documents as plain text for the
// terminal document pane.
package preview

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

const maxPreviewBytes = 64 << 10

// Text extracts a plain-text preview from a downloaded file. PDFs go
// through the pdf reader; anything else is treated as text if it decodes
// as UTF-8.
func Text(path string) (string, error) {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return pdfText(path)
	}
	return plainText(path)
}

func pdfText(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening pdf: %w", err)
	}
	defer f.Close()

	reader, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extracting pdf text: %w", err)
	}
	data, err := io.ReadAll(io.LimitReader(reader, maxPreviewBytes))
	if err != nil {
		return "", fmt.Errorf("reading pdf text: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func plainText(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxPreviewBytes))
	if err != nil {
		return "", err
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("no text preview for %s", filepath.Base(path))
	}
	return strings.TrimSpace(string(data)), nil
}
