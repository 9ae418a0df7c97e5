package pdfextract

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ExtractText reads a whole PDF from r and returns its plain text with
// surrounding whitespace trimmed. A PDF without extractable text yields ""
// and a nil error, as does an empty reader.
func ExtractText(r io.Reader) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read pdf failed: %w", err)
	}
	if len(b) == 0 {
		return "", nil
	}
	pdfReader, err := pdf.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return "", fmt.Errorf("open pdf failed: %w", err)
	}
	plain, err := pdfReader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text failed: %w", err)
	}
	var out strings.Builder
	if _, err := io.Copy(&out, plain); err != nil {
		return "", fmt.Errorf("read pdf text failed: %w", err)
	}
	return strings.TrimSpace(out.String()), nil
}

// PageCount returns the number of pages in the PDF held by data.
func PageCount(data []byte) (int, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, fmt.Errorf("open pdf failed: %w", err)
	}
	return r.NumPage(), nil
}
