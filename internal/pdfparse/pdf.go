package pdfparse

import (
	"bytes"
	"fmt"
	"log"
	"strings"

	"github.com/ledongthuc/pdf"

	"zipfit/internal/document"
	"zipfit/internal/pkg/pdfextract"
	"zipfit/internal/tablenorm"
)

// ExtractPDF rebuilds each page as markdown with detected tables in place
// and classifies its lines into elements. If layout extraction fails or finds
// nothing, the plain text of each page is used instead, and when no page
// yields text the whole-document extractor is tried once as page 1.
func ExtractPDF(data []byte, keywords []string) ([]document.Element, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}
	elements, err := extractLayout(data, keywords)
	if err != nil {
		log.Printf("pdf layout extraction failed, using plain text: %v", err)
	}
	if len(elements) > 0 {
		return elements, nil
	}
	return extractPlainText(data)
}

func extractPlainText(data []byte) ([]document.Element, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf failed: %w", err)
	}

	var elements []document.Element
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("read pdf page %d failed: %w", i, err)
		}
		if text = tablenorm.CleanText(text); strings.TrimSpace(text) == "" {
			continue
		}
		elements = append(elements, ExtractElements(text, i)...)
	}
	if len(elements) > 0 {
		return elements, nil
	}

	text, err := pdfextract.ExtractText(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("extract pdf text failed: %w", err)
	}
	return ExtractElements(tablenorm.CleanText(text), 1), nil
}
