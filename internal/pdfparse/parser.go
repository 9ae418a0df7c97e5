package pdfparse

import (
	"errors"
	"path/filepath"
	"strings"

	"zipfit/internal/document"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported attachment format")
	ErrEmptyFile         = errors.New("empty attachment")
)

// Format identifies an attachment type by extension.
type Format string

const (
	FormatPDF      Format = "pdf"
	FormatXLSX     Format = "xlsx"
	FormatMarkdown Format = "md"
)

// DetectFormat maps a file name to a Format.
func DetectFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(name), ".")) {
	case "pdf":
		return FormatPDF, nil
	case "xlsx", "xlsm":
		return FormatXLSX, nil
	case "md", "markdown", "txt":
		return FormatMarkdown, nil
	}
	return "", ErrUnsupportedFormat
}

// Parser turns attachment bytes into document elements.
type Parser struct {
	headerKeywords []string
}

// New returns a Parser. headerKeywords drives spreadsheet header detection;
// nil selects the defaults.
func New(headerKeywords []string) *Parser {
	return &Parser{headerKeywords: headerKeywords}
}

// Parse dispatches on the file extension of name.
func (p *Parser) Parse(name string, data []byte) ([]document.Element, error) {
	format, err := DetectFormat(name)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}
	switch format {
	case FormatPDF:
		return ExtractPDF(data, p.headerKeywords)
	case FormatXLSX:
		return ExtractSpreadsheet(data, p.headerKeywords)
	default:
		return ExtractDocument(string(data)), nil
	}
}
