package pdfparse

import (
	"bytes"
	"fmt"
	"regexp"

	"github.com/xuri/excelize/v2"

	"zipfit/internal/document"
	"zipfit/internal/tablenorm"
)

var defaultSheetName = regexp.MustCompile(`(?i)^sheet\d*$`)

// ExtractSpreadsheet converts every non-empty sheet of an XLSX workbook into
// a markdown table element. Sheets are numbered as pages from 1, and a sheet
// name other than the default is kept as the table's context title.
func ExtractSpreadsheet(data []byte, keywords []string) ([]document.Element, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open spreadsheet failed: %w", err)
	}
	defer func() { _ = f.Close() }()

	var elements []document.Element
	for i, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q failed: %w", sheet, err)
		}
		md := tablenorm.RowsToMarkdown(rows, keywords)
		if md == "" {
			continue
		}
		elem := document.Element{Content: md, Type: document.ElementTable, Page: i + 1}
		if !defaultSheetName.MatchString(sheet) {
			elem.Metadata = map[string]any{document.MetaContextTitle: sheet}
		}
		elements = append(elements, elem)
	}
	return elements, nil
}
