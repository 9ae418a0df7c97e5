package pdfparse

import (
	"strings"

	"zipfit/internal/document"
)

// MetaHeadingLevel is the element metadata key holding a heading's depth.
const MetaHeadingLevel = "level"

// ExtractElements classifies the lines of one page of markdown. A line
// starting with '#' is a heading, a run of lines starting with '|' is a
// table, and everything else is accumulated as text.
func ExtractElements(markdown string, page int) []document.Element {
	var (
		elements []document.Element
		text     []string
		table    []string
	)
	flushText := func() {
		if len(text) == 0 {
			return
		}
		if joined := strings.TrimSpace(strings.Join(text, "\n")); joined != "" {
			elements = append(elements, document.Element{Content: joined, Type: document.ElementText, Page: page})
		}
		text = nil
	}
	flushTable := func() {
		if len(table) == 0 {
			return
		}
		elements = append(elements, document.Element{Content: strings.Join(table, "\n"), Type: document.ElementTable, Page: page})
		table = nil
	}

	for _, line := range strings.Split(markdown, "\n") {
		switch {
		case strings.HasPrefix(line, "#"):
			flushTable()
			flushText()
			heading := strings.TrimLeft(line, "#")
			level := len(line) - len(heading)
			if heading = strings.TrimSpace(heading); heading != "" {
				elements = append(elements, document.Element{
					Content:  heading,
					Type:     document.ElementHeading,
					Page:     page,
					Metadata: map[string]any{MetaHeadingLevel: level},
				})
			}
		case strings.HasPrefix(strings.TrimSpace(line), "|"):
			flushText()
			table = append(table, line)
		default:
			flushTable()
			if strings.TrimSpace(line) != "" {
				text = append(text, line)
			}
		}
	}
	flushTable()
	flushText()
	return elements
}

// ExtractDocument splits markdown into pages on form feeds and extracts the
// elements of each page in order. Pages are numbered from 1.
func ExtractDocument(markdown string) []document.Element {
	var elements []document.Element
	for i, page := range strings.Split(markdown, "\f") {
		elements = append(elements, ExtractElements(page, i+1)...)
	}
	return elements
}
