package chunker

import (
	"strings"

	"zipfit/internal/document"
)

// MetaDocumentID is the chunk metadata key holding the source document id.
const MetaDocumentID = "document_id"

// Chunker turns parsed document elements into bounded, context-labeled chunks.
type Chunker struct {
	cfg Config
}

// New returns a Chunker. Zero fields in cfg take their DefaultConfig values.
func New(cfg Config) *Chunker {
	return &Chunker{cfg: cfg.withDefaults()}
}

// Config returns the effective configuration.
func (c *Chunker) Config() Config {
	return c.cfg
}

// BuildChunks makes a single forward pass over elements. A heading is held
// until the next text or table element consumes it.
func (c *Chunker) BuildChunks(elements []document.Element, documentID string) []document.Chunk {
	var (
		chunks  []document.Chunk
		index   int
		heading string
	)
	meta := func() map[string]any {
		return map[string]any{MetaDocumentID: documentID}
	}

	for i, elem := range elements {
		switch elem.Type {
		case document.ElementHeading:
			heading = elem.Content

		case document.ElementTable:
			title := c.resolveTableContext(elements, i, heading)
			for _, text := range c.ChunkTable(elem.Content, title, c.cfg.MaxTableSize) {
				if !IsValidChunk(text, c.cfg.TableMinChunkSize) {
					continue
				}
				final := title
				if final == "" && strings.HasPrefix(text, contextHeadline) {
					firstLine, _, _ := strings.Cut(text, "\n")
					final = strings.TrimSpace(strings.TrimPrefix(firstLine, contextHeadline))
				}
				chunks = append(chunks, document.Chunk{
					Text:         text,
					Index:        index,
					Page:         elem.Page,
					Type:         document.ElementTable,
					TableContext: optional(final),
					Metadata:     meta(),
				})
				index++
			}
			heading = ""

		case document.ElementText:
			text := elem.Content
			if heading != "" {
				text = contextHeadline + heading + "\n\n" + text
			}
			heading = ""
			for _, part := range c.SplitText(text) {
				if !IsValidChunk(part, c.cfg.MinChunkSize) {
					continue
				}
				chunks = append(chunks, document.Chunk{
					Text:     part,
					Index:    index,
					Page:     elem.Page,
					Type:     document.ElementText,
					Metadata: meta(),
				})
				index++
			}
		}
	}
	return chunks
}

// SplitText splits text using the configured optimal size and overlap, then
// cuts any piece still above MaxChunkSize.
func (c *Chunker) SplitText(text string) []string {
	var parts []string
	for _, part := range SplitText(text, c.cfg.OptimalChunkSize, c.cfg.ChunkOverlap) {
		parts = append(parts, capTokens(part, c.cfg.MaxChunkSize)...)
	}
	return parts
}

// resolveTableContext picks a table title: metadata first, then the pending
// heading, then a backward lookup when the result is empty or generic.
func (c *Chunker) resolveTableContext(elements []document.Element, i int, heading string) string {
	title := strings.TrimSpace(elements[i].ContextTitle())
	if title == "" {
		title = strings.TrimSpace(heading)
	}
	if title == "" || c.isGeneric(title) {
		if found := FindContextFromPrevious(elements, i, c.cfg.ContextLookback, c.cfg.ShortTextLimit); found != "" {
			title = found
		}
	}
	return title
}

func (c *Chunker) isGeneric(title string) bool {
	for _, g := range c.cfg.GenericContexts {
		if title == g || strings.HasPrefix(title, g+" /") {
			return true
		}
	}
	return false
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
