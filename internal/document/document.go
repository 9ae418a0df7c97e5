package document

// ElementType tags a parsed element.
type ElementType string

const (
	ElementText    ElementType = "text"
	ElementTable   ElementType = "table"
	ElementHeading ElementType = "heading"
)

// MetaContextTitle is the element metadata key holding a pre-supplied table title.
const MetaContextTitle = "context_title"

// Element is one unit produced by document parsing, consumed in page order.
type Element struct {
	Content  string
	Type     ElementType
	Page     int
	Metadata map[string]any
}

// ContextTitle returns the title stored in metadata, if any.
func (e Element) ContextTitle() string {
	if e.Metadata == nil {
		return ""
	}
	title, _ := e.Metadata[MetaContextTitle].(string)
	return title
}

// Chunk is a bounded unit of text or table content sized for embedding.
type Chunk struct {
	Text         string         `json:"text"`
	Index        int            `json:"chunk_index"`
	Page         int            `json:"page_number"`
	Type         ElementType    `json:"element_type"`
	TableContext *string        `json:"table_context,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	Embedding    []float32      `json:"-"`
}
