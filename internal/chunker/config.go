package chunker

// Config holds the sizing thresholds and keyword lists used by a Chunker.
// Sizes are in CountTokens units except the *MinChunkSize and ShortTextLimit
// fields, which count characters.
type Config struct {
	MinChunkSize      int
	TableMinChunkSize int
	OptimalChunkSize  int
	MaxChunkSize      int
	ChunkOverlap      int
	MaxTableSize      int

	ContextLookback int
	ShortTextLimit  int

	// ContextKeywords are searched in table text when no title can be derived
	// from the header row.
	ContextKeywords []string
	// GenericContexts are single-topic titles too vague to label a table on
	// their own; a table titled with one of them gets a backward lookup.
	GenericContexts []string
}

var defaultKeywords = []string{
	"소득", "자산", "면적", "임대", "보증금", "월세",
	"자격", "기준", "조건", "일정", "서류",
}

// DefaultConfig returns the thresholds tuned for housing announcements.
func DefaultConfig() Config {
	return Config{
		MinChunkSize:      50,
		TableMinChunkSize: 30,
		OptimalChunkSize:  600,
		MaxChunkSize:      1200,
		ChunkOverlap:      150,
		MaxTableSize:      3000,
		ContextLookback:   5,
		ShortTextLimit:    100,
		ContextKeywords:   append([]string(nil), defaultKeywords...),
		GenericContexts:   append([]string(nil), defaultKeywords...),
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MinChunkSize <= 0 {
		c.MinChunkSize = d.MinChunkSize
	}
	if c.TableMinChunkSize <= 0 {
		c.TableMinChunkSize = d.TableMinChunkSize
	}
	if c.OptimalChunkSize <= 0 {
		c.OptimalChunkSize = d.OptimalChunkSize
	}
	if c.MaxChunkSize <= 0 {
		c.MaxChunkSize = d.MaxChunkSize
	}
	if c.ChunkOverlap < 0 {
		c.ChunkOverlap = 0
	}
	if c.MaxTableSize <= 0 {
		c.MaxTableSize = d.MaxTableSize
	}
	if c.ContextLookback <= 0 {
		c.ContextLookback = d.ContextLookback
	}
	if c.ShortTextLimit <= 0 {
		c.ShortTextLimit = d.ShortTextLimit
	}
	if c.ContextKeywords == nil {
		c.ContextKeywords = d.ContextKeywords
	}
	if c.GenericContexts == nil {
		c.GenericContexts = d.GenericContexts
	}
	return c
}
