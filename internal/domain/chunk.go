package domain

import (
	"fmt"
	"strings"
	"time"
)

// ChunkMetadata holds the typed metadata fields the system reads, plus an
// overflow map for anything else a parser attaches. Source and the chunk's
// sequence index are mirrored here for citation convenience.
type ChunkMetadata struct {
	Source string
	Page   int
	Extra  map[string]any
}

// Map flattens the metadata into the open key-value form stored in the
// metadata column. Typed fields win over Extra on key collision.
func (m ChunkMetadata) Map() map[string]any {
	out := make(map[string]any, len(m.Extra)+2)
	for k, v := range m.Extra {
		out[k] = v
	}
	if m.Source != "" {
		out["source"] = m.Source
	}
	if m.Page > 0 {
		out["page"] = m.Page
	}
	return out
}

// ChunkMetadataFromMap rebuilds typed metadata from a stored key-value map.
// Numeric values arrive as float64 after JSON round-tripping.
func ChunkMetadataFromMap(raw map[string]any) ChunkMetadata {
	var m ChunkMetadata
	if raw == nil {
		return m
	}
	for k, v := range raw {
		switch k {
		case "source":
			if s, ok := v.(string); ok {
				m.Source = s
				continue
			}
		case "page":
			switch n := v.(type) {
			case float64:
				m.Page = int(n)
				continue
			case int:
				m.Page = n
				continue
			}
		}
		if m.Extra == nil {
			m.Extra = make(map[string]any)
		}
		m.Extra[k] = v
	}
	return m
}

// Chunk is a bounded slice of a source document's text, persisted together
// with its vector embedding. Chunks are immutable after creation; chunks from
// the same source ordered by SequenceIndex reconstruct the document's reading
// order.
type Chunk struct {
	ID            string
	SourceName    string
	SequenceIndex int
	Text          string
	Metadata      ChunkMetadata
	Embedding     []float32
	CreatedAt     time.Time
}

// ValidateChunk validates a Chunk instance. dimensions is the configured
// embedding width; a set embedding must match it exactly.
func ValidateChunk(c *Chunk, dimensions int) error {
	if c == nil {
		return fmt.Errorf("chunk cannot be nil")
	}

	if c.SourceName == "" {
		return fmt.Errorf("chunk SourceName is required")
	}

	if c.SequenceIndex < 0 {
		return fmt.Errorf("chunk SequenceIndex cannot be negative")
	}

	if strings.TrimSpace(c.Text) == "" {
		return fmt.Errorf("chunk Text cannot be empty")
	}

	if len(c.Embedding) > 0 && dimensions > 0 && len(c.Embedding) != dimensions {
		return fmt.Errorf("chunk embedding has %d dimensions, expected %d", len(c.Embedding), dimensions)
	}

	return nil
}
