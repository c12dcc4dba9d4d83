package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validChunk() *Chunk {
	return &Chunk{
		SourceName:    "handbook.pdf",
		SequenceIndex: 0,
		Text:          "Employees accrue 25 vacation days per year.",
		Metadata:      ChunkMetadata{Source: "handbook.pdf", Page: 3},
	}
}

func TestValidateChunk_Valid(t *testing.T) {
	assert.NoError(t, ValidateChunk(validChunk(), 1536))
}

func TestValidateChunk_Nil(t *testing.T) {
	assert.Error(t, ValidateChunk(nil, 1536))
}

func TestValidateChunk_MissingSource(t *testing.T) {
	c := validChunk()
	c.SourceName = ""
	assert.Error(t, ValidateChunk(c, 1536))
}

func TestValidateChunk_NegativeIndex(t *testing.T) {
	c := validChunk()
	c.SequenceIndex = -1
	assert.Error(t, ValidateChunk(c, 1536))
}

func TestValidateChunk_WhitespaceText(t *testing.T) {
	c := validChunk()
	c.Text = "  \n\t "
	assert.Error(t, ValidateChunk(c, 1536))
}

func TestValidateChunk_EmbeddingDimensions(t *testing.T) {
	c := validChunk()
	c.Embedding = make([]float32, 768)
	assert.Error(t, ValidateChunk(c, 1536))

	c.Embedding = make([]float32, 1536)
	assert.NoError(t, ValidateChunk(c, 1536))
}

func TestChunkMetadata_MapRoundTrip(t *testing.T) {
	m := ChunkMetadata{
		Source: "notes.md",
		Page:   2,
		Extra:  map[string]any{"author": "ops"},
	}

	flat := m.Map()
	assert.Equal(t, "notes.md", flat["source"])
	assert.Equal(t, 2, flat["page"])
	assert.Equal(t, "ops", flat["author"])

	// Simulate JSON round-trip turning numbers into float64
	flat["page"] = float64(2)
	back := ChunkMetadataFromMap(flat)
	assert.Equal(t, "notes.md", back.Source)
	assert.Equal(t, 2, back.Page)
	require.NotNil(t, back.Extra)
	assert.Equal(t, "ops", back.Extra["author"])
}

func TestChunkMetadataFromMap_Defaults(t *testing.T) {
	m := ChunkMetadataFromMap(nil)
	assert.Empty(t, m.Source)
	assert.Zero(t, m.Page)
	assert.Nil(t, m.Extra)
}

func TestErrorCode(t *testing.T) {
	assert.Equal(t, ErrCodeEmptyContent, ErrorCode(ErrEmptyContent))
	assert.Equal(t, ErrCodeUnsupportedFormat, ErrorCode(NewUnsupportedFormat(".exe")))
	assert.Equal(t, ErrCodeInternalError, ErrorCode(assert.AnError))
}
