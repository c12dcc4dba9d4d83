package service

import (
	"bytes"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/documind-ai/documind/internal/domain"
	"github.com/ledongthuc/pdf"
)

var supportedExtensions = map[string]struct{}{
	".pdf": {},
	".txt": {},
	".md":  {},
}

// IngestionService parses raw uploaded bytes into ordered, source-tagged
// chunks. It performs no embedding and no persistence.
type IngestionService struct {
	splitter *Splitter
}

func NewIngestionService() *IngestionService {
	return NewIngestionServiceWithConfig(DefaultSplitterConfig())
}

func NewIngestionServiceWithConfig(cfg SplitterConfig) *IngestionService {
	return &IngestionService{splitter: NewSplitter(cfg)}
}

// ProcessFile extracts text from data according to the filename's extension
// and splits it into chunks in reading order. Each chunk carries the source
// name, a zero-based sequence index, and the page its text starts on.
func (s *IngestionService) ProcessFile(data []byte, filename string) ([]domain.Chunk, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := supportedExtensions[ext]; !ok {
		return nil, domain.NewUnsupportedFormat(ext)
	}

	var pages []string
	switch ext {
	case ".pdf":
		extracted, err := extractPDFPages(data)
		if err != nil {
			return nil, domain.NewParseFailure(err)
		}
		pages = extracted
	default:
		if !utf8.Valid(data) {
			return nil, domain.NewParseFailure(fmt.Errorf("file is not valid UTF-8 text"))
		}
		pages = []string{string(data)}
	}

	text := strings.Join(pages, "\n")
	if strings.TrimSpace(text) == "" {
		return nil, domain.ErrEmptyContent
	}

	pieces := s.splitter.Split(text)

	// Byte offset of each page's start within the joined text, for mapping
	// chunks back to page numbers.
	pageOffsets := make([]int, len(pages))
	offset := 0
	for i, page := range pages {
		pageOffsets[i] = offset
		offset += len(page) + 1 // page separator "\n"
	}

	chunks := make([]domain.Chunk, 0, len(pieces))
	searchFrom := 0
	for i, piece := range pieces {
		page := 1
		if idx := strings.Index(text[searchFrom:], piece); idx >= 0 {
			abs := searchFrom + idx
			page = pageForOffset(pageOffsets, abs)
			searchFrom = abs + 1
		}
		chunks = append(chunks, domain.Chunk{
			SourceName:    filename,
			SequenceIndex: i,
			Text:          piece,
			Metadata: domain.ChunkMetadata{
				Source: filename,
				Page:   page,
				Extra:  map[string]any{"chunk_index": i},
			},
		})
	}

	return chunks, nil
}

func pageForOffset(pageOffsets []int, offset int) int {
	// First page whose start is past the offset; the chunk starts on the
	// page before it.
	i := sort.Search(len(pageOffsets), func(i int) bool {
		return pageOffsets[i] > offset
	})
	if i == 0 {
		return 1
	}
	return i
}

// extractPDFPages returns the plain text of each page in order. A parse error
// on any page fails the whole document rather than returning partial text.
func extractPDFPages(data []byte) (pages []string, err error) {
	// The pdf package panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = fmt.Errorf("malformed PDF: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}

	pages = make([]string, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		p := reader.Page(i)
		if p.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
		pages = append(pages, text)
	}
	return pages, nil
}
