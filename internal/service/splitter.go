package service

import (
	"strings"
	"unicode/utf8"
)

// SplitterConfig controls recursive text splitting for ingestion.
type SplitterConfig struct {
	ChunkSize  int
	Overlap    int
	Separators []string
}

// DefaultSplitterConfig matches the ingestion contract: 1000-rune chunks with
// 200 runes of overlap, preferring paragraph breaks over line breaks over
// word breaks over hard cuts.
func DefaultSplitterConfig() SplitterConfig {
	return SplitterConfig{
		ChunkSize:  1000,
		Overlap:    200,
		Separators: []string{"\n\n", "\n", " ", ""},
	}
}

// Splitter breaks text into overlapping windows using a recursive fallback of
// separators, so a split lands on a semantic boundary whenever one exists
// within the size budget.
type Splitter struct {
	cfg SplitterConfig
}

func NewSplitter(cfg SplitterConfig) *Splitter {
	if cfg.ChunkSize <= 0 {
		cfg = DefaultSplitterConfig()
	}
	if cfg.Overlap < 0 {
		cfg.Overlap = 0
	}
	if cfg.Overlap >= cfg.ChunkSize {
		cfg.Overlap = cfg.ChunkSize / 5
	}
	if len(cfg.Separators) == 0 {
		cfg.Separators = DefaultSplitterConfig().Separators
	}
	return &Splitter{cfg: cfg}
}

// Split returns the chunks of text in reading order. Lengths are rune counts.
func (s *Splitter) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return s.splitRecursive(text, s.cfg.Separators)
}

func (s *Splitter) splitRecursive(text string, separators []string) []string {
	separator := separators[len(separators)-1]
	var next []string
	for i, sep := range separators {
		if sep == "" {
			separator = ""
			next = nil
			break
		}
		if strings.Contains(text, sep) {
			separator = sep
			next = separators[i+1:]
			break
		}
	}

	// The empty separator splits into individual runes.
	splits := strings.Split(text, separator)

	var final []string
	var good []string
	for _, piece := range splits {
		if utf8.RuneCountInString(piece) < s.cfg.ChunkSize {
			good = append(good, piece)
			continue
		}
		if len(good) > 0 {
			final = append(final, s.merge(good, separator)...)
			good = nil
		}
		if len(next) == 0 {
			final = append(final, piece)
		} else {
			final = append(final, s.splitRecursive(piece, next)...)
		}
	}
	if len(good) > 0 {
		final = append(final, s.merge(good, separator)...)
	}
	return final
}

// merge greedily packs small splits into chunks up to ChunkSize, carrying
// Overlap runes of trailing context into each subsequent chunk.
func (s *Splitter) merge(splits []string, separator string) []string {
	sepLen := utf8.RuneCountInString(separator)

	var chunks []string
	var current []string
	total := 0

	for _, piece := range splits {
		pieceLen := utf8.RuneCountInString(piece)

		joinLen := 0
		if len(current) > 0 {
			joinLen = sepLen
		}

		if total+pieceLen+joinLen > s.cfg.ChunkSize && len(current) > 0 {
			if chunk := joinSplits(current, separator); chunk != "" {
				chunks = append(chunks, chunk)
			}
			for total > s.cfg.Overlap || (total+pieceLen+joinLen > s.cfg.ChunkSize && total > 0) {
				removed := utf8.RuneCountInString(current[0])
				total -= removed
				if len(current) > 1 {
					total -= sepLen
				}
				current = current[1:]
				joinLen = 0
				if len(current) > 0 {
					joinLen = sepLen
				}
			}
		}

		current = append(current, piece)
		total += pieceLen
		if len(current) > 1 {
			total += sepLen
		}
	}

	if chunk := joinSplits(current, separator); chunk != "" {
		chunks = append(chunks, chunk)
	}
	return chunks
}

func joinSplits(parts []string, separator string) string {
	return strings.TrimSpace(strings.Join(parts, separator))
}
