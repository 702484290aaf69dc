// Package chunk splits extracted documents into bounded, overlapping pieces
// sized for downstream embedding and retrieval. Splitting prefers paragraph
// and line boundaries and carries a textual bridge between consecutive chunks
// so retrieval keeps context across split points.
package chunk

import (
	"fmt"
	"math"
	"regexp"
	"strings"
)

// Defaults applied when a caller passes zero values.
const (
	DefaultMaxChunkSize = 5000
	DefaultOverlapSize  = 200
	DefaultMinSize      = 2000
	DefaultMaxSize      = 5000
)

// Chunk is one bounded slice of a source document.
// Index is 0-based and contiguous, Total is identical across all chunks of a
// document, and OriginalSize is the trimmed length of the whole source text,
// not the chunk's own length.
type Chunk struct {
	Text         string `json:"text"`
	Index        int    `json:"chunk_index"`
	Total        int    `json:"chunk_total"`
	OriginalSize int    `json:"original_size"`
}

// Split divides text into chunks of at most maxChunkSize characters, breaking
// at the latest paragraph (then line) boundary in the second half of the
// window. Every chunk after the first is prefixed with the last overlapSize
// characters of the previous chunk's emitted text followed by a blank line.
// Zero sizes select the defaults; invalid sizes fail fast.
func Split(text string, maxChunkSize, overlapSize int) ([]Chunk, error) {
	if maxChunkSize == 0 {
		maxChunkSize = DefaultMaxChunkSize
	}
	if overlapSize == 0 {
		overlapSize = DefaultOverlapSize
	}
	if maxChunkSize < 0 {
		return nil, fmt.Errorf("max chunk size must be > 0, got %d", maxChunkSize)
	}
	if overlapSize < 0 {
		return nil, fmt.Errorf("overlap size must be >= 0, got %d", overlapSize)
	}
	if overlapSize >= maxChunkSize {
		return nil, fmt.Errorf("overlap size %d must be smaller than max chunk size %d", overlapSize, maxChunkSize)
	}

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, nil
	}
	if len(trimmed) <= maxChunkSize {
		return []Chunk{{Text: trimmed, Index: 0, Total: 1, OriginalSize: len(trimmed)}}, nil
	}

	var chunks []Chunk
	var prevText string
	current := 0
	for current < len(trimmed) {
		end := breakPoint(trimmed, current, maxChunkSize)
		piece := strings.TrimSpace(trimmed[current:end])
		current = end
		if piece == "" {
			continue
		}
		emitted := piece
		if len(chunks) > 0 {
			overlap := prevText
			if len(overlap) > overlapSize {
				overlap = overlap[len(overlap)-overlapSize:]
			}
			emitted = overlap + "\n\n" + piece
		}
		chunks = append(chunks, Chunk{
			Text:         emitted,
			Index:        len(chunks),
			OriginalSize: len(trimmed),
		})
		prevText = emitted
	}
	for i := range chunks {
		chunks[i].Total = len(chunks)
	}
	return chunks, nil
}

// breakPoint returns the exclusive end of the next chunk starting at from.
// A paragraph break wins over a line break, and either is used only when it
// falls no earlier than half a window back from the proposed end.
func breakPoint(text string, from, maxChunkSize int) int {
	end := from + maxChunkSize
	if end >= len(text) {
		return len(text)
	}
	window := text[from:end]
	floor := end - maxChunkSize/2
	if i := strings.LastIndex(window, "\n\n"); i >= 0 && from+i >= floor {
		return from + i
	}
	if i := strings.LastIndex(window, "\n"); i >= 0 && from+i >= floor {
		return from + i
	}
	return end
}

var headingLine = regexp.MustCompile(`^#+\s`)

// RecommendSize picks a chunk size for text between minSize and maxSize based
// on document shape: heavily structured documents get many small topical
// chunks, dense prose gets few large ones, and everything else lands on the
// midpoint. Density wins over structure. Zero sizes select the defaults.
func RecommendSize(text string, minSize, maxSize int) (int, error) {
	if minSize == 0 {
		minSize = DefaultMinSize
	}
	if maxSize == 0 {
		maxSize = DefaultMaxSize
	}
	if minSize <= 0 || maxSize < minSize {
		return 0, fmt.Errorf("invalid size bounds [%d, %d]", minSize, maxSize)
	}

	headings := 0
	lineCount := 0
	totalLen := 0
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lineCount++
		totalLen += len(line)
		if headingLine.MatchString(line) {
			headings++
		}
	}

	hasStructure := headings > 5
	isDense := lineCount > 0 && float64(totalLen)/float64(lineCount) > 80

	switch {
	case isDense:
		return maxSize, nil
	case hasStructure:
		return minSize, nil
	default:
		return int(math.Round(float64(minSize+maxSize) / 2)), nil
	}
}
