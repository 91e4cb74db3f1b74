// Package chunk splits page text into word-bounded pieces so prompts stay
// inside the optimizer's context budget. Words approximate tokens.
package chunk

import "strings"

// DefaultChunkSize is used when a non-positive size is requested.
const DefaultChunkSize = 1500

// Chunker splits text into fixed-size word chunks.
type Chunker struct {
	ChunkSize int // number of words per chunk
}

// New creates a Chunker with the given chunk size.
// Defaults to DefaultChunkSize if chunkSize <= 0.
func New(chunkSize int) *Chunker {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Chunker{ChunkSize: chunkSize}
}

// Chunk splits the input text into slices of at most ChunkSize words.
// Line structure inside a chunk is preserved.
func (c *Chunker) Chunk(text string) []string {
	var chunks []string
	var lines []string
	words := 0

	flush := func() {
		if len(lines) == 0 {
			return
		}
		chunks = append(chunks, strings.Join(lines, "\n"))
		lines = nil
		words = 0
	}

	for _, line := range strings.Split(text, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		for len(fields) > 0 {
			room := c.ChunkSize - words
			if room == 0 {
				flush()
				room = c.ChunkSize
			}
			take := len(fields)
			if take > room {
				take = room
			}
			lines = append(lines, strings.Join(fields[:take], " "))
			words += take
			fields = fields[take:]
		}
	}
	flush()
	return chunks
}

// Head returns the first chunk of text and whether anything was cut off.
func (c *Chunker) Head(text string) (string, bool) {
	chunks := c.Chunk(text)
	if len(chunks) == 0 {
		return "", false
	}
	return chunks[0], len(chunks) > 1
}
