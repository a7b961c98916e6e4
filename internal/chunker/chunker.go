// Package chunker splits file text into fixed-size overlapping windows.
package chunker

import "unicode/utf8"

// DefaultSize is the default number of characters per chunk.
const DefaultSize = 1800

// DefaultOverlap is the default number of overlapping characters
// between consecutive chunks.
const DefaultOverlap = 200

// Chunker produces sliding windows over text. The overlap duplicates
// boundary content on purpose: it protects against relevant information
// being split exactly at a chunk boundary, at the cost of redundant
// embedding work.
type Chunker struct {
	size    int
	overlap int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithSize sets the chunk size in characters.
func WithSize(size int) Option {
	return func(c *Chunker) {
		if size > 0 {
			c.size = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		if overlap >= 0 {
			c.overlap = overlap
		}
	}
}

// New creates a chunker with the given options. An overlap that is not
// strictly smaller than the size is a configuration error; it is
// clamped to a quarter of the size rather than checked per call.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		size:    DefaultSize,
		overlap: DefaultOverlap,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.overlap >= c.size {
		c.overlap = c.size / 4
	}

	return c
}

// Size returns the configured window size.
func (c *Chunker) Size() int {
	return c.size
}

// Overlap returns the configured window overlap.
func (c *Chunker) Overlap() int {
	return c.overlap
}

// Split returns the ordered chunk texts for the input. Empty text
// yields no chunks; text shorter than the window size yields exactly
// one chunk equal to the whole text. The final partial window is kept,
// never dropped.
//
// Window edges landing inside a multi-byte UTF-8 rune are backed off to
// the rune start, so no chunk ever carries an invalid fragment.
func (c *Chunker) Split(text string) []string {
	if text == "" {
		return nil
	}

	step := c.size - c.overlap
	estimated := len(text)/step + 1
	chunks := make([]string, 0, estimated)

	for start := 0; start < len(text); start += step {
		from := snapToRuneStart(text, start)
		end := start + c.size
		if end >= len(text) {
			end = len(text)
		} else {
			end = snapToRuneStart(text, end)
			if end <= from {
				_, n := utf8.DecodeRuneInString(text[from:])
				end = from + n
			}
		}
		chunks = append(chunks, text[from:end])
	}

	return chunks
}

// snapToRuneStart backs i off to the start of the rune containing it.
func snapToRuneStart(text string, i int) int {
	for i > 0 && !utf8.RuneStart(text[i]) {
		i--
	}
	return i
}
