package services

import (
	"strings"
	"unicode/utf8"
)

const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 100
)

// TextChunker splits resume text into overlapping windows of at most Size
// runes. Paragraph breaks are preferred as cut points.
type TextChunker struct {
	Size    int
	Overlap int
}

func NewTextChunker(size, overlap int) TextChunker {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = size / 10
	}
	return TextChunker{Size: size, Overlap: overlap}
}

func (tc TextChunker) Chunk(text string) []string {
	var chunks []string
	var current []string
	currentLen := 0

	flush := func() {
		if len(current) == 0 {
			return
		}
		chunk := strings.Join(current, " ")
		chunks = append(chunks, chunk)
		current = current[:0]
		currentLen = 0
		if tail := tailRunes(chunk, tc.Overlap); tail != "" {
			current = append(current, tail)
			currentLen = utf8.RuneCountInString(tail)
		}
	}

	for _, para := range strings.Split(text, "\n\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			continue
		}

		paraLen := utf8.RuneCountInString(strings.Join(words, " "))
		if currentLen > 0 && currentLen+1+paraLen > tc.Size && paraLen <= tc.Size {
			flush()
		}

		for _, w := range words {
			wLen := utf8.RuneCountInString(w)
			if wLen > tc.Size {
				w = string([]rune(w)[:tc.Size])
				wLen = tc.Size
			}
			if currentLen > 0 && currentLen+1+wLen > tc.Size {
				flush()
				if currentLen+1+wLen > tc.Size {
					current = current[:0]
					currentLen = 0
				}
			}
			if currentLen > 0 {
				currentLen++
			}
			current = append(current, w)
			currentLen += wLen
		}
	}

	if len(current) > 0 && (len(chunks) == 0 || currentLen > utf8.RuneCountInString(tailRunes(chunks[len(chunks)-1], tc.Overlap))) {
		chunks = append(chunks, strings.Join(current, " "))
	}
	return chunks
}

func tailRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[len(r)-n:]))
}
