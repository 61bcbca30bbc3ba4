package ingest

import (
	"strings"
	"unicode"
)

// Chunk size bounds in words.
const (
	MinChunkWords = 100
	MaxChunkWords = 300
)

// ChunkText groups whole sentences into chunks. A chunk is closed when the
// next sentence would push it past maxWords and it already has minWords.
// Sentences are never split, so a single long sentence can exceed maxWords.
func ChunkText(text string, minWords, maxWords int) []string {
	var (
		chunks  []string
		current []string
		words   int
	)
	for _, s := range splitSentences(strings.ReplaceAll(text, "\r\n", "\n")) {
		n := len(strings.Fields(s))
		if words+n > maxWords && words >= minWords {
			chunks = append(chunks, strings.Join(current, " "))
			current = []string{s}
			words = n
			continue
		}
		current = append(current, s)
		words += n
	}
	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, " "))
	}
	return chunks
}

// splitSentences breaks after '.', '!' or '?' when followed by whitespace.
func splitSentences(text string) []string {
	var (
		out   []string
		start int
	)
	runes := []rune(text)
	for i := 0; i < len(runes)-1; i++ {
		if !isTerminal(runes[i]) || !unicode.IsSpace(runes[i+1]) {
			continue
		}
		if s := strings.TrimSpace(string(runes[start : i+1])); s != "" {
			out = append(out, s)
		}
		start = i + 1
	}
	if s := strings.TrimSpace(string(runes[start:])); s != "" {
		out = append(out, s)
	}
	return out
}

func isTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}
