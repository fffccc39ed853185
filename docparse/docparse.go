package docparse

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// MinSentenceLength is the shortest sentence (in runes) worth indexing;
// anything at or below it is noise.
const MinSentenceLength = 5

var (
	headingRe   = regexp.MustCompile(`(?m)^#+\s*`)
	imageRe     = regexp.MustCompile(`!\[[^\]]*\]\([^)]+\)`)
	linkRe      = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	codeFenceRe = regexp.MustCompile("(?s)```[^`]*```")
	inlineRe    = regexp.MustCompile("`[^`]+`")
	boldRe      = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	emphasisRe  = regexp.MustCompile(`\*([^*]+)\*`)

	// Latin and CJK terminators, plus any trailing whitespace.
	terminatorRe = regexp.MustCompile(`[.!?。！？]+(?:\s+|$)`)
	letterRe     = regexp.MustCompile(`[a-zA-Z\x{4e00}-\x{9fff}]`)
)

// CleanMarkdown strips markdown structure, keeping only prose: headings lose
// their markers, links keep their label, images and code are dropped,
// emphasis is unwrapped, and whitespace collapses to single spaces.
func CleanMarkdown(text string) string {
	text = codeFenceRe.ReplaceAllString(text, "")
	text = inlineRe.ReplaceAllString(text, "")
	text = headingRe.ReplaceAllString(text, "")
	text = imageRe.ReplaceAllString(text, "")
	text = linkRe.ReplaceAllString(text, "$1")
	text = boldRe.ReplaceAllString(text, "$1")
	text = emphasisRe.ReplaceAllString(text, "$1")
	return strings.Join(strings.Fields(text), " ")
}

// SplitSentences splits prose on latin and CJK sentence terminators,
// dropping fragments too short to index or carrying no letters at all.
func SplitSentences(text string) []string {
	var sentences []string
	for _, raw := range terminatorRe.Split(text, -1) {
		sentence := strings.TrimSpace(raw)
		if utf8.RuneCountInString(sentence) <= MinSentenceLength {
			continue
		}
		if !letterRe.MatchString(sentence) {
			continue
		}
		sentences = append(sentences, sentence)
	}
	return sentences
}

// ExtractMarkdown returns indexable sentences from markdown content.
func ExtractMarkdown(content string) []string {
	return SplitSentences(CleanMarkdown(content))
}

// ExtractText returns indexable sentences from plain-text content.
func ExtractText(content string) []string {
	return SplitSentences(content)
}

// ExtractFile reads a document and returns its sentences, dispatching on the
// file extension. Only .md and .txt are supported.
func ExtractFile(path string) ([]string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("docparse: read %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md":
		return ExtractMarkdown(string(content)), nil
	case ".txt":
		return ExtractText(string(content)), nil
	default:
		return nil, fmt.Errorf("docparse: unsupported file type %s", path)
	}
}

// DefaultPatterns matches the document types ExtractFile understands.
var DefaultPatterns = []string{"*.md", "*.txt"}

// FindFiles globs dir with the given patterns (DefaultPatterns when empty)
// and returns the matched paths, sorted and deduplicated.
func FindFiles(dir string, patterns []string) ([]string, error) {
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}
	seen := map[string]bool{}
	var files []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("docparse: bad pattern %q: %w", pattern, err)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}
	sort.Strings(files)
	return files, nil
}
