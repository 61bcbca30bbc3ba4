package ingest

import (
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/hybridqa/internal/domain/document"
)

const dateLayout = "2006-01-02"

var (
	fenceRe     = regexp.MustCompile(`(?s)\A---\r?\n(.*?)\r?\n---\r?\n(.*)\z`)
	separatorRe = regexp.MustCompile(`[_-]+`)
)

// Meta is the document metadata after defaults are applied.
type Meta struct {
	Title string
	Date  time.Time
	Topic string
	Tags  []string
}

type frontmatter struct {
	Title string  `yaml:"title"`
	Date  string  `yaml:"date"`
	Topic string  `yaml:"topic"`
	Tags  tagList `yaml:"tags"`
}

// tagList accepts both "a, b, c" and a YAML sequence.
type tagList []string

func (t *tagList) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.ScalarNode:
		*t = splitTags(n.Value)
		return nil
	case yaml.SequenceNode:
		var items []string
		if err := n.Decode(&items); err != nil {
			return err
		}
		*t = splitTags(strings.Join(items, ","))
		return nil
	default:
		return fmt.Errorf("tags: unsupported yaml kind %d", n.Kind)
	}
}

func splitTags(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ParseFrontmatter splits an optional leading "---" YAML block from the body
// and fills missing fields: title from the file name, date from today, topic
// "General", no tags. The body is trimmed.
func ParseFrontmatter(raw, filename string, today time.Time) (Meta, string, error) {
	var fm frontmatter
	body := raw

	if m := fenceRe.FindStringSubmatch(raw); m != nil {
		if err := yaml.Unmarshal([]byte(m[1]), &fm); err != nil {
			return Meta{}, "", fmt.Errorf("parse frontmatter: %w", err)
		}
		body = m[2]
	}

	meta := Meta{
		Title: strings.TrimSpace(fm.Title),
		Topic: strings.TrimSpace(fm.Topic),
		Tags:  []string(fm.Tags),
	}
	if meta.Title == "" {
		meta.Title = titleFromFilename(filename)
	}
	if meta.Topic == "" {
		meta.Topic = document.DefaultTopic
	}
	if meta.Tags == nil {
		meta.Tags = []string{}
	}

	if d := strings.TrimSpace(fm.Date); d != "" {
		parsed, err := time.Parse(dateLayout, d)
		if err != nil {
			return Meta{}, "", fmt.Errorf("parse date %q: %w", d, err)
		}
		meta.Date = parsed
	} else {
		y, mo, day := today.Date()
		meta.Date = time.Date(y, mo, day, 0, 0, 0, 0, time.UTC)
	}

	return meta, strings.TrimSpace(body), nil
}

// titleFromFilename turns "q1_planning-notes.md" into "Q1 Planning Notes".
func titleFromFilename(filename string) string {
	base := path.Base(filename)
	stem := strings.TrimSuffix(base, path.Ext(base))
	words := strings.Fields(separatorRe.ReplaceAllString(stem, " "))
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}
