package document

import (
	"fmt"
	"time"
)

// MaxContentSize is the maximum document content size in bytes.
const MaxContentSize = 4 << 20

// DefaultTopic is assigned when a document declares none.
const DefaultTopic = "General"

// Document is an ingested knowledge-base document (immutable value object).
type Document struct {
	id      int64
	title   string
	date    time.Time
	topic   string
	tags    []string
	content string
}

// New validates and creates a Document that has not been stored yet.
func New(title string, date time.Time, topic string, tags []string, content string) (Document, error) {
	if title == "" {
		return Document{}, fmt.Errorf("document title is required")
	}
	if content == "" {
		return Document{}, fmt.Errorf("content is required")
	}
	if len(content) > MaxContentSize {
		return Document{}, fmt.Errorf("content too large (max %d bytes)", MaxContentSize)
	}
	if topic == "" {
		topic = DefaultTopic
	}
	return Document{
		title:   title,
		date:    date,
		topic:   topic,
		tags:    append([]string(nil), tags...),
		content: content,
	}, nil
}

// Reconstruct creates a Document without validation (storage hydration).
func Reconstruct(id int64, title string, date time.Time, topic string, tags []string, content string) Document {
	return Document{id: id, title: title, date: date, topic: topic, tags: tags, content: content}
}

// WithID returns a copy carrying the storage-assigned id.
func (d Document) WithID(id int64) Document {
	d.id = id
	return d
}

// ID returns the storage id, zero before persistence.
func (d Document) ID() int64 { return d.id }

// Title returns the document title.
func (d Document) Title() string { return d.title }

// Date returns the document date.
func (d Document) Date() time.Time { return d.date }

// Topic returns the topic.
func (d Document) Topic() string { return d.topic }

// Tags returns a copy of the tags.
func (d Document) Tags() []string { return append([]string(nil), d.tags...) }

// Content returns the full text.
func (d Document) Content() string { return d.content }

// Chunk is a piece of a document stored in the vector index.
type Chunk struct {
	DocumentID int64
	Text       string
	Embedding  []float32
}
