package hit

// Hit is one nearest-neighbour match returned by the vector index.
// Higher score means more similar (cosine).
type Hit struct {
	id         int64
	score      float64
	documentID int64
	text       string
}

// New creates a hit carrying only the record id and score.
func New(id int64, score float64) Hit {
	return Hit{id: id, score: score}
}

// NewChunk creates a hit for a document chunk.
func NewChunk(id int64, score float64, documentID int64, text string) Hit {
	return Hit{id: id, score: score, documentID: documentID, text: text}
}

// ID returns the record identifier.
func (h Hit) ID() int64 { return h.id }

// Score returns the similarity score.
func (h Hit) Score() float64 { return h.score }

// DocumentID returns the parent document of a chunk hit.
func (h Hit) DocumentID() int64 { return h.documentID }

// Text returns the chunk text, empty for plain record hits.
func (h Hit) Text() string { return h.text }
