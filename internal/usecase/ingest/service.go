package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/hybridqa/internal/domain/document"
)

// ErrNoFiles is returned when the source holds no eligible file.
var ErrNoFiles = errors.New("no .txt or .md files found")

// DefaultWorkers is the ingestion pool size.
const DefaultWorkers = 4

// FileResult is the outcome for one file.
type FileResult struct {
	File       string
	DocumentID int64
	Chunks     int
	Skipped    bool
	Err        error
}

// Summary reports a run. Failed files do not stop the run.
type Summary struct {
	Files []FileResult
}

// Total is the number of eligible files.
func (s Summary) Total() int { return len(s.Files) }

// Succeeded counts files stored without error, skipped files included.
func (s Summary) Succeeded() int {
	n := 0
	for _, f := range s.Files {
		if f.Err == nil {
			n++
		}
	}
	return n
}

func (s Summary) String() string {
	return fmt.Sprintf("%d/%d file(s) ingested", s.Succeeded(), s.Total())
}

// Service ingests text files into postgres (documents) and Milvus (chunks).
type Service struct {
	docs    DocumentStore
	chunks  ChunkStore
	embed   Embedder
	workers int
	now     func() time.Time
	logger  *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithWorkers sets the worker pool size.
func WithWorkers(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithClock overrides the clock used for default document dates.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New creates an ingestion service.
func New(docs DocumentStore, chunks ChunkStore, embed Embedder, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{
		docs:    docs,
		chunks:  chunks,
		embed:   embed,
		workers: DefaultWorkers,
		now:     time.Now,
		logger:  logger,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Eligible reports whether name is an ingestible file: .txt or .md, not starting with "_".
func Eligible(name string) bool {
	if strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".") {
		return false
	}
	switch strings.ToLower(path.Ext(name)) {
	case ".txt", ".md":
		return true
	}
	return false
}

// Run ingests every eligible file at the top level of fsys, in name order.
func (s *Service) Run(ctx context.Context, fsys fs.FS) (Summary, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return Summary{}, fmt.Errorf("read dir: %w", err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && Eligible(e.Name()) {
			files = append(files, e.Name())
		}
	}
	if len(files) == 0 {
		return Summary{}, ErrNoFiles
	}
	sort.Strings(files)

	if err := s.chunks.Ensure(ctx); err != nil {
		return Summary{}, fmt.Errorf("ensure chunk collection: %w", err)
	}

	pool, err := ants.NewPool(s.workers)
	if err != nil {
		return Summary{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	results := make([]FileResult, len(files))
	var wg sync.WaitGroup
	for i, name := range files {
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			results[i] = s.ingestFile(ctx, fsys, name)
		})
		if submitErr != nil {
			wg.Done()
			results[i] = FileResult{File: name, Err: fmt.Errorf("submit: %w", submitErr)}
		}
	}
	wg.Wait()

	summary := Summary{Files: results}
	for _, r := range results {
		if r.Err != nil {
			s.logger.Error("ingest failed", zap.String("file", r.File), zap.Error(r.Err))
		}
	}
	s.logger.Info("ingest done",
		zap.Int("succeeded", summary.Succeeded()),
		zap.Int("total", summary.Total()),
	)
	return summary, nil
}

func (s *Service) ingestFile(ctx context.Context, fsys fs.FS, name string) FileResult {
	res := FileResult{File: name}

	raw, err := fs.ReadFile(fsys, name)
	if err != nil {
		res.Err = fmt.Errorf("read: %w", err)
		return res
	}

	meta, body, err := ParseFrontmatter(string(raw), name, s.now())
	if err != nil {
		res.Err = err
		return res
	}
	if body == "" {
		s.logger.Warn("empty after frontmatter, skipped", zap.String("file", name))
		res.Skipped = true
		return res
	}

	doc, err := document.New(meta.Title, meta.Date, meta.Topic, meta.Tags, body)
	if err != nil {
		res.Err = err
		return res
	}

	id, err := s.docs.Create(ctx, doc)
	if err != nil {
		res.Err = fmt.Errorf("store document: %w", err)
		return res
	}
	res.DocumentID = id

	texts := ChunkText(body, MinChunkWords, MaxChunkWords)
	emb, err := s.embed.BatchEmbed(ctx, texts)
	if err != nil {
		res.Err = fmt.Errorf("embed chunks: %w", err)
		return res
	}
	if len(emb.Embeddings) != len(texts) {
		res.Err = fmt.Errorf("embed chunks: got %d vectors for %d chunks", len(emb.Embeddings), len(texts))
		return res
	}

	chunks := make([]document.Chunk, len(texts))
	for i, t := range texts {
		chunks[i] = document.Chunk{DocumentID: id, Text: t, Embedding: emb.Embeddings[i]}
	}
	if err := s.chunks.InsertChunks(ctx, chunks); err != nil {
		res.Err = fmt.Errorf("store chunks: %w", err)
		return res
	}
	res.Chunks = len(chunks)

	s.logger.Info("document ingested",
		zap.String("file", name),
		zap.String("title", meta.Title),
		zap.Int64("document_id", id),
		zap.Int("chunks", len(chunks)),
	)
	return res
}
