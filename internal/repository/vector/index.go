package vector

import (
	"context"
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"github.com/kailas-cloud/hybridqa/internal/db"
	"github.com/kailas-cloud/hybridqa/internal/domain"
	"github.com/kailas-cloud/hybridqa/internal/domain/document"
	"github.com/kailas-cloud/hybridqa/internal/domain/hit"
)

// Field names shared by both collection layouts.
const (
	FieldID         = "id"
	FieldDocumentID = "document_id"
	FieldText       = "text"
	FieldEmbedding  = "embedding"

	maxTextLength = 4096
)

// Kind selects the collection layout.
type Kind int

const (
	// KindChunks stores document chunks: auto id, document_id, text, embedding.
	KindChunks Kind = iota
	// KindRecords stores one vector per relational row, keyed by the row id.
	KindRecords
)

// Config describes one collection.
type Config struct {
	Name       string
	Kind       Kind
	Dimensions int
	NList      int
	NProbe     int
}

// Index is a cosine ANN collection in Milvus.
type Index struct {
	client Client
	cfg    Config
}

// NewIndex creates an Index. Zero NList/NProbe fall back to 128/10.
func NewIndex(c Client, cfg Config) *Index {
	if cfg.NList <= 0 {
		cfg.NList = 128
	}
	if cfg.NProbe <= 0 {
		cfg.NProbe = 10
	}
	return &Index{client: c, cfg: cfg}
}

// Name returns the collection name.
func (x *Index) Name() string { return x.cfg.Name }

// Ensure creates the collection and its IVF_FLAT index when missing, then loads it.
func (x *Index) Ensure(ctx context.Context) error {
	exists, err := x.client.HasCollection(ctx, x.cfg.Name)
	if err != nil {
		return &db.Error{Op: db.OpEnsureCollect, Err: err}
	}

	if !exists {
		if err := x.client.CreateCollection(ctx, x.schema(), entity.DefaultShardNumber); err != nil {
			return &db.Error{Op: db.OpEnsureCollect, Err: fmt.Errorf("create %s: %w", x.cfg.Name, err)}
		}
		idx, err := entity.NewIndexIvfFlat(entity.COSINE, x.cfg.NList)
		if err != nil {
			return fmt.Errorf("build index params: %w", err)
		}
		if err := x.client.CreateIndex(ctx, x.cfg.Name, FieldEmbedding, idx, false); err != nil {
			return &db.Error{Op: db.OpEnsureCollect, Err: fmt.Errorf("create index: %w", err)}
		}
	}

	if err := x.client.LoadCollection(ctx, x.cfg.Name, false); err != nil {
		return &db.Error{Op: db.OpEnsureCollect, Err: fmt.Errorf("load %s: %w", x.cfg.Name, err)}
	}
	return nil
}

func (x *Index) schema() *entity.Schema {
	dim := strconv.Itoa(x.cfg.Dimensions)
	fields := []*entity.Field{
		{Name: FieldID, DataType: entity.FieldTypeInt64, PrimaryKey: true, AutoID: x.cfg.Kind == KindChunks},
	}
	if x.cfg.Kind == KindChunks {
		fields = append(fields,
			&entity.Field{Name: FieldDocumentID, DataType: entity.FieldTypeInt64},
			&entity.Field{
				Name:       FieldText,
				DataType:   entity.FieldTypeVarChar,
				TypeParams: map[string]string{"max_length": strconv.Itoa(maxTextLength)},
			},
		)
	}
	fields = append(fields, &entity.Field{
		Name:       FieldEmbedding,
		DataType:   entity.FieldTypeFloatVector,
		TypeParams: map[string]string{"dim": dim},
	})

	return &entity.Schema{
		CollectionName: x.cfg.Name,
		Description:    "hybridqa embeddings",
		Fields:         fields,
	}
}

// Search returns up to topK nearest neighbours in the index's native order
// (descending cosine similarity). No threshold is applied.
func (x *Index) Search(ctx context.Context, vec []float32, topK int) ([]hit.Hit, error) {
	if err := domain.CheckDimensions(vec, x.cfg.Dimensions); err != nil {
		return nil, err
	}

	sp, err := entity.NewIndexIvfFlatSearchParam(x.cfg.NProbe)
	if err != nil {
		return nil, fmt.Errorf("build search params: %w", err)
	}

	var output []string
	if x.cfg.Kind == KindChunks {
		output = []string{FieldDocumentID, FieldText}
	}

	results, err := x.client.Search(
		ctx, x.cfg.Name, []string{}, "", output,
		[]entity.Vector{entity.FloatVector(vec)},
		FieldEmbedding, entity.COSINE, topK, sp,
	)
	if err != nil {
		return nil, &db.Error{Op: db.OpVectorSearch, Err: err}
	}
	if len(results) == 0 {
		return []hit.Hit{}, nil
	}
	if results[0].Err != nil {
		return nil, &db.Error{Op: db.OpVectorSearch, Err: results[0].Err}
	}
	return toHits(results[0])
}

func toHits(res client.SearchResult) ([]hit.Hit, error) {
	if res.ResultCount == 0 || res.IDs == nil {
		return []hit.Hit{}, nil
	}
	idCol, ok := res.IDs.(*entity.ColumnInt64)
	if !ok {
		return nil, fmt.Errorf("unexpected id column type %T", res.IDs)
	}
	ids := idCol.Data()

	var (
		docIDs []int64
		texts  []string
	)
	for _, col := range res.Fields {
		switch c := col.(type) {
		case *entity.ColumnInt64:
			if c.Name() == FieldDocumentID {
				docIDs = c.Data()
			}
		case *entity.ColumnVarChar:
			if c.Name() == FieldText {
				texts = c.Data()
			}
		}
	}

	n := min(res.ResultCount, len(ids), len(res.Scores))
	hits := make([]hit.Hit, 0, n)
	for i := 0; i < n; i++ {
		var (
			docID int64
			text  string
		)
		if i < len(docIDs) {
			docID = docIDs[i]
		}
		if i < len(texts) {
			text = texts[i]
		}
		hits = append(hits, hit.NewChunk(ids[i], float64(res.Scores[i]), docID, text))
	}
	return hits, nil
}

// InsertChunks stores document chunks. Valid only for KindChunks.
func (x *Index) InsertChunks(ctx context.Context, chunks []document.Chunk) error {
	if x.cfg.Kind != KindChunks {
		return fmt.Errorf("collection %s does not store chunks", x.cfg.Name)
	}
	if len(chunks) == 0 {
		return nil
	}

	docIDs := make([]int64, len(chunks))
	texts := make([]string, len(chunks))
	vecs := make([][]float32, len(chunks))
	for i, c := range chunks {
		if err := domain.CheckDimensions(c.Embedding, x.cfg.Dimensions); err != nil {
			return fmt.Errorf("chunk %d: %w", i, err)
		}
		docIDs[i] = c.DocumentID
		texts[i] = truncateUTF8(c.Text, maxTextLength)
		vecs[i] = c.Embedding
	}

	_, err := x.client.Insert(ctx, x.cfg.Name, "",
		entity.NewColumnInt64(FieldDocumentID, docIDs),
		entity.NewColumnVarChar(FieldText, texts),
		entity.NewColumnFloatVector(FieldEmbedding, x.cfg.Dimensions, vecs),
	)
	if err != nil {
		return &db.Error{Op: db.OpVectorInsert, Err: err}
	}
	return x.flush(ctx)
}

// UpsertVectors stores one vector per record id. Valid only for KindRecords.
func (x *Index) UpsertVectors(ctx context.Context, ids []int64, vecs [][]float32) error {
	if x.cfg.Kind != KindRecords {
		return fmt.Errorf("collection %s does not store record vectors", x.cfg.Name)
	}
	if len(ids) != len(vecs) {
		return fmt.Errorf("ids/vectors length mismatch: %d != %d", len(ids), len(vecs))
	}
	if len(ids) == 0 {
		return nil
	}
	for i, v := range vecs {
		if err := domain.CheckDimensions(v, x.cfg.Dimensions); err != nil {
			return fmt.Errorf("record %d: %w", ids[i], err)
		}
	}

	_, err := x.client.Upsert(ctx, x.cfg.Name, "",
		entity.NewColumnInt64(FieldID, ids),
		entity.NewColumnFloatVector(FieldEmbedding, x.cfg.Dimensions, vecs),
	)
	if err != nil {
		return &db.Error{Op: db.OpVectorUpsert, Err: err}
	}
	return x.flush(ctx)
}

func (x *Index) flush(ctx context.Context) error {
	if err := x.client.Flush(ctx, x.cfg.Name, false); err != nil {
		return fmt.Errorf("flush %s: %w", x.cfg.Name, err)
	}
	return nil
}

// truncateUTF8 cuts s to at most limit bytes on a rune boundary; Milvus
// max_length counts bytes.
func truncateUTF8(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
