package document

import (
	"context"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/kailas-cloud/hybridqa/internal/db"
	domdoc "github.com/kailas-cloud/hybridqa/internal/domain/document"
)

type row struct {
	ID      int64          `gorm:"primaryKey;column:id"`
	Title   string         `gorm:"column:title"`
	Date    *time.Time     `gorm:"column:date;type:date"`
	Topic   string         `gorm:"column:topic"`
	Tags    pq.StringArray `gorm:"column:tags;type:text[]"`
	Content string         `gorm:"column:content"`
}

func (row) TableName() string { return "documents" }

// Repo stores ingested documents in postgres.
type Repo struct {
	db *gorm.DB
}

// New creates a document repository.
func New(gdb *gorm.DB) *Repo {
	return &Repo{db: gdb}
}

// Create inserts the document and returns the assigned id.
func (r *Repo) Create(ctx context.Context, doc domdoc.Document) (int64, error) {
	rw := row{
		Title:   doc.Title(),
		Topic:   doc.Topic(),
		Tags:    pq.StringArray(doc.Tags()),
		Content: doc.Content(),
	}
	if d := doc.Date(); !d.IsZero() {
		rw.Date = &d
	}
	if rw.Tags == nil {
		rw.Tags = pq.StringArray{}
	}

	if err := r.db.WithContext(ctx).Create(&rw).Error; err != nil {
		return 0, &db.Error{Op: db.OpInsert, Err: err}
	}
	return rw.ID, nil
}
