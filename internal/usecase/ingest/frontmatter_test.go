package ingest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var today = time.Date(2025, 10, 1, 15, 30, 0, 0, time.UTC)

func TestParseFrontmatter_Full(t *testing.T) {
	raw := "---\ntitle: Q1 Planning Meeting\ndate: 2025-01-15\ntopic: Product Roadmap\ntags: planning, roadmap, q1\n---\n\nWe agreed on the roadmap.\n"

	meta, body, err := ParseFrontmatter(raw, "q1.md", today)
	require.NoError(t, err)

	assert.Equal(t, "Q1 Planning Meeting", meta.Title)
	assert.Equal(t, "Product Roadmap", meta.Topic)
	assert.Equal(t, []string{"planning", "roadmap", "q1"}, meta.Tags)
	assert.Equal(t, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), meta.Date)
	assert.Equal(t, "We agreed on the roadmap.", body)
}

func TestParseFrontmatter_TagSequence(t *testing.T) {
	raw := "---\ntags: [infra, milvus]\n---\nbody"

	meta, _, err := ParseFrontmatter(raw, "x.md", today)
	require.NoError(t, err)
	assert.Equal(t, []string{"infra", "milvus"}, meta.Tags)
}

func TestParseFrontmatter_Defaults(t *testing.T) {
	meta, body, err := ParseFrontmatter("  Plain notes.  ", "weekly_sync-notes.txt", today)
	require.NoError(t, err)

	assert.Equal(t, "Weekly Sync Notes", meta.Title)
	assert.Equal(t, "General", meta.Topic)
	assert.Empty(t, meta.Tags)
	assert.NotNil(t, meta.Tags)
	assert.Equal(t, time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC), meta.Date)
	assert.Equal(t, "Plain notes.", body)
}

func TestParseFrontmatter_CRLF(t *testing.T) {
	raw := "---\r\ntitle: Retro\r\n---\r\nWent well."

	meta, body, err := ParseFrontmatter(raw, "r.md", today)
	require.NoError(t, err)
	assert.Equal(t, "Retro", meta.Title)
	assert.Equal(t, "Went well.", body)
}

func TestParseFrontmatter_BadDate(t *testing.T) {
	_, _, err := ParseFrontmatter("---\ndate: yesterday\n---\nbody", "x.md", today)
	assert.Error(t, err)
}

func TestParseFrontmatter_OnlyFrontmatter(t *testing.T) {
	_, body, err := ParseFrontmatter("---\ntitle: Empty\n---\n   \n", "x.md", today)
	require.NoError(t, err)
	assert.Empty(t, body)
}
