package search

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseDoc(t *testing.T, raw string) document {
	t.Helper()
	var d document
	require.NoError(t, json.Unmarshal([]byte(raw), &d))
	return d
}

func TestDocumentSnippet(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		wantText   string
		wantSource string
	}{
		{
			name:       "content field",
			raw:        `{"@search.score": 2, "content": "Body text", "url": "https://x/doc"}`,
			wantText:   "Body text",
			wantSource: "https://x/doc",
		},
		{
			name:       "later content field wins when earlier empty",
			raw:        `{"content": "", "summary": "Short summary", "filename": "a.pdf"}`,
			wantText:   "Short summary",
			wantSource: "a.pdf",
		},
		{
			name:       "title and chunk",
			raw:        `{"title": "Pricing", "chunk": "Plan A costs 5"}`,
			wantText:   "Title: Pricing | Plan A costs 5",
			wantSource: "Pricing",
		},
		{
			name:       "chunk without title",
			raw:        `{"chunk": "only chunk", "id": "42"}`,
			wantText:   "only chunk",
			wantSource: "42",
		},
		{
			name:       "string fields sorted by key",
			raw:        `{"zeta": "last", "alpha": "first", "@search.rerankerScore": "x", "n": 3}`,
			wantText:   "alpha: first | zeta: last",
			wantSource: "Document 1",
		},
		{
			name:       "nothing usable",
			raw:        `{"n": 3}`,
			wantText:   noContent,
			wantSource: "Document 1",
		},
		{
			name:       "html flattened",
			raw:        `{"content": "<p>Hello world</p>"}`,
			wantText:   "Hello world",
			wantSource: "Document 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := parseDoc(t, tt.raw).snippet(1)
			assert.Equal(t, tt.wantText, s.Text)
			assert.Equal(t, tt.wantSource, s.SourceID)
		})
	}
}

func TestToSnippets_SortAndTruncate(t *testing.T) {
	docs := []document{
		{"content": "a", "@search.score": 1.0},
		{"content": "b", "@search.score": 5.0},
		{"content": "c", "@search.score": 1.0},
		{"content": "d"},
	}

	got := toSnippets(docs, 3)
	require.Len(t, got, 3)
	assert.Equal(t, "b", got[0].Text)
	assert.Equal(t, "a", got[1].Text)
	assert.Equal(t, "c", got[2].Text)
	assert.Equal(t, "Document 1", got[1].SourceID)
}

func TestFlatten_PlainTextUntouched(t *testing.T) {
	assert.Equal(t, "a < b", flatten("a < b"))
}
