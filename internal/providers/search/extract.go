package search

import (
	"fmt"
	"sort"
	"strings"

	"github.com/inbucket/html2text"
	"github.com/sandevgo/chatassist/internal/core"
)

const noContent = "No content available"

var (
	contentFields = []string{"content", "text", "body", "description", "summary"}
	sourceFields  = []string{"source", "url", "filename", "title", "id"}
)

// document is one raw hit from the index. Field names depend on the index
// schema, so values stay untyped.
type document map[string]any

func (d document) str(key string) string {
	v, ok := d[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case []any:
		parts := make([]string, 0, len(t))
		for _, p := range t {
			parts = append(parts, fmt.Sprint(p))
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(t)
	}
}

func (d document) first(keys []string) string {
	for _, k := range keys {
		if v := d.str(k); v != "" {
			return v
		}
	}
	return ""
}

func (d document) score() float64 {
	if s, ok := d["@search.score"].(float64); ok {
		return s
	}
	return 0
}

// content picks the snippet body: a known content field, then title + chunk,
// then every string field in key order.
func (d document) content() string {
	if v := d.first(contentFields); v != "" {
		return flatten(v)
	}

	if chunk := d.str("chunk"); chunk != "" {
		var parts []string
		if title := d.str("title"); title != "" {
			parts = append(parts, "Title: "+title)
		}
		parts = append(parts, flatten(chunk))
		return strings.Join(parts, " | ")
	}

	keys := make([]string, 0, len(d))
	for k, v := range d {
		if _, ok := v.(string); ok && !strings.HasPrefix(k, "@") {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		if v := d.str(k); v != "" {
			parts = append(parts, k+": "+v)
		}
	}
	if len(parts) == 0 {
		return noContent
	}
	return strings.Join(parts, " | ")
}

func (d document) snippet(n int) core.Snippet {
	source := d.first(sourceFields)
	if source == "" {
		source = fmt.Sprintf("Document %d", n)
	}
	return core.Snippet{
		SourceID: source,
		Title:    d.str("title"),
		Text:     d.content(),
		Score:    d.score(),
	}
}

// flatten turns indexed HTML into plain text. Anything that is not markup is
// returned unchanged.
func flatten(s string) string {
	if !strings.Contains(s, "<") || !strings.Contains(s, ">") {
		return s
	}
	text, err := html2text.FromString(s, html2text.Options{OmitLinks: true})
	if err != nil || strings.TrimSpace(text) == "" {
		return s
	}
	return strings.TrimSpace(text)
}

// toSnippets maps hits to snippets, orders them by descending score and keeps
// at most topK.
func toSnippets(docs []document, topK int) []core.Snippet {
	out := make([]core.Snippet, 0, len(docs))
	for i, d := range docs {
		out = append(out, d.snippet(i+1))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	if len(out) > topK {
		out = out[:topK]
	}
	return out
}
