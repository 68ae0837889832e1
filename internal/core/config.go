package core

type PromptConfig interface {
	GetSystemPath() string
	GetSystemPrompt() string
}

// Status is a point-in-time view of the assistant settings shown by the
// front-ends.
type Status struct {
	Title          string  `json:"title"`
	Provider       string  `json:"provider"`
	Model          string  `json:"model"`
	Temperature    float64 `json:"temperature"`
	MaxTokens      int     `json:"max_tokens"`
	HistoryLimit   int     `json:"history_limit"`
	RAGEnabled     bool    `json:"rag_enabled"`
	SearchIndex    string  `json:"search_index,omitempty"`
	SearchType     string  `json:"search_type,omitempty"`
	Messages       int     `json:"messages"`
	TotalChars     int     `json:"total_chars"`
	EstimatedToken int     `json:"estimated_tokens"`
	DemoMode       bool    `json:"demo_mode"`
}
