package core

import "time"

const (
	AppName       = "ChatAssist"
	AppUserAgent  = "ChatAssist/0.1"
	AppVersion    = "0.1.0"
	RepositoryURL = "https://github.com/sandevgo/chatassist"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	}
	return false
}

// Turn is one message of a conversation. Treat it as a value: it is never
// modified after NewTurn returns it.
type Turn struct {
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

func NewTurn(role Role, text string) Turn {
	return Turn{Role: role, Text: text, Timestamp: time.Now()}
}

// Snippet is a piece of retrieved context used to ground a completion.
type Snippet struct {
	SourceID string  `json:"source_id"`
	Title    string  `json:"title,omitempty"`
	Text     string  `json:"text"`
	Score    float64 `json:"score"`
}

type CompletionRequest struct {
	SystemPrompt string
	Snippets     []Snippet
	Turns        []Turn
	MaxTokens    int
	Temperature  float64
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type CompletionResult struct {
	Text         string `json:"text"`
	Model        string `json:"model,omitempty"`
	FinishReason string `json:"finish_reason,omitempty"`
	Usage        Usage  `json:"usage"`
}
