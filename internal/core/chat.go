package core

import "context"

// ChatService is what the front-ends need from the orchestration layer.
type ChatService interface {
	Run(ctx context.Context, sessionID, input string) (CompletionResult, error)
	Clear(sessionID string)
	History(sessionID string) []Turn
	Status(sessionID string) Status
	UserMessage(err error) string
}
