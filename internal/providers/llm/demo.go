package llm

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/sandevgo/chatassist/internal/core"
)

const demoModel = "demo-model"

var demoFallbacks = []string{
	"Hello! I'm a demo AI assistant. Your Azure AI Foundry project needs a model deployment to work with real AI responses.",
	"This is a simulated response! Once you deploy a model in Azure AI Foundry, I'll provide real AI-powered answers.",
	"Great question! I'm currently in demo mode. Deploy a model like GPT-4 in your Azure AI Foundry project to unlock my full capabilities.",
	"I understand you're testing the chat interface. Everything looks good! Just deploy a model in Azure AI Foundry to get started.",
	"This chat interface is working perfectly! The only missing piece is deploying a model in your Azure AI Foundry project.",
}

// Demo answers with canned text and never touches the network. It lets the
// front-ends run without any model deployment.
type Demo struct {
	minDelay time.Duration
	maxDelay time.Duration

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewDemo(minDelay, maxDelay time.Duration) *Demo {
	if maxDelay < minDelay {
		maxDelay = minDelay
	}
	return &Demo{
		minDelay: minDelay,
		maxDelay: maxDelay,
		rnd:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (d *Demo) Model() string {
	return demoModel
}

func (d *Demo) Send(ctx context.Context, messages []Message, _ int, _ float64) (core.CompletionResult, error) {
	var input string
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == string(core.RoleUser) {
			input = messages[i].Content
			break
		}
	}

	d.mu.Lock()
	delay := d.minDelay
	if span := d.maxDelay - d.minDelay; span > 0 {
		delay += time.Duration(d.rnd.Int63n(int64(span)))
	}
	fallback := demoFallbacks[d.rnd.Intn(len(demoFallbacks))]
	d.mu.Unlock()

	if delay > 0 {
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return core.CompletionResult{}, newTransportError(ctx.Err())
		case <-timer.C:
		}
	}

	reply := demoReply(input, fallback)
	text := "🎭 **DEMO MODE**: " + reply +
		"\n\n💡 **Next Step**: Deploy a model in Azure AI Foundry to enable real AI responses!"

	total := len(input) + len(reply)
	return core.CompletionResult{
		Text:         text,
		Model:        demoModel,
		FinishReason: "stop",
		Usage:        core.Usage{TotalTokens: total},
	}, nil
}

func demoReply(input, fallback string) string {
	lower := strings.ToLower(input)
	switch {
	case strings.Contains(lower, "hello") || strings.Contains(lower, "hi"):
		return "Hello! I'm your demo AI assistant. Deploy a model in Azure AI Foundry to unlock real AI conversations!"
	case strings.Contains(lower, "deploy") || strings.Contains(lower, "model"):
		return "To deploy a model: Go to ai.azure.com → Your Project → Deployments → Create New Deployment → Choose a model like GPT-4"
	case strings.Contains(lower, "test"):
		return "Test successful! ✅ Your chat interface is working perfectly. Just need that model deployment!"
	case len(input) > 50:
		return "I can see you're writing detailed messages! Once you deploy a model, I'll be able to provide thoughtful, detailed responses to match."
	default:
		return fallback
	}
}
