package web

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sandevgo/chatassist/internal/config"
	"github.com/sandevgo/chatassist/internal/core"
	"github.com/sandevgo/chatassist/internal/providers/llm"
	"github.com/sandevgo/chatassist/internal/service/agent"
	"github.com/sandevgo/chatassist/pkg/conv"
	"github.com/sandevgo/chatassist/pkg/log"
)

const maxMessageLen = 32 * 1024

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Reply     string     `json:"reply"`
	ReplyHTML string     `json:"reply_html"`
	Command   bool       `json:"command,omitempty"`
	Model     string     `json:"model,omitempty"`
	Usage     core.Usage `json:"usage"`
}

type turnView struct {
	core.Turn
	HTML string `json:"html"`
}

func (s *Server) index(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", gin.H{
		"Title": s.cfg.AppTitle,
		"Demo":  s.cfg.Provider == config.ProviderDemo,
	})
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"provider": s.cfg.Provider,
		"model":    s.cfg.GetModel(),
		"rag":      s.cfg.EnableRAG,
	})
}

func (s *Server) status(c *gin.Context) {
	c.JSON(http.StatusOK, s.chat.Status(sessionID(c)))
}

func (s *Server) history(c *gin.Context) {
	turns := s.chat.History(sessionID(c))
	out := make([]turnView, 0, len(turns))
	for _, t := range turns {
		v := turnView{Turn: t}
		if t.Role == core.RoleAssistant {
			v.HTML = conv.MarkdownToHTML([]byte(t.Text))
		}
		out = append(out, v)
	}
	c.JSON(http.StatusOK, gin.H{"messages": out})
}

func (s *Server) send(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if len(req.Message) > maxMessageLen {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "message too long"})
		return
	}

	ctx := c.Request.Context()
	id := sessionID(c)

	if reply, ok := s.router.Execute(ctx, id, req.Message); ok {
		c.JSON(http.StatusOK, chatResponse{
			Reply:     reply,
			ReplyHTML: conv.MarkdownToHTML([]byte(reply)),
			Command:   true,
		})
		return
	}

	res, err := s.chat.Run(ctx, id, req.Message)
	if err != nil {
		log.FromCtx(ctx).Warn().Err(err).Str("session", id).Msg("chat request failed")
		c.JSON(statusFor(err), gin.H{"error": s.chat.UserMessage(err)})
		return
	}

	c.JSON(http.StatusOK, chatResponse{
		Reply:     res.Text,
		ReplyHTML: conv.MarkdownToHTML([]byte(res.Text)),
		Model:     res.Model,
		Usage:     res.Usage,
	})
}

func (s *Server) clear(c *gin.Context) {
	s.chat.Clear(sessionID(c))
	c.JSON(http.StatusOK, gin.H{"cleared": true})
}

func statusFor(err error) int {
	var ce *llm.CompletionError
	switch {
	case errors.Is(err, agent.ErrEmptyMessage):
		return http.StatusBadRequest
	case errors.As(err, &ce) && ce.Kind == llm.KindTimeout:
		return http.StatusGatewayTimeout
	case errors.As(err, &ce) && ce.Kind == llm.KindRateLimit:
		return http.StatusTooManyRequests
	case errors.Is(err, context.Canceled):
		return 499
	default:
		return http.StatusBadGateway
	}
}
