package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/sandevgo/chatassist/internal/config"
	"github.com/sandevgo/chatassist/internal/core"
	"github.com/sandevgo/chatassist/internal/service/ui"
	"github.com/sandevgo/chatassist/pkg/log"
)

const defaultSessionID = "cli-local"

type ReadLine struct {
	cfg    *config.AppConfig
	chat   core.ChatService
	router core.CmdRouter
	rl     *readline.Instance
}

func NewReadLine(chat core.ChatService, router core.CmdRouter, cfg *config.AppConfig) (*ReadLine, error) {
	if err := os.MkdirAll(cfg.RuntimePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create runtime directory: %w", err)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "you › ",
		HistoryFile:     filepath.Join(cfg.RuntimePath, "input_history"),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, err
	}

	return &ReadLine{
		cfg:    cfg,
		chat:   chat,
		router: router,
		rl:     rl,
	}, nil
}

func (r *ReadLine) Start(ctx context.Context) error {
	out := r.rl.Stdout()
	fmt.Fprintln(out, ui.TitleStyle.Render(r.cfg.AppTitle))
	fmt.Fprintln(out, ui.DescStyle.Render("Type /help for commands, 'exit' to quit."))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line, err := r.rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				if len(line) == 0 {
					return nil
				}
				continue
			} else if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "exit" {
			return nil
		}
		if line == "" {
			continue
		}

		r.handle(ctx, out, line)
	}
}

// handle processes one input line and writes the reply to out.
func (r *ReadLine) handle(ctx context.Context, out io.Writer, line string) {
	if reply, ok := r.router.Execute(ctx, defaultSessionID, line); ok {
		fmt.Fprintln(out, reply)
		return
	}

	res, err := r.chat.Run(ctx, defaultSessionID, line)
	if err != nil {
		log.FromCtx(ctx).Debug().Err(err).Msg("agent run failed")
		fmt.Fprintln(out, ui.ErrorStyle.Render(r.chat.UserMessage(err)))
		return
	}

	fmt.Fprintf(out, "%s %s\n", ui.AssistantStyle.Render("assistant ›"), res.Text)
	if res.Usage.TotalTokens > 0 {
		fmt.Fprintln(out, ui.DescStyle.Render(fmt.Sprintf("(%d tokens)", res.Usage.TotalTokens)))
	}
}

func (r *ReadLine) Shutdown(ctx context.Context) error {
	if r.rl != nil {
		return r.rl.Close()
	}
	return nil
}
