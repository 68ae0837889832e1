package telegram

import (
	"context"
	"fmt"
	"time"

	"github.com/sandevgo/chatassist/internal/config"
	"github.com/sandevgo/chatassist/internal/core"
	"github.com/sandevgo/chatassist/pkg/log"
	tele "gopkg.in/telebot.v3"
)

const baseContextKey = "base_context"

type Bot struct {
	bot     *tele.Bot
	sender  *sender
	chat    core.ChatService
	router  core.CmdRouter
	title   string
	ownerID int64
}

func NewBot(
	ctx context.Context,
	cfg *config.TelegramConfig,
	appCfg *config.AppConfig,
	chat core.ChatService,
	router core.CmdRouter,
) (*Bot, error) {
	pref := tele.Settings{
		Token:  cfg.Token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}

	b, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	bot := &Bot{
		bot:     b,
		sender:  newSender(b),
		chat:    chat,
		router:  router,
		title:   appCfg.AppTitle,
		ownerID: cfg.OwnerID,
	}

	// carry the logger-bearing context into handlers
	b.Use(func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			c.Set(baseContextKey, ctx)
			return next(c)
		}
	})

	// only the owner may talk to the bot
	b.Use(func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if c.Sender() == nil || c.Sender().ID != bot.ownerID {
				return nil
			}
			return next(c)
		}
	})

	b.Handle("/start", bot.handleStart)
	b.Handle(tele.OnText, bot.handleMessage)

	return bot, nil
}

func (b *Bot) Start(ctx context.Context) error {
	log.FromCtx(ctx).Info().Msg("starting telegram bot")
	b.bot.Start()
	return nil
}

func (b *Bot) Shutdown(ctx context.Context) error {
	b.bot.Stop()
	return nil
}

func sessionFor(c tele.Context) string {
	return fmt.Sprintf("telegram-%d", c.Chat().ID)
}

func (b *Bot) handleStart(c tele.Context) error {
	ctx := c.Get(baseContextKey).(context.Context)
	text := fmt.Sprintf("**%s**\n\nSend a message to start. Type /help for commands.", b.title)
	return b.sender.sendMarkdown(ctx, c.Chat(), text, false)
}

func (b *Bot) handleMessage(c tele.Context) error {
	ctx := c.Get(baseContextKey).(context.Context)
	logger := log.FromCtx(ctx)
	sessionID := sessionFor(c)

	if reply, ok := b.router.Execute(ctx, sessionID, c.Text()); ok {
		return b.sender.sendMarkdown(ctx, c.Chat(), reply, true)
	}

	_ = c.Notify(tele.Typing)

	res, err := b.chat.Run(ctx, sessionID, c.Text())
	if err != nil {
		logger.Error().Err(err).Str("session", sessionID).Msg("agent run failed")
		return c.Send(b.chat.UserMessage(err))
	}

	return b.sender.sendMarkdown(ctx, c.Chat(), res.Text, false)
}
