// Package bot содержит главный модуль бота — цикл событий Socket Mode.
// bot.go принимает slash-команды, сразу подтверждает их (ack) и
// обрабатывает асинхронно с ограничением параллелизма.
package bot

import (
	"context"

	log "github.com/sirupsen/logrus"
	slackapi "github.com/slack-go/slack"
	"github.com/slack-go/slack/socketmode"

	"github.com/kpr-it/slack-hloppy/internal/bot/middleware"
	"github.com/kpr-it/slack-hloppy/internal/chat"
	"github.com/kpr-it/slack-hloppy/internal/config"
	"github.com/kpr-it/slack-hloppy/internal/features/praise"
)

// Bot — главная структура бота, объединяющая все компоненты.
type Bot struct {
	client *chat.Client
	cfg    *config.Config

	rateLimiter   *middleware.RateLimiter
	praiseHandler *praise.Handler

	// ограничитель параллелизма обработки команд
	inflight chan struct{}
}

// New создаёт новый экземпляр бота со всеми зависимостями.
func New(client *chat.Client, cfg *config.Config, praiseHandler *praise.Handler) *Bot {
	maxInFlight := cfg.BotMaxInflight
	if maxInFlight <= 0 {
		maxInFlight = 64
	}

	return &Bot{
		client:        client,
		cfg:           cfg,
		rateLimiter:   middleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow),
		praiseHandler: praiseHandler,
		inflight:      make(chan struct{}, maxInFlight),
	}
}

// Start запускает socket-mode соединение и цикл обработки событий.
// Блокируется до отмены контекста.
func (b *Bot) Start(ctx context.Context) error {
	go b.eventLoop(ctx)

	log.WithField("max_inflight", cap(b.inflight)).Info("Бот запущен и ожидает команды...")
	return b.client.Socket().RunContext(ctx)
}

// Close освобождает фоновые ресурсы.
func (b *Bot) Close() {
	b.rateLimiter.Close()
}

// eventLoop читает события socket-mode и раздаёт их обработчикам.
func (b *Bot) eventLoop(ctx context.Context) {
	events := b.client.Socket().Events

	for {
		select {
		case <-ctx.Done():
			log.Info("Бот останавливается (ctx done)...")
			return

		case evt, ok := <-events:
			if !ok {
				log.Info("Канал событий закрыт, бот остановлен")
				return
			}
			b.handleEvent(ctx, evt)
		}
	}
}

// handleEvent обрабатывает одно событие socket-mode.
func (b *Bot) handleEvent(ctx context.Context, evt socketmode.Event) {
	switch evt.Type {
	case socketmode.EventTypeConnecting:
		log.Info("Подключение к Slack (Socket Mode)...")

	case socketmode.EventTypeConnected:
		log.Info("Соединение с Slack установлено")

	case socketmode.EventTypeConnectionError:
		log.WithField("data", evt.Data).Error("Ошибка соединения с Slack")

	case socketmode.EventTypeSlashCommand:
		cmd, ok := evt.Data.(slackapi.SlashCommand)
		if !ok {
			return
		}

		// Подтверждаем сразу — Slack ждёт ack в пределах 3 секунд,
		// ответ пользователю уходит потом отдельным сообщением.
		if evt.Request != nil {
			b.client.Socket().Ack(*evt.Request)
		}

		middleware.LogCommand(cmd)

		if !b.rateLimiter.Allow(cmd.UserID) {
			log.WithField("user_id", cmd.UserID).Debug("rate limited")
			return
		}

		// лимит параллелизма
		b.inflight <- struct{}{}
		go func(cmd slackapi.SlashCommand) {
			defer func() { <-b.inflight }()
			defer middleware.RecoverFromPanic()
			b.routeCommand(ctx, cmd)
		}(cmd)
	}
}

// routeCommand маршрутизирует команду к нужному обработчику.
func (b *Bot) routeCommand(ctx context.Context, cmd slackapi.SlashCommand) {
	log.WithFields(log.Fields{
		"command": cmd.Command,
		"user_id": cmd.UserID,
	}).Debug("routing command")

	switch cmd.Command {
	case "/hloppy":
		b.praiseHandler.HandlePraise(ctx, cmd.UserID, cmd.ChannelID, cmd.Text)

	case "/stats":
		b.praiseHandler.HandleStats(ctx, cmd.ChannelID)

	default:
		log.WithField("command", cmd.Command).Debug("Неизвестная команда")
	}
}
