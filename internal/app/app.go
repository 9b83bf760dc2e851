// Package app инициализирует все компоненты приложения.
// app.go — точка сборки: создаёт Slack-клиент, репозиторий, сервисы,
// обработчики и собирает всё в один объект Bot.
package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/kpr-it/slack-hloppy/internal/bot"
	"github.com/kpr-it/slack-hloppy/internal/chat"
	"github.com/kpr-it/slack-hloppy/internal/config"
	"github.com/kpr-it/slack-hloppy/internal/features/praise"
	"github.com/kpr-it/slack-hloppy/internal/jobs"
)

// App содержит все компоненты приложения.
type App struct {
	Bot       *bot.Bot
	Scheduler *jobs.Scheduler
	Chat      *chat.Client
}

// New создаёт и инициализирует приложение.
// Порядок инициализации важен — компоненты зависят друг от друга.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	// === 1. Slack ===
	client := chat.New(cfg)
	botName, err := client.AuthTest(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка авторизации в Slack: %w", err)
	}
	log.Infof("Авторизован как @%s", botName)

	// === 2. Репозиторий ===
	repo := praise.NewRepository(cfg.DataFile)

	// === 3. Сервисы ===
	praiseService := praise.NewService(repo, cfg)

	// === 4. Обработчики ===
	praiseHandler := praise.NewHandler(praiseService, client, client, cfg)

	// === 5. Собираем бота ===
	b := bot.New(client, cfg, praiseHandler)

	// === 6. Планировщик задач ===
	scheduler := jobs.NewScheduler(cfg, praiseHandler.PostLeaderboard)

	return &App{
		Bot:       b,
		Scheduler: scheduler,
		Chat:      client,
	}, nil
}
