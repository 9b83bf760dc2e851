// Package praise — handlers.go обрабатывает команды /hloppy и /stats
// и публикацию таблицы лидеров по расписанию.
// Пользовательские тексты английские — воркспейс международный.
package praise

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
	slackapi "github.com/slack-go/slack"

	"github.com/kpr-it/slack-hloppy/internal/chat"
	"github.com/kpr-it/slack-hloppy/internal/common"
	"github.com/kpr-it/slack-hloppy/internal/config"
)

// Messenger — нужная обработчику часть мессенджера.
type Messenger interface {
	PostMessage(ctx context.Context, channelID, fallback string, blocks []slackapi.Block) error
	ChannelByName(ctx context.Context, name string) (chat.Channel, error)
}

// Тексты ответов пользователю.
const (
	usageText = "Please mention one or more people using @ and write your praise message.\n" +
		"Format: `/hloppy @Person1 @Person2 Your praise message`"
	noMentionsText = "Could not find any valid users to praise. " +
		"Please make sure you're mentioning active Slack users."
	emptyMessageText = "Please provide a praise message after mentioning the people.\n" +
		"Format: `/hloppy @Person1 @Person2 Your praise message`"
	truncatedText = "Weekly praise limit reached. Some praises were not recorded."
	genericError  = "An error occurred while processing your praise. " +
		"Please try again or contact support if the issue persists."

	standingsIntro = "Below you can see the statistics of praises in our team.\n" +
		"Each person's score is calculated as the sum of praises received and given.\n"
	standingsHeader = "*🏆 Current Standings:*"
	standingsEmpty  = "_No praises have been given yet. Be the first to praise someone using_ " +
		"`/hloppy @username Your praise message`!"
)

// Handler обрабатывает команды похвал.
type Handler struct {
	service   *Service
	parser    *MentionParser
	directory Directory
	messenger Messenger
	cfg       *config.Config
}

// NewHandler создаёт обработчик.
func NewHandler(service *Service, directory Directory, messenger Messenger, cfg *config.Config) *Handler {
	return &Handler{
		service:   service,
		parser:    NewMentionParser(directory),
		directory: directory,
		messenger: messenger,
		cfg:       cfg,
	}
}

// HandlePraise — команда /hloppy: разбор упоминаний, проверка лимита,
// запись похвал и уведомление в канал по одной на каждую записанную похвалу.
func (h *Handler) HandlePraise(ctx context.Context, userID, channelID, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		h.reply(ctx, channelID, usageText)
		return
	}

	mentions := h.parser.Parse(ctx, text)
	if len(mentions) == 0 {
		h.reply(ctx, channelID, noMentionsText)
		return
	}

	message := ExtractMessage(text, mentions[len(mentions)-1].End)
	targets := make([]string, 0, len(mentions))
	for _, m := range mentions {
		targets = append(targets, m.UserID)
	}

	result, err := h.service.GivePraise(ctx, userID, targets, message)
	if err != nil {
		h.replyRejection(ctx, userID, channelID, err)
		return
	}

	mentionByID := make(map[string]string, len(mentions))
	for _, m := range mentions {
		mentionByID[m.UserID] = m.Text
	}

	for _, rec := range result.Recorded {
		h.announcePraise(ctx, channelID, userID, rec, mentionByID[rec.Target], message)
	}
	if result.Truncated {
		h.reply(ctx, channelID, truncatedText)
	}
}

// replyRejection переводит ошибку валидации в понятный пользователю отказ.
func (h *Handler) replyRejection(ctx context.Context, userID, channelID string, err error) {
	switch {
	case errors.Is(err, common.ErrNoMentions):
		h.reply(ctx, channelID, noMentionsText)
	case errors.Is(err, common.ErrEmptyMessage):
		h.reply(ctx, channelID, emptyMessageText)
	case errors.Is(err, common.ErrWeeklyLimit):
		used := h.service.WeeklyUsed(ctx, userID)
		h.reply(ctx, channelID, fmt.Sprintf(
			"You've reached your weekly limit of %d praises. "+
				"Please wait until next week to give more praises! (Current count: %d)",
			h.cfg.WeeklyPraiseLimit, used))
	case errors.Is(err, common.ErrTooManyMentions):
		remaining := h.service.Remaining(ctx, userID)
		h.reply(ctx, channelID, fmt.Sprintf(
			"You can only give %s more this week. "+
				"Please mention fewer people or wait until next week.",
			common.FormatRemaining(remaining)))
	default:
		log.WithError(err).WithField("user_id", userID).Error("Ошибка обработки похвалы")
		h.reply(ctx, channelID, genericError)
	}
}

// announcePraise публикует уведомление об одной записанной похвале.
func (h *Handler) announcePraise(ctx context.Context, channelID, fromUser string, rec Recorded, targetMention, message string) {
	if targetMention == "" {
		targetMention = "<@" + rec.Target + ">"
	}

	blocks := []slackapi.Block{
		slackapi.NewSectionBlock(
			slackapi.NewTextBlockObject(slackapi.MarkdownType, "🌟 *New Praise Alert!*", false, false),
			nil, nil),
		slackapi.NewSectionBlock(
			slackapi.NewTextBlockObject(slackapi.MarkdownType,
				fmt.Sprintf("*<@%s>* praised *%s*:\n>%s", fromUser, targetMention, message),
				false, false),
			nil, nil),
		slackapi.NewContextBlock("",
			slackapi.NewTextBlockObject(slackapi.MarkdownType,
				fmt.Sprintf("This is praise #%d for %s (You have %s remaining this week)",
					rec.ReceivedTotal, targetMention, common.FormatRemaining(rec.RemainingAfter)),
				false, false)),
	}

	// Запасной текст для пуш-уведомлений. Имена берём из директории,
	// но её недоступность не должна сломать уже записанную похвалу.
	fallback := fmt.Sprintf("🌟 %s praised %s: %s",
		h.displayName(ctx, fromUser), h.displayName(ctx, rec.Target), message)

	if err := h.messenger.PostMessage(ctx, channelID, fallback, blocks); err != nil {
		log.WithError(err).WithField("channel_id", channelID).Error("Не удалось отправить уведомление о похвале")
	}
}

// displayName возвращает полное имя пользователя, а при сбое директории — упоминание.
func (h *Handler) displayName(ctx context.Context, userID string) string {
	user, err := h.directory.UserByID(ctx, userID)
	if err != nil || user.RealName == "" {
		return "<@" + userID + ">"
	}
	return user.RealName
}

// HandleStats — команда /stats: отвечает таблицей лидеров в тот же канал.
func (h *Handler) HandleStats(ctx context.Context, channelID string) {
	blocks, fallback := h.standingsBlocks(ctx)
	if err := h.messenger.PostMessage(ctx, channelID, fallback, blocks); err != nil {
		log.WithError(err).WithField("channel_id", channelID).Error("Не удалось отправить статистику")
	}
}

// PostLeaderboard публикует таблицу лидеров в общий канал.
// Вызывается планировщиком.
func (h *Handler) PostLeaderboard(ctx context.Context) {
	channel, err := h.messenger.ChannelByName(ctx, h.cfg.LeaderboardChannel)
	if err != nil {
		log.WithError(err).WithField("channel", h.cfg.LeaderboardChannel).
			Error("Не удалось найти канал для таблицы лидеров")
		return
	}

	blocks, fallback := h.standingsBlocks(ctx)
	if err := h.messenger.PostMessage(ctx, channel.ID, fallback, blocks); err != nil {
		log.WithError(err).WithField("channel_id", channel.ID).Error("Не удалось опубликовать таблицу лидеров")
		return
	}
	log.WithField("channel", channel.Name).Info("Таблица лидеров опубликована")
}

// standingsBlocks собирает блоки таблицы лидеров и запасной текст.
func (h *Handler) standingsBlocks(ctx context.Context) ([]slackapi.Block, string) {
	stats := h.service.Standings(ctx)

	blocks := []slackapi.Block{
		slackapi.NewSectionBlock(
			slackapi.NewTextBlockObject(slackapi.MarkdownType, standingsIntro, false, false),
			nil, nil),
		slackapi.NewSectionBlock(
			slackapi.NewTextBlockObject(slackapi.MarkdownType, standingsHeader, false, false),
			nil, nil),
	}

	fallback := standingsIntro
	if len(stats) == 0 {
		blocks = append(blocks, slackapi.NewSectionBlock(
			slackapi.NewTextBlockObject(slackapi.MarkdownType, standingsEmpty, false, false),
			nil, nil))
		return blocks, fallback + standingsEmpty
	}

	for _, s := range stats {
		line := fmt.Sprintf("• <@%s>: %d received + %d given = %d total",
			s.UserID, s.Received, s.Given, s.Total)
		blocks = append(blocks, slackapi.NewSectionBlock(
			slackapi.NewTextBlockObject(slackapi.MarkdownType, line, false, false),
			nil, nil))
		fallback += line + "\n"
	}
	return blocks, fallback
}

// reply отправляет простой текстовый ответ в канал.
func (h *Handler) reply(ctx context.Context, channelID, text string) {
	if err := h.messenger.PostMessage(ctx, channelID, text, nil); err != nil {
		log.WithError(err).WithField("channel_id", channelID).Error("Ошибка отправки сообщения")
	}
}
