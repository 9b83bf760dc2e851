// Package middleware содержит промежуточные обработчики для логирования,
// восстановления после паники и rate-limiting.
package middleware

import (
	"time"

	log "github.com/sirupsen/logrus"
	slackapi "github.com/slack-go/slack"

	"github.com/kpr-it/slack-hloppy/internal/common"
)

// LogCommand логирует входящую slash-команду.
// Записывает: user_id, channel_id, команду, текст (первые 50 символов).
func LogCommand(cmd slackapi.SlashCommand) {
	log.WithFields(log.Fields{
		"user_id":    cmd.UserID,
		"channel_id": cmd.ChannelID,
		"command":    cmd.Command,
		"text":       common.Truncate(cmd.Text, 50),
		"time":       time.Now().Format("15:04:05"),
	}).Debug("Входящая команда")
}
