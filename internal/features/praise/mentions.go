// Package praise — mentions.go разбирает упоминания в тексте команды.
// Slack подставляет упоминания в виде <@U12345> (иногда <@U12345|name>),
// но люди нередко пишут @username руками — такие тоже разрешаем,
// сверяя имя с директорией воркспейса.
package praise

import (
	"context"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/kpr-it/slack-hloppy/internal/chat"
)

// Directory — нужная парсеру часть директории пользователей.
type Directory interface {
	UserByID(ctx context.Context, id string) (chat.User, error)
	ListUsers(ctx context.Context) ([]chat.User, error)
}

// Mention — одно распознанное упоминание.
type Mention struct {
	UserID string
	Text   string // как показывать в ответе: всегда <@ID>
	End    int    // позиция сразу за упоминанием; текст похвалы идёт после последнего
}

// MentionParser разбирает упоминания, проверяя их по директории.
type MentionParser struct {
	directory Directory
}

// NewMentionParser создаёт парсер упоминаний.
func NewMentionParser(directory Directory) *MentionParser {
	return &MentionParser{directory: directory}
}

// Parse находит все валидные упоминания в тексте слева направо.
// Невалидные кандидаты (несуществующие и удалённые пользователи)
// просто пропускаются.
func (p *MentionParser) Parse(ctx context.Context, text string) []Mention {
	var mentions []Mention
	pos := 0

	for {
		idx := strings.Index(text[pos:], "@")
		if idx == -1 {
			break
		}
		start := pos + idx

		mention, ok := p.parseOne(ctx, text, start)
		if ok {
			mentions = append(mentions, mention)
			pos = mention.End
		} else {
			pos = start + 1
		}
	}
	return mentions
}

// parseOne пытается разобрать одно упоминание, начинающееся с @ на позиции start.
func (p *MentionParser) parseOne(ctx context.Context, text string, start int) (Mention, bool) {
	// Формат Slack: <@U12345> или <@U12345|username>
	if start > 0 && text[start-1] == '<' {
		end := strings.Index(text[start:], ">")
		if end != -1 {
			end += start
			userID := text[start+1 : end]
			if bar := strings.Index(userID, "|"); bar != -1 {
				userID = userID[:bar]
			}
			userID = strings.TrimSpace(userID)
			if p.verifyUser(ctx, userID) {
				return Mention{
					UserID: userID,
					Text:   "<@" + userID + ">",
					End:    end + 1,
				}, true
			}
		}
		return Mention{}, false
	}

	// Сырое @username до следующего пробела
	next := strings.Index(text[start:], " ")
	if next == -1 {
		return Mention{}, false
	}
	next += start

	username := strings.TrimSpace(text[start+1 : next])
	userID := p.findUserByName(ctx, username)
	if userID == "" {
		return Mention{}, false
	}
	return Mention{
		UserID: userID,
		Text:   "<@" + userID + ">",
		End:    next,
	}, true
}

// verifyUser проверяет, что пользователь существует и не удалён.
func (p *MentionParser) verifyUser(ctx context.Context, userID string) bool {
	if userID == "" {
		return false
	}
	user, err := p.directory.UserByID(ctx, userID)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Debug("Пользователь не подтверждён")
		return false
	}
	return !user.Deleted
}

// findUserByName ищет пользователя по username, полному или отображаемому имени.
// Сравнение без учёта регистра; совпадение по одному слову полного имени
// тоже считается (люди пишут @Ваня вместо @Иван Петров).
func (p *MentionParser) findUserByName(ctx context.Context, username string) string {
	users, err := p.directory.ListUsers(ctx)
	if err != nil {
		log.WithError(err).Error("Не удалось получить список пользователей")
		return ""
	}

	needle := strings.ToLower(username)
	for _, user := range users {
		if user.Deleted {
			continue
		}
		if strings.ToLower(user.Name) == needle ||
			strings.ToLower(user.RealName) == needle ||
			strings.ToLower(user.DisplayName) == needle {
			return user.ID
		}
		for _, word := range strings.Fields(strings.ToLower(user.RealName)) {
			if word == needle {
				return user.ID
			}
		}
	}
	return ""
}

// ExtractMessage возвращает текст похвалы — всё после последнего упоминания.
func ExtractMessage(text string, lastMentionEnd int) string {
	if lastMentionEnd < 0 || lastMentionEnd > len(text) {
		return ""
	}
	return strings.TrimSpace(text[lastMentionEnd:])
}
