// Package chat — обёртка над Slack Web API и Socket Mode.
// Ядру бота от Slack нужны четыре вещи: найти пользователя, перечислить
// пользователей, отправить сообщение и найти канал по имени. Всё остальное
// (блоки, сокеты) — детали транспорта.
package chat

import (
	"context"
	"fmt"

	slackapi "github.com/slack-go/slack"
	"github.com/slack-go/slack/socketmode"

	"github.com/kpr-it/slack-hloppy/internal/config"
)

// User — участник директории Slack.
type User struct {
	ID          string
	Name        string
	RealName    string
	DisplayName string
	Deleted     bool
}

// Channel — канал Slack.
type Channel struct {
	ID   string
	Name string
}

// Client объединяет Web API клиент и socket-mode соединение.
type Client struct {
	api    *slackapi.Client
	socket *socketmode.Client
}

// New создаёт клиент Slack. Socket Mode требует app-level токен.
func New(cfg *config.Config) *Client {
	api := slackapi.New(
		cfg.SlackBotToken,
		slackapi.OptionAppLevelToken(cfg.SlackAppToken),
	)
	return &Client{
		api:    api,
		socket: socketmode.New(api),
	}
}

// Socket возвращает socket-mode клиент для цикла событий.
func (c *Client) Socket() *socketmode.Client {
	return c.socket
}

// AuthTest проверяет токен и возвращает имя бота в воркспейсе.
func (c *Client) AuthTest(ctx context.Context) (string, error) {
	resp, err := c.api.AuthTestContext(ctx)
	if err != nil {
		return "", fmt.Errorf("auth.test: %w", err)
	}
	return resp.User, nil
}

// UserByID возвращает пользователя по его ID.
func (c *Client) UserByID(ctx context.Context, id string) (User, error) {
	info, err := c.api.GetUserInfoContext(ctx, id)
	if err != nil {
		return User{}, fmt.Errorf("users.info %s: %w", id, err)
	}
	return User{
		ID:          info.ID,
		Name:        info.Name,
		RealName:    info.RealName,
		DisplayName: info.Profile.DisplayName,
		Deleted:     info.Deleted,
	}, nil
}

// ListUsers возвращает всех пользователей воркспейса.
func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	members, err := c.api.GetUsersContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("users.list: %w", err)
	}

	users := make([]User, 0, len(members))
	for _, m := range members {
		users = append(users, User{
			ID:          m.ID,
			Name:        m.Name,
			RealName:    m.RealName,
			DisplayName: m.Profile.DisplayName,
			Deleted:     m.Deleted,
		})
	}
	return users, nil
}

// PostMessage отправляет сообщение в канал.
// fallback — плоский текст для уведомлений и клиентов без Block Kit.
func (c *Client) PostMessage(ctx context.Context, channelID, fallback string, blocks []slackapi.Block) error {
	opts := []slackapi.MsgOption{slackapi.MsgOptionText(fallback, false)}
	if len(blocks) > 0 {
		opts = append(opts, slackapi.MsgOptionBlocks(blocks...))
	}

	if _, _, err := c.api.PostMessageContext(ctx, channelID, opts...); err != nil {
		return fmt.Errorf("chat.postMessage %s: %w", channelID, err)
	}
	return nil
}

// ChannelByName ищет публичный канал по имени, листая страницы.
func (c *Client) ChannelByName(ctx context.Context, name string) (Channel, error) {
	params := &slackapi.GetConversationsParameters{
		Types:           []string{"public_channel"},
		ExcludeArchived: true,
		Limit:           200,
	}

	for {
		channels, cursor, err := c.api.GetConversationsContext(ctx, params)
		if err != nil {
			return Channel{}, fmt.Errorf("conversations.list: %w", err)
		}
		for _, ch := range channels {
			if ch.Name == name {
				return Channel{ID: ch.ID, Name: ch.Name}, nil
			}
		}
		if cursor == "" {
			return Channel{}, fmt.Errorf("канал %q не найден", name)
		}
		params.Cursor = cursor
	}
}
