package praise

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	slackapi "github.com/slack-go/slack"

	"github.com/kpr-it/slack-hloppy/internal/chat"
	"github.com/kpr-it/slack-hloppy/internal/config"
)

// fakeMessenger копит отправленные сообщения в памяти.
type fakeMessenger struct {
	posts    []postedMessage
	channels map[string]chat.Channel
}

type postedMessage struct {
	ChannelID string
	Fallback  string
	Blocks    []slackapi.Block
}

func (m *fakeMessenger) PostMessage(_ context.Context, channelID, fallback string, blocks []slackapi.Block) error {
	m.posts = append(m.posts, postedMessage{ChannelID: channelID, Fallback: fallback, Blocks: blocks})
	return nil
}

func (m *fakeMessenger) ChannelByName(_ context.Context, name string) (chat.Channel, error) {
	ch, ok := m.channels[name]
	if !ok {
		return chat.Channel{}, errors.New("channel_not_found")
	}
	return ch, nil
}

func newTestHandler(t *testing.T) (*Handler, *fakeMessenger, *Service) {
	t.Helper()
	repo := NewRepository(filepath.Join(t.TempDir(), "hloppy_data.json"))
	cfg := &config.Config{
		WeeklyPraiseLimit:  3,
		AppTimezone:        "UTC",
		LeaderboardChannel: "general",
	}
	service := NewService(repo, cfg)
	service.now = func() time.Time { return time.Date(2024, 1, 9, 12, 0, 0, 0, time.UTC) }

	messenger := &fakeMessenger{channels: map[string]chat.Channel{
		"general": {ID: "C1", Name: "general"},
	}}
	return NewHandler(service, testDirectory(), messenger, cfg), messenger, service
}

// TestHandlePraiseAnnouncesEachRecorded: по одному уведомлению на записанную похвалу.
func TestHandlePraiseAnnouncesEachRecorded(t *testing.T) {
	h, messenger, service := newTestHandler(t)
	ctx := context.Background()

	h.HandlePraise(ctx, "U999", "C7", "<@U123> <@U456> shipped the release")

	if len(messenger.posts) != 2 {
		t.Fatalf("expected 2 notifications, got %d: %+v", len(messenger.posts), messenger.posts)
	}
	for _, p := range messenger.posts {
		if p.ChannelID != "C7" {
			t.Fatalf("notification went to wrong channel: %q", p.ChannelID)
		}
		if !strings.Contains(p.Fallback, "praised") {
			t.Fatalf("unexpected fallback: %q", p.Fallback)
		}
		if len(p.Blocks) == 0 {
			t.Fatal("expected block kit payload")
		}
	}
	if got := service.WeeklyUsed(ctx, "U999"); got != 2 {
		t.Fatalf("WeeklyUsed = %d, want 2", got)
	}
}

// TestHandlePraiseEmptyText: пустая команда — подсказка по формату.
func TestHandlePraiseEmptyText(t *testing.T) {
	h, messenger, _ := newTestHandler(t)

	h.HandlePraise(context.Background(), "U999", "C7", "   ")

	if len(messenger.posts) != 1 {
		t.Fatalf("expected 1 reply, got %d", len(messenger.posts))
	}
	if !strings.Contains(messenger.posts[0].Fallback, "Format:") {
		t.Fatalf("expected usage text, got %q", messenger.posts[0].Fallback)
	}
}

// TestHandlePraiseNoValidMentions: текст без валидных упоминаний.
func TestHandlePraiseNoValidMentions(t *testing.T) {
	h, messenger, _ := newTestHandler(t)

	h.HandlePraise(context.Background(), "U999", "C7", "great work everyone")

	if len(messenger.posts) != 1 {
		t.Fatalf("expected 1 reply, got %d", len(messenger.posts))
	}
	if !strings.Contains(messenger.posts[0].Fallback, "valid users") {
		t.Fatalf("expected no-mentions text, got %q", messenger.posts[0].Fallback)
	}
}

// TestHandlePraiseOverLimit: исчерпанный лимит — отказ с текущим счётчиком.
func TestHandlePraiseOverLimit(t *testing.T) {
	h, messenger, service := newTestHandler(t)
	ctx := context.Background()

	if _, err := service.GivePraise(ctx, "U999", []string{"U123", "U456", "U777"}, "pre"); err != nil {
		t.Fatalf("GivePraise: %v", err)
	}
	messenger.posts = nil

	h.HandlePraise(ctx, "U999", "C7", "<@U123> one more")

	if len(messenger.posts) != 1 {
		t.Fatalf("expected 1 reply, got %d", len(messenger.posts))
	}
	if !strings.Contains(messenger.posts[0].Fallback, "weekly limit of 3") {
		t.Fatalf("expected limit rejection, got %q", messenger.posts[0].Fallback)
	}
}

// TestHandlePraiseEmptyMessage: упоминания есть, текста похвалы нет.
func TestHandlePraiseEmptyMessage(t *testing.T) {
	h, messenger, service := newTestHandler(t)
	ctx := context.Background()

	h.HandlePraise(ctx, "U999", "C7", "<@U123>")

	if len(messenger.posts) != 1 {
		t.Fatalf("expected 1 reply, got %d", len(messenger.posts))
	}
	if !strings.Contains(messenger.posts[0].Fallback, "praise message after") {
		t.Fatalf("expected empty-message text, got %q", messenger.posts[0].Fallback)
	}
	if got := service.WeeklyUsed(ctx, "U999"); got != 0 {
		t.Fatalf("empty message consumed quota: %d", got)
	}
}

// TestHandleStatsEmpty: пустой журнал — сообщение-заглушка.
func TestHandleStatsEmpty(t *testing.T) {
	h, messenger, _ := newTestHandler(t)

	h.HandleStats(context.Background(), "C7")

	if len(messenger.posts) != 1 {
		t.Fatalf("expected 1 reply, got %d", len(messenger.posts))
	}
	if !strings.Contains(messenger.posts[0].Fallback, "No praises have been given yet") {
		t.Fatalf("expected empty-state text, got %q", messenger.posts[0].Fallback)
	}
}

// TestHandleStatsRendersRanking: строки вида "r received + g given = t total".
func TestHandleStatsRendersRanking(t *testing.T) {
	h, messenger, service := newTestHandler(t)
	ctx := context.Background()

	if _, err := service.GivePraise(ctx, "U999", []string{"U123"}, "solid work"); err != nil {
		t.Fatalf("GivePraise: %v", err)
	}
	messenger.posts = nil

	h.HandleStats(ctx, "C7")

	if len(messenger.posts) != 1 {
		t.Fatalf("expected 1 reply, got %d", len(messenger.posts))
	}
	fallback := messenger.posts[0].Fallback
	if !strings.Contains(fallback, "<@U123>: 1 received + 0 given = 1 total") {
		t.Fatalf("missing U123 row: %q", fallback)
	}
	if !strings.Contains(fallback, "<@U999>: 0 received + 1 given = 1 total") {
		t.Fatalf("missing U999 row: %q", fallback)
	}
}

// TestPostLeaderboard: публикация в канал, найденный по известному имени.
func TestPostLeaderboard(t *testing.T) {
	h, messenger, _ := newTestHandler(t)

	h.PostLeaderboard(context.Background())

	if len(messenger.posts) != 1 {
		t.Fatalf("expected 1 post, got %d", len(messenger.posts))
	}
	if messenger.posts[0].ChannelID != "C1" {
		t.Fatalf("leaderboard went to %q, want C1", messenger.posts[0].ChannelID)
	}
}

// TestPostLeaderboardMissingChannel: канала нет — молча логируем, не публикуем.
func TestPostLeaderboardMissingChannel(t *testing.T) {
	h, messenger, _ := newTestHandler(t)
	delete(messenger.channels, "general")

	h.PostLeaderboard(context.Background())

	if len(messenger.posts) != 0 {
		t.Fatalf("expected no posts, got %+v", messenger.posts)
	}
}
