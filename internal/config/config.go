// Package config загружает конфигурацию бота из переменных окружения.
// Используется envconfig для маппинга переменных окружения на поля структуры,
// godotenv подхватывает локальный .env (удобно вне Docker).
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config содержит ВСЕ настройки приложения.
type Config struct {
	// --- Slack ---
	SlackBotToken      string `envconfig:"SLACK_BOT_TOKEN" required:"true"`
	SlackAppToken      string `envconfig:"SLACK_APP_TOKEN" required:"true"`
	SlackSigningSecret string `envconfig:"SLACK_SIGNING_SECRET" required:"true"`

	// --- Storage ---
	// Один плоский JSON-файл. Никакой БД — объёмы смешные.
	DataFile string `envconfig:"DATA_FILE" default:"hloppy_data.json"`

	// --- Praise ---
	WeeklyPraiseLimit int `envconfig:"WEEKLY_PRAISE_LIMIT" default:"3"`

	// --- Leaderboard ---
	LeaderboardScheduleDays int    `envconfig:"LEADERBOARD_SCHEDULE_DAYS" default:"14"`
	LeaderboardPostTime     string `envconfig:"LEADERBOARD_POST_TIME" default:"10:00"`
	LeaderboardChannel      string `envconfig:"LEADERBOARD_CHANNEL" default:"general"`

	// --- Application ---
	AppEnv      string `envconfig:"APP_ENV" default:"development"`
	AppLogLevel string `envconfig:"APP_LOG_LEVEL" default:"debug"`
	AppTimezone string `envconfig:"APP_TIMEZONE" default:"Europe/Moscow"`

	// --- Bot runtime ---
	// Сколько команд обрабатываем параллельно. Иначе "go на каждую команду"
	// = утечка памяти при флуде.
	BotMaxInflight int `envconfig:"BOT_MAX_INFLIGHT" default:"64"`

	// --- Rate Limiting ---
	RateLimitRequests int           `envconfig:"RATE_LIMIT_REQUESTS" default:"10"`
	RateLimitWindow   time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m"`
}

// Validate проверяет согласованность настроек.
func (c *Config) Validate() error {
	if !strings.HasPrefix(c.SlackAppToken, "xapp-") {
		return fmt.Errorf("SLACK_APP_TOKEN должен начинаться с 'xapp-'")
	}
	if c.WeeklyPraiseLimit <= 0 {
		return fmt.Errorf("WEEKLY_PRAISE_LIMIT должен быть > 0")
	}
	if c.LeaderboardScheduleDays <= 0 {
		return fmt.Errorf("LEADERBOARD_SCHEDULE_DAYS должен быть > 0")
	}
	if _, _, err := ParsePostTime(c.LeaderboardPostTime); err != nil {
		return fmt.Errorf("LEADERBOARD_POST_TIME: %w", err)
	}
	if c.BotMaxInflight <= 0 {
		return fmt.Errorf("BOT_MAX_INFLIGHT должен быть > 0")
	}
	return nil
}

// Location возвращает часовой пояс приложения.
// Если зону не удалось загрузить — UTC, с этим можно жить.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.AppTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// ParsePostTime разбирает строку вида "10:00" на часы и минуты.
func ParsePostTime(s string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, 0, fmt.Errorf("ожидается формат ЧЧ:ММ, получено %q: %w", s, err)
	}
	return t.Hour(), t.Minute(), nil
}

// Load читает переменные окружения и заполняет структуру Config.
func Load() (*Config, error) {
	// .env не обязателен — в Docker всё приходит из окружения
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("не удалось загрузить конфигурацию: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
