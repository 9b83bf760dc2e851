// Package jobs управляет фоновыми задачами (cron).
// scheduler.go настраивает расписание: публикация таблицы лидеров
// раз в N дней в заданное время.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"github.com/kpr-it/slack-hloppy/internal/config"
)

// Дата отсчёта для интервала «раз в N дней». Понедельник.
// Привязка к фиксированной дате держит каденцию стабильной между рестартами.
var scheduleAnchor = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// Scheduler управляет фоновыми задачами.
type Scheduler struct {
	cron            *cron.Cron
	cfg             *config.Config
	loc             *time.Location
	postLeaderboard func(ctx context.Context)
}

// NewScheduler создаёт планировщик задач в часовом поясе приложения.
func NewScheduler(cfg *config.Config, postLeaderboard func(ctx context.Context)) *Scheduler {
	loc := cfg.Location()
	return &Scheduler{
		cron:            cron.New(cron.WithLocation(loc)),
		cfg:             cfg,
		loc:             loc,
		postLeaderboard: postLeaderboard,
	}
}

// Start запускает все фоновые задачи.
func (s *Scheduler) Start(ctx context.Context) {
	// cron не умеет «каждые N дней в 10:00», поэтому задача ежедневная,
	// а интервал проверяется внутри.
	hour, minute, err := config.ParsePostTime(s.cfg.LeaderboardPostTime)
	if err != nil {
		// Валидация конфига это уже отловила, сюда не попадаем
		log.WithError(err).Error("[CRON] Некорректное время публикации")
		return
	}

	spec := fmt.Sprintf("%d %d * * *", minute, hour)
	s.cron.AddFunc(spec, func() {
		now := time.Now().In(s.loc)
		if !s.shouldFireAt(now) {
			log.Debug("[CRON] Сегодня не день таблицы лидеров")
			return
		}
		log.Info("[CRON] Публикация таблицы лидеров")
		s.postLeaderboard(ctx)
	})

	s.cron.Start()
	log.WithFields(log.Fields{
		"every_days": s.cfg.LeaderboardScheduleDays,
		"at":         s.cfg.LeaderboardPostTime,
		"tz":         s.loc.String(),
	}).Info("Планировщик задач запущен")
}

// shouldFireAt проверяет, попадает ли день now в интервал «раз в N дней»
// от даты отсчёта.
func (s *Scheduler) shouldFireAt(now time.Time) bool {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	days := int(midnight.Sub(scheduleAnchor).Hours() / 24)
	if days < 0 {
		return false
	}
	return days%s.cfg.LeaderboardScheduleDays == 0
}

// Stop останавливает планировщик.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info("Планировщик задач остановлен")
}
