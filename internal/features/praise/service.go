// Package praise — service.go содержит бизнес-логику похвал:
// проверку недельного лимита и запись похвал по списку упомянутых.
package praise

import (
	"context"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/kpr-it/slack-hloppy/internal/common"
	"github.com/kpr-it/slack-hloppy/internal/config"
)

// Service управляет выдачей похвал.
type Service struct {
	repo *Repository
	cfg  *config.Config

	// подменяется в тестах
	now func() time.Time
}

// NewService создаёт сервис похвал.
func NewService(repo *Repository, cfg *config.Config) *Service {
	loc := cfg.Location()
	return &Service{
		repo: repo,
		cfg:  cfg,
		now:  func() time.Time { return time.Now().In(loc) },
	}
}

// Recorded — одна записанная похвала с данными для уведомления.
type Recorded struct {
	Target         string // кого похвалили
	ReceivedTotal  int    // сколько похвал у получателя стало всего
	RemainingAfter int    // сколько похвал осталось у отправителя на этой неделе
}

// GiveResult — итог обработки одной команды /hloppy.
type GiveResult struct {
	Recorded []Recorded
	// Truncated выставляется, если внутренний предохранитель оборвал цикл:
	// часть упомянутых осталась без похвалы.
	Truncated bool
}

// GivePraise записывает похвалу от requester каждому из targets.
//
// Проверки до цикла действуют на запрос целиком (всё или ничего):
// исчерпанный недельный лимит или больше упоминаний, чем осталось похвал —
// отказ без единой записи. Внутри цикла самоупоминания молча пропускаются
// и лимит не тратят. Остаток лимита ведётся в памяти на время одного
// вызова; второй предохранитель внутри цикла страхует от гонки с
// параллельными запросами того же пользователя.
func (s *Service) GivePraise(ctx context.Context, requester string, targets []string, message string) (*GiveResult, error) {
	if len(targets) == 0 {
		return nil, common.ErrNoMentions
	}

	now := s.now()
	weekly := s.repo.WeeklyGivenCount(requester, now)
	remaining := s.cfg.WeeklyPraiseLimit - weekly

	log.WithFields(log.Fields{
		"user_id":   requester,
		"weekly":    weekly,
		"remaining": remaining,
	}).Info("Проверка недельного лимита")

	if weekly >= s.cfg.WeeklyPraiseLimit {
		return nil, common.ErrWeeklyLimit
	}
	if len(targets) > remaining {
		return nil, common.ErrTooManyMentions
	}

	// Текст похвалы проверяется после лимитов: пользователю с исчерпанным
	// лимитом бесполезно рассказывать про пустое сообщение.
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, common.ErrEmptyMessage
	}

	result := &GiveResult{}
	given := 0

	for _, target := range targets {
		if target == requester {
			log.WithField("user_id", requester).Debug("Самопохвала пропущена")
			continue
		}

		if given >= remaining {
			result.Truncated = true
			break
		}

		if err := s.repo.Record(requester, target, message, now); err != nil {
			// Похвала записана в памяти, но не доехала до диска.
			// Объявляем её всё равно — при следующей перезагрузке она пропадёт,
			// это осознанный выбор доступности над долговечностью.
			log.WithError(err).WithFields(log.Fields{
				"from": requester,
				"to":   target,
			}).Warn("Похвала записана, но не сохранена на диск")
		}
		given++

		result.Recorded = append(result.Recorded, Recorded{
			Target:         target,
			ReceivedTotal:  s.repo.TotalReceived(target),
			RemainingAfter: remaining - given,
		})
	}

	return result, nil
}

// WeeklyUsed возвращает, сколько похвал пользователь уже выдал на этой неделе.
// Нужен обработчику для текстов отказов.
func (s *Service) WeeklyUsed(ctx context.Context, userID string) int {
	return s.repo.WeeklyGivenCount(userID, s.now())
}

// Remaining возвращает остаток недельного лимита (не меньше нуля).
func (s *Service) Remaining(ctx context.Context, userID string) int {
	remaining := s.cfg.WeeklyPraiseLimit - s.WeeklyUsed(ctx, userID)
	if remaining < 0 {
		remaining = 0
	}
	return remaining
}

// Standings возвращает таблицу лидеров.
func (s *Service) Standings(ctx context.Context) []UserStats {
	return s.repo.Ranking()
}
