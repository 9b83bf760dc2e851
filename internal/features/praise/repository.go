// Package praise — repository.go владеет долговременным журналом похвал.
// Дисциплина работы: перед каждой логической операцией снапшот перечитывается
// с диска целиком (внешние правки файла подхватываются), после мутации
// пишется обратно целиком. Мьютекс делает репозиторий единственным писателем
// внутри процесса — гонка «прочитал-изменил-затёр» между параллельными
// командами исключена.
package praise

import (
	"errors"
	"os"
	"sort"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/kpr-it/slack-hloppy/internal/common"
	"github.com/kpr-it/slack-hloppy/internal/storage"
)

// Repository хранит журналы похвал в одном JSON-файле.
type Repository struct {
	mu   sync.Mutex
	path string
}

// NewRepository создаёт репозиторий поверх файла path.
func NewRepository(path string) *Repository {
	return &Repository{path: path}
}

// Load возвращает снапшот всех журналов.
// Отсутствующий файл — пустое состояние. Битый файл — тоже пустое
// состояние: лучше бот без истории, чем бот, который не поднимается.
func (r *Repository) Load() map[string]*UserLedger {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loadLocked()
}

// loadLocked читает снапшот. Вызывается только под mu.
func (r *Repository) loadLocked() map[string]*UserLedger {
	ledgers := make(map[string]*UserLedger)

	err := storage.Load(r.path, &ledgers)
	switch {
	case err == nil:
	case errors.Is(err, os.ErrNotExist):
		log.WithField("path", r.path).Debug("Файл данных отсутствует, начинаем с пустого журнала")
		return make(map[string]*UserLedger)
	default:
		log.WithError(common.ErrSnapshotMalformed).WithFields(log.Fields{
			"path":  r.path,
			"cause": err,
		}).Error("Не удалось прочитать снапшот, работаем с пустым журналом")
		return make(map[string]*UserLedger)
	}

	// Пустой журнал эквивалентен отсутствующему: если он всё же попал
	// в файл, при загрузке выбрасываем.
	for userID, ledger := range ledgers {
		if ledger == nil || ledger.Empty() {
			delete(ledgers, userID)
		}
	}
	return ledgers
}

// saveLocked пишет снапшот целиком. Сохраняются только пользователи
// хотя бы с одной записью. Вызывается только под mu.
func (r *Repository) saveLocked(ledgers map[string]*UserLedger) error {
	out := make(map[string]*UserLedger, len(ledgers))
	for userID, ledger := range ledgers {
		if ledger != nil && !ledger.Empty() {
			out[userID] = ledger
		}
	}

	if err := storage.Save(r.path, out); err != nil {
		log.WithError(err).WithField("path", r.path).Error("Не удалось сохранить снапшот")
		return err
	}
	return nil
}

// WeeklyGivenCount возвращает, сколько похвал пользователь выдал
// с начала текущей недели (понедельник 00:00 в часовом поясе now).
// Граница недели пересчитывается на каждый вызов.
func (r *Repository) WeeklyGivenCount(userID string, now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	ledgers := r.loadLocked()
	ledger, ok := ledgers[userID]
	if !ok {
		return 0
	}

	weekStart := common.WeekStart(now)
	count := 0
	for _, p := range ledger.Given {
		if !p.Timestamp.Before(weekStart) {
			count++
		}
	}
	return count
}

// Record добавляет похвалу от from к to с временем now.
// Запись зеркальная: given у отправителя и received у получателя получают
// копии с одинаковыми message и timestamp. Лимиты здесь не проверяются —
// это забота сервиса. Повторный вызов добавит вторую запись, дедупликации нет.
// Ошибка сохранения возвращается наверх, но уже сделанная запись не откатывается.
func (r *Repository) Record(from, to, message string, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ledgers := r.loadLocked()

	receiver, ok := ledgers[to]
	if !ok {
		receiver = &UserLedger{}
		ledgers[to] = receiver
	}
	giver, ok := ledgers[from]
	if !ok {
		giver = &UserLedger{}
		ledgers[from] = giver
	}

	receiver.Received = append(receiver.Received, Praise{
		FromUser:  from,
		Message:   message,
		Timestamp: now,
	})
	giver.Given = append(giver.Given, Praise{
		ToUser:    to,
		Message:   message,
		Timestamp: now,
	})

	return r.saveLocked(ledgers)
}

// TotalReceived возвращает, сколько похвал пользователь получил за всё время.
func (r *Repository) TotalReceived(userID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	ledgers := r.loadLocked()
	ledger, ok := ledgers[userID]
	if !ok {
		return 0
	}
	return len(ledger.Received)
}

// Ranking строит таблицу лидеров по всем пользователям.
// Во вселенную входят не только владельцы журналов, но и все, кто упомянут
// в чужих записях: человека, которого только хвалили через старые версии
// данных, без этого объединения можно потерять.
// Сортировка: по убыванию Total, при равенстве — по возрастанию UserID,
// чтобы порядок был детерминированным.
func (r *Repository) Ranking() []UserStats {
	r.mu.Lock()
	defer r.mu.Unlock()

	ledgers := r.loadLocked()

	universe := make(map[string]struct{})
	for userID, ledger := range ledgers {
		if !ledger.Empty() {
			universe[userID] = struct{}{}
		}
		for _, p := range ledger.Given {
			universe[p.ToUser] = struct{}{}
		}
		for _, p := range ledger.Received {
			universe[p.FromUser] = struct{}{}
		}
	}

	stats := make([]UserStats, 0, len(universe))
	for userID := range universe {
		var received, given int
		if ledger, ok := ledgers[userID]; ok {
			received = len(ledger.Received)
			given = len(ledger.Given)
		}
		stats = append(stats, UserStats{
			UserID:   userID,
			Received: received,
			Given:    given,
			Total:    received + given,
		})
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Total != stats[j].Total {
			return stats[i].Total > stats[j].Total
		}
		return stats[i].UserID < stats[j].UserID
	})
	return stats
}
